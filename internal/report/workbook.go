package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// Sheet names written by WriteAuditWorkbook.
const (
	SheetAudits = "Audits"
	SheetAdvice = "Advice"
)

var auditHeader = []string{
	"Audit ID", "Heating kWh", "Hot water kWh", "Appliances kWh", "Total kWh",
	"Score", "Advice origin", "Fallback reason", "Top action",
}

var adviceHeader = []string{
	"Audit ID", "Rank", "Code", "Title", "kWh low", "kWh mid", "kWh high",
	"EUR mid", "Difficulty", "Comfort", "Safety",
}

// WriteAuditWorkbook writes one summary row per report plus one row per
// advice item to w as XLSX.
func WriteAuditWorkbook(w io.Writer, reports []model.AuditReport) error {
	f := xlsx.NewFile()

	audits, err := f.AddSheet(SheetAudits)
	if err != nil {
		return eris.Wrap(err, "xlsx: add audits sheet")
	}
	items, err := f.AddSheet(SheetAdvice)
	if err != nil {
		return eris.Wrap(err, "xlsx: add advice sheet")
	}
	addStrings(audits.AddRow(), auditHeader...)
	addStrings(items.AddRow(), adviceHeader...)

	for _, r := range reports {
		row := audits.AddRow()
		addStrings(row, r.AuditID)
		addInts(row, r.EndUse.HeatingKWh, r.EndUse.DHWKWh, r.EndUse.AppliancesKWh, r.TotalKWh, r.Score)
		top := ""
		if len(r.Advice) > 0 {
			top = r.Advice[0].Code
		}
		addStrings(row, string(r.AdviceOrigin), r.FallbackReason, top)

		for i, a := range r.Advice {
			row := items.AddRow()
			addStrings(row, r.AuditID)
			addInts(row, i+1)
			addStrings(row, a.Code, a.Title)
			addFloats(row, a.Savings.KWhLow, a.Savings.KWhMid, a.Savings.KWhHigh, a.Savings.EURMid)
			addInts(row, a.Difficulty, a.Comfort)
			addStrings(row, a.Safety)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

// ReadSheet returns every row of the named sheet in an XLSX document as
// strings.
func ReadSheet(data []byte, sheetName string) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found", sheetName)
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addInts(row *xlsx.Row, values ...int) {
	for _, v := range values {
		row.AddCell().SetInt(v)
	}
}

func addFloats(row *xlsx.Row, values ...float64) {
	for _, v := range values {
		row.AddCell().SetFloat(v)
	}
}
