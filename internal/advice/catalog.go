package advice

import (
	_ "embed"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/solarsense-cli/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the browsable list of energy-saving actions, ordered by
// difficulty ascending.
type Catalog struct {
	actions []model.CatalogAction
}

// LoadCatalog returns the catalog embedded in the binary.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Actions []model.CatalogAction `yaml:"actions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "advice: parse catalog")
	}
	for i, a := range doc.Actions {
		if strings.TrimSpace(a.Code) == "" {
			return nil, eris.Errorf("advice: catalog entry %d has no code", i)
		}
	}

	slices.SortStableFunc(doc.Actions, func(a, b model.CatalogAction) int {
		return a.Difficulty - b.Difficulty
	})
	return &Catalog{actions: doc.Actions}, nil
}

// All returns every action.
func (c *Catalog) All() []model.CatalogAction {
	return slices.Clone(c.actions)
}

// Search returns actions whose title or code contains q, ignoring case. A
// blank query returns everything.
func (c *Catalog) Search(q string) []model.CatalogAction {
	q = strings.TrimSpace(q)
	if q == "" {
		return c.All()
	}

	fold := cases.Fold()
	needle := fold.String(q)
	var out []model.CatalogAction
	for _, a := range c.actions {
		if strings.Contains(fold.String(a.Title), needle) || strings.Contains(fold.String(a.Code), needle) {
			out = append(out, a)
		}
	}
	return out
}

// Get looks up an action by exact code.
func (c *Catalog) Get(code string) (model.CatalogAction, bool) {
	for _, a := range c.actions {
		if a.Code == code {
			return a, true
		}
	}
	return model.CatalogAction{}, false
}
