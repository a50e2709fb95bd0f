package advice

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// ParseAdvice decodes the advice service reply. It accepts a bare JSON
// array or an object with an "actions" field, optionally wrapped in a
// markdown code fence. An empty list is an error.
func ParseAdvice(text string) ([]model.AdviceItem, error) {
	body := stripFences(text)
	if body == "" {
		return nil, serviceErr(ReasonEmptyResponse, nil)
	}

	var items []model.AdviceItem
	switch body[0] {
	case '[':
		if err := json.Unmarshal([]byte(body), &items); err != nil {
			return nil, serviceErr(ReasonParse, eris.Wrap(err, "decode advice array"))
		}
	case '{':
		var wrapped struct {
			Actions []model.AdviceItem `json:"actions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, serviceErr(ReasonParse, eris.Wrap(err, "decode advice object"))
		}
		items = wrapped.Actions
	default:
		return nil, serviceErr(ReasonParse, eris.New("reply is not JSON"))
	}

	if len(items) == 0 {
		return nil, serviceErr(ReasonEmptyResponse, eris.New("no actions in reply"))
	}
	return items, nil
}

// stripFences removes a surrounding markdown code fence and trims the text
// to the outermost JSON array or object.
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return text
	}
	closer := "]"
	if text[start] == '{' {
		closer = "}"
	}
	if end := strings.LastIndex(text, closer); end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
