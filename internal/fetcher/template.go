package fetcher

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrTemplateField reports an output template that references a field the
// metadata does not carry.
var ErrTemplateField = errors.New("output template field missing")

var templateField = regexp.MustCompile(`%%|%\(([A-Za-z0-9_]+)\)([sd])`)

// RenderTemplate expands %(name)s and %(name)d references in tmpl using
// fields. %% renders a literal percent sign.
func RenderTemplate(tmpl string, fields map[string]any) (string, error) {
	var missing string
	rendered := templateField.ReplaceAllStringFunc(tmpl, func(match string) string {
		if match == "%%" {
			return "%"
		}
		parts := templateField.FindStringSubmatch(match)
		name, verb := parts[1], parts[2]
		value, ok := fields[name]
		if !ok || value == nil {
			if missing == "" {
				missing = name
			}
			return ""
		}
		return formatField(value, verb)
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrTemplateField, missing)
	}
	return rendered, nil
}

func formatField(value any, verb string) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if verb == "d" || v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
