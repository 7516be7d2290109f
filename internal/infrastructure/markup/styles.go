package markup

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// inlineStyle is the parsed form of a style attribute, keyed by lowercase
// property name. Later declarations win, as in a browser.
type inlineStyle map[string]string

// parseInlineStyle tokenizes a style attribute with the inline CSS grammar
func parseInlineStyle(style string) inlineStyle {
	out := inlineStyle{}
	if strings.TrimSpace(style) == "" {
		return out
	}
	parser := css.NewParser(parse.NewInput(strings.NewReader(style)), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			// end of input or an unrecoverable error; either way we keep what we have
			return out
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			prop := strings.ToLower(strings.TrimSpace(string(data)))
			value := declarationValue(parser.Values())
			if prop != "" && value != "" {
				out[prop] = value
			}
		}
	}
}

// declarationValue joins value tokens, collapsing whitespace runs to one space
// and dropping a trailing !important.
func declarationValue(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(parts, ""))
	lower := strings.ToLower(raw)
	if idx := strings.LastIndex(lower, "!important"); idx >= 0 && strings.TrimSpace(lower[idx+len("!important"):]) == "" {
		raw = strings.TrimSpace(raw[:idx])
	}
	return strings.TrimSpace(strings.TrimSuffix(raw, "!"))
}

func (s inlineStyle) get(prop string) string {
	return s[prop]
}

func (s inlineStyle) has(prop string) bool {
	_, ok := s[prop]
	return ok
}

// liftLength turns "24px" or "24" into a number and leaves any other value,
// such as "100%" or "8px 0", as a string.
func liftLength(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(strings.ToLower(value), "px")
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return value
}

// liftNumber is liftLength for unitless values like line-height
func liftNumber(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// alignFromMargin reads block alignment out of margin declarations: auto on
// both sides centers, auto on one side pushes the element to the other.
func alignFromMargin(s inlineStyle) string {
	left, right := "", ""
	if m := s.get("margin"); m != "" {
		parts := strings.Fields(m)
		switch len(parts) {
		case 1:
			left, right = parts[0], parts[0]
		case 2, 3:
			left, right = parts[1], parts[1]
		default:
			left, right = parts[3], parts[1]
		}
	}
	if v := s.get("margin-left"); v != "" {
		left = v
	}
	if v := s.get("margin-right"); v != "" {
		right = v
	}
	leftAuto := strings.EqualFold(left, "auto")
	rightAuto := strings.EqualFold(right, "auto")
	switch {
	case leftAuto && rightAuto:
		return "center"
	case leftAuto:
		return "right"
	case rightAuto:
		return "left"
	default:
		return ""
	}
}

var borderStyles = map[string]bool{
	"solid": true, "dashed": true, "dotted": true, "double": true,
	"groove": true, "ridge": true, "inset": true, "outset": true, "none": true, "hidden": true,
}

// borderParts splits a border shorthand into width, style and color
func borderParts(value string) (width, style, color string) {
	for _, part := range strings.Fields(value) {
		lower := strings.ToLower(part)
		switch {
		case borderStyles[lower]:
			style = lower
		case isLength(lower):
			width = part
		default:
			color = part
		}
	}
	return width, style, color
}

func isLength(value string) bool {
	switch value {
	case "thin", "medium", "thick":
		return true
	}
	for _, unit := range []string{"px", "em", "rem", "pt", ""} {
		if _, err := strconv.ParseFloat(strings.TrimSuffix(value, unit), 64); err == nil && strings.HasSuffix(value, unit) {
			return true
		}
	}
	return false
}
