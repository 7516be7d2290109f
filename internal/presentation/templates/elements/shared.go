// Package elements provides the widget catalog and the render function of
// every built-in element type.
package elements

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decodeProps copies resolved settings into a typed props struct. Numbers are
// accepted where strings are expected so "28" and 28 decode the same way.
func decodeProps(props map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create props decoder: %w", err)
	}
	if err := decoder.Decode(props); err != nil {
		return fmt.Errorf("failed to decode props: %w", err)
	}
	return nil
}

// execute runs a pre-parsed template into a string
func execute(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// styleBuilder collects inline declarations in insertion order
type styleBuilder struct {
	decls []string
}

// set adds a declaration; empty or unsafe values are skipped
func (sb *styleBuilder) set(prop, value string) *styleBuilder {
	value = strings.TrimSpace(value)
	if value == "" || !safeCSSValue(value) {
		return sb
	}
	sb.decls = append(sb.decls, prop+":"+value)
	return sb
}

// length adds a length declaration; bare numbers become pixels
func (sb *styleBuilder) length(prop, value string) *styleBuilder {
	return sb.set(prop, cssLength(value))
}

// CSS returns the declarations as a trusted style attribute value
func (sb *styleBuilder) CSS() template.CSS {
	return template.CSS(strings.Join(sb.decls, ";"))
}

func (sb *styleBuilder) empty() bool {
	return len(sb.decls) == 0
}

// cssLength appends px to unitless numbers and leaves other values untouched
func cssLength(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64) + "px"
	}
	return value
}

// safeCSSValue rejects values that could break out of a declaration
func safeCSSValue(value string) bool {
	if strings.ContainsAny(value, ";{}<>\"\\") {
		return false
	}
	lower := strings.ToLower(value)
	for _, banned := range []string{"expression(", "url(", "javascript:", "@import"} {
		if strings.Contains(lower, banned) {
			return false
		}
	}
	return true
}

// alignment restricts align settings to the values the importer understands
func alignment(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "center", "right", "justify":
		return strings.ToLower(strings.TrimSpace(value))
	default:
		return ""
	}
}

// trackURL appends utm_* parameters to an absolute http(s) link. Links that
// already carry the parameter keep their value.
func trackURL(href string, params map[string]string) string {
	if len(params) == 0 || href == "" {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return href
	}
	query := parsed.Query()
	changed := false
	for key, value := range params {
		if value == "" || !strings.HasPrefix(key, "utm_") {
			continue
		}
		if query.Get(key) != "" {
			continue
		}
		query.Set(key, value)
		changed = true
	}
	if !changed {
		return href
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
