package templates

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// Attribute names shared with the importer and the editing surface script
const (
	AttrID        = "data-bb-id"
	AttrType      = "data-bb-type"
	AttrContainer = "data-bb-container"
	AttrSelected  = "data-bb-selected"
	AttrEditor    = "data-bb-editor"
	FrameClass    = "bb-frame"
)

var instrumentTemplates = template.Must(template.New("instrument").Parse(
	`{{define "attrs"}} data-bb-id="{{.ID}}" data-bb-type="{{.Type}}"{{if .IsContainer}} data-bb-container="true"{{end}}{{if .Selected}} data-bb-selected="true"{{end}}{{end}}` +
		`{{define "affordances"}}<span class="bb-toolbar" data-bb-editor="toolbar" contenteditable="false">` +
		`<span class="bb-toolbar-label">{{.Label}}</span>` +
		`<span class="bb-action" data-bb-action="duplicate" title="Duplicate">&#x29C9;</span>` +
		`<span class="bb-action" data-bb-action="delete" title="Delete">&#x2715;</span>` +
		`</span><span class="bb-drag-handle" data-bb-editor="handle" draggable="true" title="Drag">&#x22EE;&#x22EE;</span>{{end}}`,
))

var voidElements = map[string]bool{
	"img": true, "hr": true, "br": true, "input": true, "meta": true, "link": true,
	"area": true, "base": true, "col": true, "embed": true, "source": true, "track": true, "wbr": true,
}

// instrument injects identity attributes into the fragment's root element and
// places the editor affordances right after its opening tag. Void roots and
// fragments without a single element root are wrapped in a frame div.
func instrument(fragment string, frame rendering.Frame) (string, error) {
	var attrs, affordances strings.Builder
	if err := instrumentTemplates.ExecuteTemplate(&attrs, "attrs", frame); err != nil {
		return "", err
	}
	if err := instrumentTemplates.ExecuteTemplate(&affordances, "affordances", frame); err != nil {
		return "", err
	}

	tag, end, ok := rootOpeningTag(fragment)
	if !ok || voidElements[tag] {
		return `<div class="` + FrameClass + `"` + attrs.String() + `>` + affordances.String() + fragment + `</div>`, nil
	}

	open := fragment[:end]
	selfClosing := strings.HasSuffix(open, "/")
	if selfClosing {
		open = strings.TrimSuffix(open, "/")
	}
	var sb strings.Builder
	sb.Grow(len(fragment) + attrs.Len() + affordances.Len())
	sb.WriteString(open)
	sb.WriteString(attrs.String())
	if selfClosing {
		sb.WriteString("/")
	}
	sb.WriteString(">")
	sb.WriteString(affordances.String())
	sb.WriteString(fragment[end+1:])
	return sb.String(), nil
}

// rootOpeningTag returns the lowercase tag name of the fragment's root element
// and the index of the '>' closing its opening tag. Fragments come from
// html/template, which escapes '>' inside attribute values.
func rootOpeningTag(fragment string) (string, int, bool) {
	if len(fragment) < 3 || fragment[0] != '<' {
		return "", 0, false
	}
	nameEnd := 1
	for nameEnd < len(fragment) {
		c := fragment[nameEnd]
		if c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n' {
			break
		}
		nameEnd++
	}
	tag := strings.ToLower(fragment[1:nameEnd])
	if tag == "" || tag[0] == '!' {
		return "", 0, false
	}
	end := strings.IndexByte(fragment, '>')
	if end < 0 {
		return "", 0, false
	}
	return tag, end, true
}
