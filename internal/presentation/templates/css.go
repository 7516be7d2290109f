package templates

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

// ContainerClass marks the content root of exported documents; the importer
// looks for it first.
const ContainerClass = "bb-container"

// editorCSS styles the affordances injected in instrumented mode
const editorCSS = `[data-bb-id]{position:relative}
[data-bb-id]:hover{outline:1px dashed #93c5fd}
[data-bb-selected="true"]{outline:2px solid #2563eb}
.bb-frame{display:block}
.bb-toolbar{position:absolute;top:-22px;right:0;display:none;gap:4px;padding:2px 6px;background:#2563eb;color:#fff;font:12px/16px sans-serif;border-radius:3px;z-index:10}
[data-bb-selected="true"]>.bb-toolbar{display:flex}
.bb-action{cursor:pointer}
.bb-drag-handle{position:absolute;top:0;left:-18px;width:14px;cursor:grab;color:#9ca3af;font:12px/16px sans-serif;display:none}
[data-bb-id]:hover>.bb-drag-handle{display:block}
.bb-unknown{padding:12px;border:1px dashed #dc2626;color:#dc2626;font:13px sans-serif}
.bb-column:empty,.bb-column:not(:has(>[data-bb-id])){min-height:48px;outline:1px dashed #d1d5db}
`

// cssValue drops values that could escape a declaration
func cssValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, ";{}<>\"\\") {
		return ""
	}
	lower := strings.ToLower(value)
	if strings.Contains(lower, "url(") || strings.Contains(lower, "expression(") {
		return ""
	}
	return value
}

// BuildDocumentCSS returns the style block of an exported document
func BuildDocumentCSS(styles document.GlobalStyles) template.CSS {
	var sb strings.Builder
	sb.WriteString("*{box-sizing:border-box}")
	sb.WriteString("body{margin:0;padding:0")
	if v := cssValue(styles.BackgroundColor); v != "" {
		fmt.Fprintf(&sb, ";background-color:%s", v)
	}
	if v := cssValue(styles.FontFamily); v != "" {
		fmt.Fprintf(&sb, ";font-family:%s", v)
	}
	if v := cssValue(styles.TextColor); v != "" {
		fmt.Fprintf(&sb, ";color:%s", v)
	}
	sb.WriteString("}")
	if v := cssValue(styles.LinkColor); v != "" {
		fmt.Fprintf(&sb, "a{color:%s}", v)
	}
	sb.WriteString("img{max-width:100%}")
	fmt.Fprintf(&sb, ".%s{margin:0 auto;max-width:%dpx", ContainerClass, contentWidth(styles))
	if v := cssValue(styles.ContentBackground); v != "" {
		fmt.Fprintf(&sb, ";background-color:%s", v)
	}
	sb.WriteString(";padding:24px}")
	sb.WriteString(".bb-preheader{display:none!important;max-height:0;overflow:hidden}")
	return template.CSS(sb.String())
}

// BuildEditorCSS returns the document CSS plus the affordance styles
func BuildEditorCSS(styles document.GlobalStyles) template.CSS {
	return BuildDocumentCSS(styles) + template.CSS(editorCSS)
}

func contentWidth(styles document.GlobalStyles) int {
	if styles.ContentWidth <= 0 {
		return document.DefaultGlobalStyles(0).ContentWidth
	}
	return styles.ContentWidth
}
