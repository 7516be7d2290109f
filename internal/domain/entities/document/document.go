package document

// SerializedVersion is the current version of the JSON document format
const SerializedVersion = 1

// GlobalStyles holds document wide defaults that are not attached to any node
type GlobalStyles struct {
	FontFamily        string `json:"fontFamily" yaml:"fontFamily"`
	TextColor         string `json:"textColor" yaml:"textColor"`
	LinkColor         string `json:"linkColor" yaml:"linkColor"`
	BackgroundColor   string `json:"backgroundColor" yaml:"backgroundColor"`
	ContentBackground string `json:"contentBackground" yaml:"contentBackground"`
	ContentWidth      int    `json:"contentWidth" yaml:"contentWidth"`
	Preheader         string `json:"preheader,omitempty" yaml:"preheader"`
}

// DefaultGlobalStyles returns the styles used for new documents
func DefaultGlobalStyles(contentWidth int) GlobalStyles {
	if contentWidth <= 0 {
		contentWidth = 600
	}
	return GlobalStyles{
		FontFamily:        "Arial, Helvetica, sans-serif",
		TextColor:         "#1f2937",
		LinkColor:         "#2563eb",
		BackgroundColor:   "#f3f4f6",
		ContentBackground: "#ffffff",
		ContentWidth:      contentWidth,
	}
}

// WithDefaults fills empty fields from defaults
func (g GlobalStyles) WithDefaults(defaults GlobalStyles) GlobalStyles {
	if g.FontFamily == "" {
		g.FontFamily = defaults.FontFamily
	}
	if g.TextColor == "" {
		g.TextColor = defaults.TextColor
	}
	if g.LinkColor == "" {
		g.LinkColor = defaults.LinkColor
	}
	if g.BackgroundColor == "" {
		g.BackgroundColor = defaults.BackgroundColor
	}
	if g.ContentBackground == "" {
		g.ContentBackground = defaults.ContentBackground
	}
	if g.ContentWidth <= 0 {
		g.ContentWidth = defaults.ContentWidth
	}
	return g
}

// Document is a tree together with its global styles
type Document struct {
	Title        string       `json:"title"`
	GlobalStyles GlobalStyles `json:"globalStyles"`
	Elements     Tree         `json:"elements"`
}

// SerializedDocument is the JSON dump of a document
type SerializedDocument struct {
	Version      int          `json:"version"`
	Title        string       `json:"title,omitempty"`
	GlobalStyles GlobalStyles `json:"globalStyles"`
	Elements     Tree         `json:"elements"`
}

// Serialize converts a document into its JSON dump form
func (d Document) Serialize() SerializedDocument {
	elements := d.Elements
	if elements == nil {
		elements = Tree{}
	}
	return SerializedDocument{
		Version:      SerializedVersion,
		Title:        d.Title,
		GlobalStyles: d.GlobalStyles,
		Elements:     elements,
	}
}
