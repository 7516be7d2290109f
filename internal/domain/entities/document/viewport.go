// Package document provides the element tree model shared by every part of the
// block builder: nodes, settings, responsive values and structural errors.
package document

import (
	"fmt"
	"strings"
)

// Viewport is a viewport class used to resolve responsive settings
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportTablet  Viewport = "tablet"
	ViewportMobile  Viewport = "mobile"
)

// Viewports lists every viewport class from the least to the most specific
var Viewports = []Viewport{ViewportDesktop, ViewportTablet, ViewportMobile}

// ParseViewport converts a user supplied string into a Viewport
func ParseViewport(s string) (Viewport, error) {
	switch Viewport(strings.ToLower(strings.TrimSpace(s))) {
	case ViewportDesktop:
		return ViewportDesktop, nil
	case ViewportTablet:
		return ViewportTablet, nil
	case ViewportMobile:
		return ViewportMobile, nil
	}
	return "", fmt.Errorf("unknown viewport %q", s)
}

// IsValid reports whether v is one of the known viewport classes
func (v Viewport) IsValid() bool {
	_, err := ParseViewport(string(v))
	return err == nil
}

// cascade returns the lookup order for a viewport, most specific first
func (v Viewport) cascade() []Viewport {
	switch v {
	case ViewportMobile:
		return []Viewport{ViewportMobile, ViewportTablet, ViewportDesktop}
	case ViewportTablet:
		return []Viewport{ViewportTablet, ViewportDesktop}
	default:
		return []Viewport{ViewportDesktop}
	}
}
