package document

import "time"

// MediaFile is an uploaded image usable as an image widget source
type MediaFile struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	AltDescription string    `json:"altDescription"`
	URL            string    `json:"url"`
	SrcSet         string    `json:"srcSet,omitempty"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Created        time.Time `json:"created"`
}

// ImageSettings returns the image widget settings pointing at the file
func (m *MediaFile) ImageSettings() map[string]any {
	return map[string]any{
		"src": m.URL,
		"alt": m.AltDescription,
	}
}
