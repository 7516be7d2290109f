// Package media provides image processing utilities
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var dataURLPattern = regexp.MustCompile(`^data:image/([\w.+-]+);base64,`)

// thumbnailWidths are the srcset variants generated next to the main image
var thumbnailWidths = []int{1200, 600, 300}

// ProcessedImage describes the files written for one upload
type ProcessedImage struct {
	Filename string
	URL      string
	SrcSet   string
	Width    int
	Height   int
}

// ImageProcessor stores uploaded images below basePath, served from urlPrefix
type ImageProcessor struct {
	basePath  string
	urlPrefix string
	maxWidth  int
	quality   float32
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath, urlPrefix string, maxWidth int) *ImageProcessor {
	if maxWidth <= 0 {
		maxWidth = 1200
	}
	return &ImageProcessor{
		basePath:  basePath,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		maxWidth:  maxWidth,
		quality:   85,
	}
}

// ProcessBase64Image decodes a data URL, downscales it to the configured
// maximum width and writes it as WebP together with narrower srcset variants.
// SVG uploads are stored unchanged.
func (p *ImageProcessor) ProcessBase64Image(data, name string) (*ProcessedImage, error) {
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}
	match := dataURLPattern.FindStringSubmatch(data)
	if match == nil {
		return nil, fmt.Errorf("invalid image data URL")
	}
	decoded, err := base64.StdEncoding.DecodeString(data[len(match[0]):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	targetDir := filepath.Join(p.basePath, "images")
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if match[1] == "svg+xml" {
		return p.storeSVG(decoded, name, targetDir)
	}
	return p.storeRaster(decoded, name, targetDir)
}

func (p *ImageProcessor) storeSVG(decoded []byte, name, targetDir string) (*ProcessedImage, error) {
	filename := name + ".svg"
	if err := os.WriteFile(filepath.Join(targetDir, filename), decoded, 0644); err != nil {
		return nil, fmt.Errorf("failed to write SVG file: %w", err)
	}
	return &ProcessedImage{Filename: filename, URL: p.url(filename)}, nil
}

func (p *ImageProcessor) storeRaster(decoded []byte, name, targetDir string) (*ProcessedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(decoded), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	filename := name + ".webp"
	mainPath := filepath.Join(targetDir, filename)
	if err := p.saveWebP(mainPath, img); err != nil {
		return nil, err
	}
	written := []string{mainPath}

	width := img.Bounds().Dx()
	var srcset []string
	for _, w := range thumbnailWidths {
		if w >= width {
			continue
		}
		thumbName := fmt.Sprintf("%s_%dpx.webp", name, w)
		thumbPath := filepath.Join(targetDir, thumbName)
		if err := p.saveWebP(thumbPath, imaging.Resize(img, w, 0, imaging.Lanczos)); err != nil {
			for _, path := range written {
				os.Remove(path)
			}
			return nil, err
		}
		written = append(written, thumbPath)
		srcset = append(srcset, fmt.Sprintf("%s %dw", p.url(thumbName), w))
	}
	if len(srcset) > 0 {
		srcset = append(srcset, fmt.Sprintf("%s %dw", p.url(filename), width))
	}

	return &ProcessedImage{
		Filename: filename,
		URL:      p.url(filename),
		SrcSet:   strings.Join(srcset, ", "),
		Width:    width,
		Height:   img.Bounds().Dy(),
	}, nil
}

func (p *ImageProcessor) saveWebP(path string, img image.Image) error {
	if err := webp.Save(path, img, &webp.Options{Quality: p.quality}); err != nil {
		return fmt.Errorf("failed to save WebP %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Delete removes an image and its srcset variants
func (p *ImageProcessor) Delete(filename string) error {
	targetDir := filepath.Join(p.basePath, "images")
	if err := os.Remove(filepath.Join(targetDir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, w := range thumbnailWidths {
		os.Remove(filepath.Join(targetDir, fmt.Sprintf("%s_%dpx.webp", base, w)))
	}
	return nil
}

func (p *ImageProcessor) url(filename string) string {
	return p.urlPrefix + "/images/" + filename
}
