package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/media"
)

type memoryMediaRepo struct {
	files    map[string]*document.MediaFile
	storeErr error
}

func (r *memoryMediaRepo) Store(file *document.MediaFile) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	r.files[file.ID] = file
	return nil
}

func (r *memoryMediaRepo) FindByID(id string) (*document.MediaFile, error) {
	return r.files[id], nil
}

func pngDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, height/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUploadImage(t *testing.T) {
	dir := t.TempDir()
	repo := &memoryMediaRepo{files: map[string]*document.MediaFile{}}
	svc := NewMediaService(media.NewImageProcessor(dir, "/media/", 1200), repo, nil)

	file, err := svc.Upload(pngDataURL(t, 700, 350), "hero.png", "Hero banner")
	require.NoError(t, err)

	assert.Equal(t, "hero.webp", file.Filename)
	assert.Equal(t, "/media/images/hero.webp", file.URL)
	assert.Equal(t, 700, file.Width)
	assert.Equal(t, 350, file.Height)
	assert.Equal(t, "/media/images/hero_600px.webp 600w, /media/images/hero_300px.webp 300w, /media/images/hero.webp 700w", file.SrcSet)
	assert.FileExists(t, filepath.Join(dir, "images", "hero.webp"))
	assert.FileExists(t, filepath.Join(dir, "images", "hero_300px.webp"))

	found, err := svc.GetByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hero banner", found.ImageSettings()["alt"])

	_, err = svc.GetByID("missing")
	assert.Error(t, err)
}

func TestUploadRejectsBadData(t *testing.T) {
	repo := &memoryMediaRepo{files: map[string]*document.MediaFile{}}
	svc := NewMediaService(media.NewImageProcessor(t.TempDir(), "/media", 0), repo, nil)

	for _, data := range []string{"", "hello", "data:image/png;base64,%%%", "data:image/png;base64,aGVsbG8="} {
		_, err := svc.Upload(data, "x.png", "")
		assert.Error(t, err, data)
	}
	assert.Empty(t, repo.files)
}

func TestUploadRemovesFilesWhenStoreFails(t *testing.T) {
	dir := t.TempDir()
	repo := &memoryMediaRepo{files: map[string]*document.MediaFile{}, storeErr: errors.New("disk full")}
	svc := NewMediaService(media.NewImageProcessor(dir, "/media", 1200), repo, nil)

	_, err := svc.Upload(pngDataURL(t, 400, 200), "logo.png", "")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "images", "logo.webp"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "images", "logo_300px.webp"))
	assert.True(t, os.IsNotExist(statErr))
}
