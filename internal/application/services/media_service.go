package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/repositories"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/security"
)

// MediaService stores uploaded images for the image widget
type MediaService struct {
	processor *media.ImageProcessor
	repo      repositories.MediaRepository
	logger    *logging.ChanneledLogger
}

// NewMediaService creates a new media service
func NewMediaService(processor *media.ImageProcessor, repo repositories.MediaRepository, logger *logging.ChanneledLogger) *MediaService {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &MediaService{processor: processor, repo: repo, logger: logger}
}

// Upload processes a base64 data URL and records the resulting file
func (s *MediaService) Upload(data, filename, alt string) (*document.MediaFile, error) {
	start := time.Now()
	name := strings.TrimSuffix(filename, "."+extensionOf(filename))
	if name == "" {
		name = "image"
	}

	processed, err := s.processor.ProcessBase64Image(data, name)
	if err != nil {
		s.logger.Media().Warn("Image upload rejected", "filename", filename, "error", err.Error())
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	file := &document.MediaFile{
		ID:             security.GenerateULID(),
		Filename:       processed.Filename,
		AltDescription: alt,
		URL:            processed.URL,
		SrcSet:         processed.SrcSet,
		Width:          processed.Width,
		Height:         processed.Height,
		Created:        time.Now().UTC(),
	}
	if err := s.repo.Store(file); err != nil {
		if delErr := s.processor.Delete(processed.Filename); delErr != nil {
			s.logger.Media().Error("Failed to remove orphaned image", "filename", processed.Filename, "error", delErr.Error())
		}
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.Media().Info("Image uploaded",
		"fileId", file.ID,
		"filename", file.Filename,
		"width", file.Width,
		"height", file.Height,
		"duration", time.Since(start))
	return file, nil
}

// GetByID returns an uploaded file
func (s *MediaService) GetByID(id string) (*document.MediaFile, error) {
	if id == "" {
		return nil, fmt.Errorf("file ID cannot be empty")
	}
	file, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", id, err)
	}
	if file == nil {
		return nil, fmt.Errorf("file %s not found", id)
	}
	return file, nil
}

func extensionOf(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i+1:]
	}
	return ""
}
