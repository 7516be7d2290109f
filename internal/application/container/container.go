// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/markup"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/performance"
	persistence "github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/persistence/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Editing Services
	EditorService   *services.EditorService
	DocumentService *services.DocumentService
	StarterService  *services.StarterService
	DeliveryService *services.DeliveryService
	MediaService    *services.MediaService
	AuthService     *services.AuthService

	// Rendering
	Registry *widgets.Registry
	Renderer *templates.Renderer
	Importer *markup.Importer

	// Infrastructure Dependencies
	Database    *database.Database
	RenderCache *stores.RendersStore
	Broadcaster *messaging.PreviewBroadcaster
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services. A missing Resend key
// leaves test sends disabled rather than failing startup.
func NewContainer(db *database.Database, logger *logging.ChanneledLogger) (*Container, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	registry := elements.DefaultRegistry()
	renderer := templates.NewRenderer(registry, logger)
	importer := markup.NewImporter(registry, logger)
	renderCache := stores.NewRendersStore(config.RenderCacheTTL)
	broadcaster := messaging.NewPreviewBroadcaster(logger)

	editor := services.NewEditorService(registry, renderer, importer, renderCache, broadcaster, logger, services.EditorConfig{
		HistoryLimit:    config.HistoryLimit,
		MaxSessions:     config.MaxSessions,
		ContentWidth:    config.ContentWidth,
		SanitizeRawHTML: config.SanitizeRawHTML,
	})

	starters, err := services.NewStarterService(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to load starters: %w", err)
	}

	var mailer email.Service
	if config.ResendAPIKey != "" {
		mailer, err = email.NewService(config.ResendAPIKey, config.EmailFrom, config.EmailFromName)
		if err != nil {
			return nil, fmt.Errorf("failed to create email service: %w", err)
		}
	} else {
		logger.Startup().Warn("RESEND_API_KEY not set, test sends are disabled")
	}

	processor := media.NewImageProcessor(config.MediaDir, config.MediaURLPrefix, config.MediaMaxWidth)

	return &Container{
		EditorService:   editor,
		DocumentService: services.NewDocumentService(persistence.NewDocumentRepository(db.Conn, logger), editor, logger),
		StarterService:  starters,
		DeliveryService: services.NewDeliveryService(editor, mailer, logger),
		MediaService:    services.NewMediaService(processor, persistence.NewMediaRepository(db.Conn), logger),
		AuthService: services.NewAuthService(services.AuthConfig{
			JWTSecret:          config.JWTSecret,
			AdminPasswordHash:  config.AdminPasswordHash,
			EditorPasswordHash: config.EditorPasswordHash,
			TokenTTL:           config.TokenTTL,
		}, logger),

		Registry: registry,
		Renderer: renderer,
		Importer: importer,

		Database:    db,
		RenderCache: renderCache,
		Broadcaster: broadcaster,
		Logger:      logger,
		PerfTracker: performance.NewTracker(nil),
	}, nil
}
