package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

var exportCmd = &cobra.Command{
	Use:   "export [document.json]",
	Short: "Render a JSON document as HTML",
	Long:  `Validates a serialized document and renders its clean export markup. Reads stdin when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("viewport", string(document.ViewportDesktop), "Viewport to resolve responsive settings for")
	exportCmd.Flags().Bool("fragment", false, "Emit only the content markup, without the document shell")
	exportCmd.Flags().StringToString("utm", nil, "Tracking parameters appended to links, e.g. source=newsletter")
	exportCmd.Flags().Bool("sanitize", config.SanitizeRawHTML, "Sanitize raw-html blocks")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	vpName, _ := cmd.Flags().GetString("viewport")
	vp, err := document.ParseViewport(vpName)
	if err != nil {
		return err
	}
	fragment, _ := cmd.Flags().GetBool("fragment")
	sanitize, _ := cmd.Flags().GetBool("sanitize")
	utm, _ := cmd.Flags().GetStringToString("utm")

	tracking := make(map[string]string, len(utm))
	for k, v := range utm {
		if !strings.HasPrefix(k, "utm_") {
			k = "utm_" + k
		}
		tracking[k] = v
	}

	registry := elements.DefaultRegistry()
	doc, err := services.NewDocumentIntegrityService(registry).Decode(data)
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	out, err := templates.NewRenderer(registry, nil).Export(doc.Elements, doc.GlobalStyles, vp, templates.ExportOptions{
		Title:           doc.Title,
		FragmentOnly:    fragment,
		LinkTracking:    tracking,
		SanitizeRawHTML: sanitize,
	})
	if err != nil {
		return err
	}
	return writeOutput(cmd, []byte(out))
}
