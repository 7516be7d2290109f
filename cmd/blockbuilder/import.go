package main

import (
	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/markup"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

var importCmd = &cobra.Command{
	Use:   "import [page.html]",
	Short: "Convert HTML into a JSON document",
	Long:  `Parses arbitrary markup into an element tree. Anything unrecognized is kept as raw-html.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().String("title", "", "Document title (defaults to the <title> of the markup)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	registry := elements.DefaultRegistry()
	res := markup.NewImporter(registry, nil).ParseDocument(string(data))

	doc := document.Document{
		Title:        res.Title,
		GlobalStyles: document.DefaultGlobalStyles(config.ContentWidth),
		Elements:     res.Elements,
	}
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		doc.Title = title
	}
	doc.GlobalStyles.Preheader = res.Preheader

	out, err := services.NewDocumentIntegrityService(registry).Encode(doc)
	if err != nil {
		return err
	}
	return writeOutput(cmd, append(out, '\n'))
}
