package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
)

var widgetsCmd = &cobra.Command{
	Use:   "widgets",
	Short: "List the widget catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		registry := elements.DefaultRegistry()

		defs := registry.List()
		if category != "" {
			defs = registry.ListByCategory(widgets.Category(category))
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tLABEL\tCATEGORY\tCONTAINER")
		for _, def := range defs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", def.Type, def.Label, def.Category, def.IsContainer)
		}
		return w.Flush()
	},
}

func init() {
	widgetsCmd.Flags().String("category", "", "Only list widgets of this category")
	rootCmd.AddCommand(widgetsCmd)
}
