package main

import (
	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/startup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Starts the editing API and live preview server. Configuration comes from the environment or a .env file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		return startup.Initialize(port)
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}
