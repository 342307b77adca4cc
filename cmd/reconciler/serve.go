package main

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/tuition-reconciler/internal/cli"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cli.RunServe(cfg, cli.ServeFlags{
			Port:    servePort,
			Verbose: verbose,
		})
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default: api.port from config)")
	rootCmd.AddCommand(serveCmd)
}
