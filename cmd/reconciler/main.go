// Command reconciler matches payment evidence (pasted deposit notices or
// receipt images) against a tuition roster.
//
// Usage:
//
//	reconciler roster import roster.txt
//	reconciler reconcile --file notice.txt
//	pbpaste | reconciler reconcile --dry-run
//	reconciler serve --port 8085
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
)

var (
	cfg        *config.Config
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "reconciler",
	Short:         "Tuition payment reconciliation",
	Long:          "Attributes bank deposit notices and receipts to students by redacted name, exact fee or a combination of fees.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: ./config.yaml, then environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads an explicit config file strictly; without one it falls
// back to ./config.yaml and then the environment.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadOrEnv(), nil
	}
	return config.Load(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
