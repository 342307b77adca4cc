package main

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/tuition-reconciler/internal/cli"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored runs, or show one run's outcomes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.NewApp(cfg, "cli", verbose)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			run, err := app.Store.GetRun(args[0])
			if err != nil {
				return err
			}
			cli.PrintRun(out, run)
			return nil
		}

		runs, err := app.Store.ListRuns(runsLimit, 0)
		if err != nil {
			return err
		}
		cli.PrintRuns(out, runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
