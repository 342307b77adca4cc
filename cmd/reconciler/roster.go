package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/tuition-reconciler/internal/cli"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the student roster",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import students from \"<name> <base fee>[ 교재비 <book fee>][ notes]\" lines",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		app, err := cli.NewApp(cfg, "cli", verbose)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		students, err := app.Service.ImportRoster(string(data))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		cli.PrintStudents(out, students)
		fmt.Fprintf(out, "Imported %d students\n", len(students))
		return nil
	},
}

var rosterQuery string

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List students",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.NewApp(cfg, "cli", verbose)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		students, err := app.Store.ListStudents(storage.StudentFilter{Query: rosterQuery})
		if err != nil {
			return err
		}
		cli.PrintStudents(cmd.OutOrStdout(), students)
		return nil
	},
}

func init() {
	rosterListCmd.Flags().StringVarP(&rosterQuery, "query", "q", "", "filter by name substring")
	rosterCmd.AddCommand(rosterImportCmd, rosterListCmd)
	rootCmd.AddCommand(rosterCmd)
}
