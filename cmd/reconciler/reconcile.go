package main

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/cli"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

var reconcileFlags cli.ReconcileFlags

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a deposit notice or receipt against the roster",
	Long:  "Reads text from --file or stdin, or an image from --image, and prints one outcome per conclusion.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := reconcileFlags.Validate(); err != nil {
			return err
		}

		app, err := cli.NewApp(cfg, "cli", verbose)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var run *storage.Run
		if reconcileFlags.Image != "" {
			img, err := reconcileFlags.ReadImage()
			if err != nil {
				return err
			}
			run, err = app.Service.ReconcileImage(ctx, img)
			if err != nil {
				return err
			}
		} else {
			text, err := reconcileFlags.ReadText(cmd.InOrStdin())
			if err != nil {
				return err
			}
			run, err = app.Service.Reconcile(ctx, service.Request{
				Source: storage.SourceText,
				Text:   text,
				DryRun: reconcileFlags.DryRun,
			})
			if err != nil {
				return err
			}
		}

		if reconcileFlags.JSON {
			records := make([]reconcile.Record, len(run.Outcomes))
			for i, o := range run.Outcomes {
				records[i] = o.Record
			}
			return cli.PrintJSON(out, records)
		}

		source := storage.SourceText
		if reconcileFlags.Image != "" {
			source = storage.SourceImage
		}
		cli.PrintHeader(out, source, reconcileFlags.DryRun)
		cli.PrintRun(out, run)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileFlags.File, "file", "f", "", "text file to reconcile (\"-\" or empty for stdin)")
	reconcileCmd.Flags().StringVar(&reconcileFlags.Image, "image", "", "receipt image to run through OCR")
	reconcileCmd.Flags().BoolVar(&reconcileFlags.DryRun, "dry-run", false, "do not store the run (text input only)")
	reconcileCmd.Flags().BoolVar(&reconcileFlags.JSON, "json", false, "print outcome records as JSON")
	rootCmd.AddCommand(reconcileCmd)
}
