package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/cli"
)

var (
	confirmMethod string
	confirmDate   string
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <run-id> <seq>",
	Short: "Record payments for a matched outcome",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid seq %q: %w", args[1], err)
		}

		req := service.ConfirmRequest{PaymentMethod: confirmMethod}
		if confirmDate != "" {
			d, err := time.ParseInLocation(time.DateOnly, confirmDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", confirmDate, err)
			}
			req.PaymentDate = d
		}

		app, err := cli.NewApp(cfg, "cli", verbose)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		payments, err := app.Service.ConfirmOutcome(args[0], seq, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range payments {
			fmt.Fprintf(out, "student %d  %s  %s\n", p.StudentID, cli.FormatWon(p.AmountPaid), p.PaymentMethod)
		}
		fmt.Fprintf(out, "Confirmed outcome %d: %d payments recorded\n", seq, len(payments))
		return nil
	},
}

func init() {
	confirmCmd.Flags().StringVar(&confirmMethod, "method", service.DefaultPaymentMethod, "payment method to record")
	confirmCmd.Flags().StringVar(&confirmDate, "date", "", "payment date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(confirmCmd)
}
