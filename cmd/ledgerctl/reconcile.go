package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"ledger-service/internal/repository"
	"ledger-service/internal/service"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare every record's quantity with its journal; exits 1 on drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		drift, err := service.NewReconciler(repository.NewTransactionScope(db, log), log).Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}
		return reportDrift(cmd.OutOrStdout(), drift)
	},
}

func reportDrift(out io.Writer, drift []service.Drift) error {
	if len(drift) == 0 {
		fmt.Fprintln(out, "Ledger consistent")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECORD\tWAREHOUSE\tPRODUCT\tQUANTITY\tJOURNAL")
	for _, d := range drift {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", d.RecordID, d.WarehouseID, d.ProductID, d.Quantity, d.JournalSum)
	}
	w.Flush()
	return errDrift
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
