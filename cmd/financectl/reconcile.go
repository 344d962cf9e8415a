package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <invoice-id>",
	Short: "Re-ejecuta el upsert del asiento de venta y el estado de venta de una factura",
	Args:  cobra.ExactArgs(1),
	RunE:  runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().Bool("enqueue", false, "encolar en el worker en lugar de ejecutar aquí")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	enqueue, _ := cmd.Flags().GetBool("enqueue")
	deps, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	id := args[0]
	if enqueue {
		if err := deps.Jobs.ScheduleReconcile(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reconciliación encolada: %s\n", id)
		return nil
	}
	if err := deps.Invoices.ReconcileLedger(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "factura reconciliada: %s\n", id)
	return nil
}
