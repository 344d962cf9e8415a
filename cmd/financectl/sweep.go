package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "Marca como OVERDUE las facturas con vencimiento pasado y saldo pendiente",
	RunE: func(cmd *cobra.Command, _ []string) error {
		deps, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		marked, err := deps.Invoices.MarkOverdue(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "facturas marcadas: %d\n", marked)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
