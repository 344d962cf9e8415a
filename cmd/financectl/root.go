package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elhamd/elhamd-api/internal/app"
	"github.com/elhamd/elhamd-api/pkg/config"
	"github.com/elhamd/elhamd-api/pkg/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "financectl",
	Short: "Operaciones de back-office sobre facturación y libro mayor",
	Long: `financectl comparte configuración (variables de entorno / .env) con la API.

Permite consultar el resumen financiero, forzar la reconciliación del asiento de
venta de una factura y ejecutar el barrido de facturas vencidas.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute punto de entrada del CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap carga config y dependencias para un subcomando.
func bootstrap(cmd *cobra.Command) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "financectl",
	}, cmd.ErrOrStderr())
	return app.Build(cmd.Context(), cfg, log, "financectl")
}
