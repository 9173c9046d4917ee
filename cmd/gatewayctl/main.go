package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/infrastructure/logger"
	"github.com/shopvoice/function-gateway/internal/infrastructure/store"
	"github.com/shopvoice/function-gateway/internal/utils/crypto"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gatewayctl",
	Short: "Operator tool for the function gateway",
	Long: `gatewayctl manages assistant bindings and tenant sessions in the
gateway's store, and prints the function schemas to paste into the voice
assistant configuration.

It reads the same environment (and .env file) as the server.

Examples:
  gatewayctl bind ast_123 shop-a.myshopify.com
  gatewayctl sessions list shop-a.myshopify.com
  gatewayctl sessions purge shop-a.myshopify.com --bindings
  gatewayctl functions schema`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if path, _ := cmd.Flags().GetString("env-file"); path != "" {
			if _, err := os.Stat(path); err == nil {
				if err := godotenv.Overload(path); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(bindCmd)
	rootCmd.AddCommand(unbindCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(functionsCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
}

// backend is the slice of the server's wiring the commands operate on.
type backend struct {
	stores   *store.Stores
	sessions session.Store
	resolver *tenant.Resolver
}

func (b *backend) Close() error {
	return b.stores.Close()
}

func openBackend(ctx context.Context, cmd *cobra.Command) (*backend, error) {
	cfg, err := config.LoadForTooling()
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log = logger.NewWithWriter(cfg, cmd.ErrOrStderr())
	}

	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	cipher, err := crypto.NewTokenCipher(cfg.SessionEncryptionKey)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	sessions := session.NewService(stores.Sessions, log, session.WithSealer(cipher))
	return &backend{
		stores:   stores,
		sessions: sessions,
		resolver: tenant.NewResolver(stores.Bindings, sessions, log),
	}, nil
}
