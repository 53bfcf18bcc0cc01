package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sparkcrackers/storefront/config"
	_ "github.com/sparkcrackers/storefront/database/migrations"
	"github.com/sparkcrackers/storefront/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	apiFlag    string
	closeMongo = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Sparkle Crackers storefront CLI",
	Long:          "Shop the Sparkle Crackers catalog from the terminal, or run the sandbox API it talks to.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetOutput(os.Stderr)
		if err := config.Load(); err != nil {
			return err
		}
		if apiFlag != "" {
			config.Set("API_BASE_URL", apiFlag)
		}
		if uri := config.LogMongoURI(); uri != "" {
			closer, err := logger.EnableMongo(uri, config.Get("LOG_MONGO_DB", "storefront"), config.Get("LOG_MONGO_COLLECTION", "logs"))
			if err != nil {
				logger.Warn("storefront: mongo log sink disabled", "error", err)
			} else {
				closeMongo = closer
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeMongo()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "API base URL (overrides API_BASE_URL)")

	// Sandbox API
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Account
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)

	// Shopping
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(wishlistCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(contentCmd)
}
