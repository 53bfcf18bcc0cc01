package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/database/seeders"
	"github.com/sparkcrackers/storefront/pkg/database"
	"github.com/sparkcrackers/storefront/pkg/migration"
)

// withDB opens the sandbox database for the duration of fn.
func withDB(fn func(db *gorm.DB) error) error {
	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

func runner(db *gorm.DB) *migration.Runner {
	r := migration.New(db)
	r.Out = os.Stdout
	return r
}

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			n, err := runner(db).Run()
			if err != nil {
				return err
			}
			fmt.Printf("Ran %d migration(s).\n", n)
			return nil
		})
	},
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			n, err := runner(db).Rollback()
			if err != nil {
				return err
			}
			fmt.Printf("Rolled back %d migration(s).\n", n)
			return nil
		})
	},
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			rows, err := runner(db).Status()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
			for _, r := range rows {
				ran, batch := "no", "-"
				if r.Ran {
					ran, batch = "yes", fmt.Sprint(r.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, ran, batch)
			}
			return w.Flush()
		})
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog, the admin account and the content defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return seeders.RunAll(db, os.Stdout)
		})
	},
}
