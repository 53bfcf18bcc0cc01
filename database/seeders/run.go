// Package seeders fills a fresh sandbox database with the demo catalog, an
// admin account and the default content table. Every seeder skips rows that
// already exist, so `storefront seed` can run on a populated database.
package seeders

import (
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
)

type seeder struct {
	name string
	run  func(db *gorm.DB) error
}

// Products come first so later seeders can reference them.
var all = []seeder{
	{"products", SeedProducts},
	{"admin", SeedAdmin},
	{"content", SeedContent},
}

// RunAll applies each seeder in its own transaction and reports progress to
// out. It stops at the first failure; earlier seeders stay committed.
func RunAll(db *gorm.DB, out io.Writer) error {
	for _, s := range all {
		start := time.Now()
		fmt.Fprintf(out, "seeding %-10s", s.name)
		if err := db.Transaction(s.run); err != nil {
			fmt.Fprintln(out, " failed")
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
		fmt.Fprintf(out, " ok (%s)\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
