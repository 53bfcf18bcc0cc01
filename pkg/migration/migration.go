// Package migration runs and tracks the sandbox schema migrations.
//
// Each migration registers itself from an init func:
//
//	func init() {
//	    migration.Register("20250101000100_create_products_table", &createProducts{})
//	}
//
// and is applied in name order by:
//
//	storefront migrate             run all pending
//	storefront migrate:rollback    roll back the last batch
//	storefront migrate:status      list every migration
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/pkg/logger"
)

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type entry struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry []entry
)

// Register adds a migration. Names are timestamp-prefixed so they sort in
// the order they must run.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, entry{name: name, m: m})
}

func registered() []entry {
	regMu.Lock()
	out := append([]entry(nil), registry...)
	regMu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// StatusRow is one line of Runner.Status.
type StatusRow struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner applies migrations to one database and reports progress to Out.
type Runner struct {
	db  *gorm.DB
	Out io.Writer
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db, Out: io.Discard}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

// Run applies every pending migration as one batch and returns how many ran.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	done, err := r.ran()
	if err != nil {
		return 0, err
	}

	var pending []entry
	for _, e := range registered() {
		if _, ok := done[e.name]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.Out, "Nothing to migrate.")
		return 0, nil
	}

	batch := r.lastBatch() + 1
	for _, e := range pending {
		logger.Info("migration: running", "name", e.name, "batch", batch)
		if err := e.m.Up(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := r.db.Create(&record{Name: e.name, Batch: batch}).Error; err != nil {
			return 0, fmt.Errorf("migration: record %s: %w", e.name, err)
		}
		fmt.Fprintf(r.Out, "Migrated: %s\n", e.name)
	}
	return len(pending), nil
}

// Rollback reverts the most recent batch and returns how many were reverted.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	last := r.lastBatch()
	if last == 0 {
		fmt.Fprintln(r.Out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("id desc").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	byName := make(map[string]Migration)
	for _, e := range registered() {
		byName[e.name] = e.m
	}

	for _, row := range rows {
		m, ok := byName[row.Name]
		if !ok {
			return 0, fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		logger.Info("migration: rolling back", "name", row.Name)
		if err := m.Down(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&record{}, row.ID).Error; err != nil {
			return 0, fmt.Errorf("migration: forget %s: %w", row.Name, err)
		}
		fmt.Fprintf(r.Out, "Rolled back: %s\n", row.Name)
	}
	return len(rows), nil
}

// Status lists every registered migration in run order.
func (r *Runner) Status() ([]StatusRow, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}

	var rows []StatusRow
	for _, e := range registered() {
		rec, ok := done[e.name]
		rows = append(rows, StatusRow{Name: e.name, Ran: ok, Batch: rec.Batch})
	}
	return rows, nil
}

func (r *Runner) lastBatch() int {
	var row struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&row)
	return row.Max
}
