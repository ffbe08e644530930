package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/web3guy0/goldsniper/core"
	"github.com/web3guy0/goldsniper/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// JOURNAL - Status transition log
// ═══════════════════════════════════════════════════════════════════════════════
//
// Append-only history of what the sniper said and when. Nothing here is read
// back into the sniper: latch state always starts empty.
//
// ═══════════════════════════════════════════════════════════════════════════════

// SignalEvent is one status transition
type SignalEvent struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" csv:"-"`
	EventID   string          `gorm:"uniqueIndex;size:36" csv:"event_id"`
	Source    string          `gorm:"index" csv:"source"`
	Kind      string          `gorm:"index" csv:"kind"`
	Severity  string          `csv:"severity"`
	Price     decimal.Decimal `gorm:"type:decimal(20,6)" csv:"price"`
	Magnitude decimal.Decimal `gorm:"type:decimal(20,6)" csv:"magnitude"`
	Zone      string          `csv:"zone"`
	EmittedAt time.Time       `gorm:"index" csv:"emitted_at"`
	CreatedAt time.Time       `csv:"-"`
}

// BeforeCreate assigns the public event id
func (e *SignalEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	return nil
}

// Journal persists transitions via gorm
type Journal struct {
	db     *gorm.DB
	filter core.TransitionFilter
}

// Open connects to PostgreSQL for postgres:// URLs, SQLite otherwise
func Open(dbPath string) (*Journal, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") {
		db, err = gorm.Open(postgres.Open(dbPath), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info().Msg("💾 Journal connected (PostgreSQL)")
	} else {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(dbPath), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info().Str("path", dbPath).Msg("💾 Journal initialized (SQLite)")
	}

	if err := db.AutoMigrate(&SignalEvent{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Journal{db: db}, nil
}

// Name implements core.Sink
func (j *Journal) Name() string { return "journal" }

// OnReport records the report when the status changed
func (j *Journal) OnReport(r *types.Report) {
	if !j.filter.Changed(r) {
		return
	}
	if err := j.Record(types.NewSignalRecord(r)); err != nil {
		log.Error().Err(err).Msg("Failed to record signal event")
	}
}

// Record inserts one event
func (j *Journal) Record(rec types.SignalRecord) error {
	ev := &SignalEvent{
		Source:    rec.Source,
		Kind:      rec.Kind.String(),
		Severity:  rec.Severity.String(),
		Price:     rec.Price,
		Magnitude: rec.Magnitude,
		Zone:      rec.Zone,
		EmittedAt: rec.Timestamp,
	}
	return j.db.Create(ev).Error
}

// Recent returns the newest events first
func (j *Journal) Recent(limit int) ([]SignalEvent, error) {
	var events []SignalEvent
	err := j.db.Order("emitted_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// CountByKind counts events per kind since t
func (j *Journal) CountByKind(since time.Time) (map[string]int64, error) {
	var rows []struct {
		Kind  string
		Count int64
	}
	err := j.db.Model(&SignalEvent{}).
		Select("kind, count(*) as count").
		Where("emitted_at >= ?", since).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Kind] = r.Count
	}
	return counts, nil
}

// Since returns events emitted at or after t, oldest first
func (j *Journal) Since(t time.Time) ([]SignalEvent, error) {
	var events []SignalEvent
	err := j.db.Where("emitted_at >= ?", t).Order("emitted_at ASC, id ASC").Find(&events).Error
	return events, err
}

// Close closes the underlying connection
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
