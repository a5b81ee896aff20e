package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 500
)

const schema = `
CREATE TABLE IF NOT EXISTS presets (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	icon           TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	options        JSONB NOT NULL DEFAULT '{}'::jsonb,
	prompt         TEXT NOT NULL DEFAULT '',
	column_formats JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cleaning_jobs (
	id            UUID PRIMARY KEY,
	source        TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	changed_cells INTEGER NOT NULL,
	quality_score INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL,
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cleaning_jobs_created_at ON cleaning_jobs (created_at DESC);
`

// Store persists user presets and job history in PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// presetRow is the table shape of a preset. Options and formats travel as
// JSON text so lib/pq does not send them as bytea.
type presetRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Icon          string    `db:"icon"`
	Description   string    `db:"description"`
	Options       string    `db:"options"`
	Prompt        string    `db:"prompt"`
	ColumnFormats string    `db:"column_formats"`
	CreatedAt     time.Time `db:"created_at"`
}

// NewStore connects to the database and creates the tables when missing
func NewStore(cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Store initialized successfully",
		zap.String("database_url", maskDatabaseURL(cfg.URL)),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return store, nil
}

// initialize checks the connection and applies the schema
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	s.logger.Info("Database schema ready")
	return nil
}

// ListPresets returns the built-in presets followed by user presets, newest first
func (s *Store) ListPresets(ctx context.Context) ([]Preset, error) {
	var rows []presetRow
	query := `
		SELECT id, name, icon, description, options, prompt, column_formats, created_at
		FROM presets
		ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	presets := SystemPresets()
	for _, row := range rows {
		p, err := row.preset()
		if err != nil {
			s.logger.Warn("Skipping unreadable preset", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// GetPreset looks up a built-in or user preset by ID
func (s *Store) GetPreset(ctx context.Context, id string) (*Preset, error) {
	if p, ok := SystemPreset(id); ok {
		return &p, nil
	}

	var row presetRow
	query := `
		SELECT id, name, icon, description, options, prompt, column_formats, created_at
		FROM presets
		WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("preset %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}

	p, err := row.preset()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePreset inserts or replaces a user preset. An empty ID is assigned.
func (s *Store) SavePreset(ctx context.Context, p *Preset) error {
	if err := validatePreset(p); err != nil {
		return err
	}
	row, err := newPresetRow(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO presets (id, name, icon, description, options, prompt, column_formats, created_at)
		VALUES (:id, :name, :icon, :description, :options, :prompt, :column_formats, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			icon = EXCLUDED.icon,
			description = EXCLUDED.description,
			options = EXCLUDED.options,
			prompt = EXCLUDED.prompt,
			column_formats = EXCLUDED.column_formats`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.Error("Failed to save preset",
			zap.Error(err),
			zap.String("id", p.ID))
		return fmt.Errorf("failed to save preset: %w", err)
	}

	s.logger.Debug("Preset saved", zap.String("id", p.ID), zap.String("name", p.Name))
	return nil
}

// DeletePreset removes a user preset. Built-in presets cannot be removed.
func (s *Store) DeletePreset(ctx context.Context, id string) error {
	if IsSystemPreset(id) {
		return ErrSystemPreset
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM presets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}

	s.logger.Debug("Preset deleted", zap.String("id", id))
	return nil
}

// ExportPresets encodes every user preset as a JSON array
func (s *Store) ExportPresets(ctx context.Context) ([]byte, error) {
	presets, err := s.ListPresets(ctx)
	if err != nil {
		return nil, err
	}
	return MarshalPresets(presets)
}

// ImportPresets stores the presets of an export file in one transaction
func (s *Store) ImportPresets(ctx context.Context, data []byte) ([]Preset, error) {
	presets, err := ParsePresets(data)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO presets (id, name, icon, description, options, prompt, column_formats, created_at)
		VALUES (:id, :name, :icon, :description, :options, :prompt, :column_formats, :created_at)`
	for i := range presets {
		row, err := newPresetRow(&presets[i])
		if err != nil {
			return nil, err
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return nil, fmt.Errorf("failed to import preset %q: %w", presets[i].Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	s.logger.Info("Presets imported", zap.Int("count", len(presets)))
	return presets, nil
}

// RecordJob appends a job to the history
func (s *Store) RecordJob(ctx context.Context, job *JobRecord) error {
	query := `
		INSERT INTO cleaning_jobs (id, source, row_count, changed_cells, quality_score, duration_ms, status, error, created_at)
		VALUES (:id, :source, :row_count, :changed_cells, :quality_score, :duration_ms, :status, :error, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		s.logger.Error("Failed to record job",
			zap.Error(err),
			zap.String("job_id", job.ID))
		return fmt.Errorf("failed to record job: %w", err)
	}
	return nil
}

// ListJobs returns recent jobs, newest first
func (s *Store) ListJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	limit = jobLimit(limit)

	jobs := []JobRecord{}
	query := `
		SELECT id, source, row_count, changed_cells, quality_score, duration_ms, status, error, created_at
		FROM cleaning_jobs
		ORDER BY created_at DESC
		LIMIT $1`
	if err := s.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func jobLimit(limit int) int {
	if limit <= 0 {
		return defaultJobLimit
	}
	return min(limit, maxJobLimit)
}

func newPresetRow(p *Preset) (*presetRow, error) {
	options, err := json.Marshal(p.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	formats := p.ColumnFormats
	if formats == nil {
		formats = map[string]cleaning.ColumnFormat{}
	}
	columnFormats, err := json.Marshal(formats)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column formats: %w", err)
	}
	return &presetRow{
		ID:            p.ID,
		Name:          p.Name,
		Icon:          p.Icon,
		Description:   p.Description,
		Options:       string(options),
		Prompt:        p.Prompt,
		ColumnFormats: string(columnFormats),
		CreatedAt:     p.CreatedAt,
	}, nil
}

func (r presetRow) preset() (Preset, error) {
	p := Preset{
		ID:          r.ID,
		Name:        r.Name,
		Icon:        r.Icon,
		Description: r.Description,
		Prompt:      r.Prompt,
		CreatedAt:   r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Options), &p.Options); err != nil {
		return p, fmt.Errorf("failed to decode options: %w", err)
	}
	if len(r.ColumnFormats) > 0 {
		if err := json.Unmarshal([]byte(r.ColumnFormats), &p.ColumnFormats); err != nil {
			return p, fmt.Errorf("failed to decode column formats: %w", err)
		}
		if len(p.ColumnFormats) == 0 {
			p.ColumnFormats = nil
		}
	}
	return p, nil
}

// maskDatabaseURL masks the password in a database URL for logging
func maskDatabaseURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	userPart := url[:at]
	scheme := strings.Index(userPart, "://")
	colon := strings.LastIndex(userPart, ":")
	if colon <= scheme+2 {
		return url
	}
	return userPart[:colon+1] + "***" + url[at:]
}
