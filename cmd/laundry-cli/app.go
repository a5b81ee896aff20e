package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
	"github.com/raaihank/data-laundry/internal/logger"
	"github.com/raaihank/data-laundry/internal/store"
)

// app holds what every command needs after the config is loaded
type app struct {
	config *config.Config
	logger *logger.Logger
	store  *store.Store
}

// newApp loads the configuration and builds a logger. CLI logs go to stdout
// in console format unless the config file says otherwise.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if configPath == "" {
		cfg.Logging.Format = "console"
		cfg.Logging.Level = "warn"
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &app{config: cfg, logger: log}, nil
}

// openStore connects the preset store. required makes a disabled or
// unreachable database an error instead of a silent fallback.
func (a *app) openStore(required bool) error {
	if !a.config.Database.Enabled {
		if required {
			return fmt.Errorf("database is disabled; set database.enabled and database.url")
		}
		return nil
	}
	s, err := store.NewStore(a.config.Database, a.logger.WithComponent("store").Logger)
	if err != nil {
		if required {
			return err
		}
		a.logger.Warn("Preset store unavailable", zap.Error(err))
		return nil
	}
	a.store = s
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Sync()
}

// preset finds a preset in the store, falling back to the built-ins
func (a *app) preset(ctx context.Context, id string) (*store.Preset, error) {
	if a.store != nil {
		return a.store.GetPreset(ctx, id)
	}
	if p, ok := store.SystemPreset(id); ok {
		return &p, nil
	}
	return nil, fmt.Errorf("preset %q: %w", id, store.ErrNotFound)
}

// parseOptions turns "formatMobile,cleanEmail" into enabled toggles
func parseOptions(list []string) (cleaning.Options, error) {
	keys := make(map[string]bool, len(list))
	for _, k := range list {
		if k = strings.TrimSpace(k); k != "" {
			keys[k] = true
		}
	}
	return cleaning.Options{}.With(keys)
}

// parseFormats turns repeated "column=tag" flags into column formats
func parseFormats(pairs []string) (map[string]cleaning.ColumnFormat, error) {
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		column, tag, ok := strings.Cut(pair, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return nil, fmt.Errorf("%w: expected column=tag, got %q", cleaning.ErrUnknownFormat, pair)
		}
		tags[column] = tag
	}
	return cleaning.ParseColumnFormats(tags)
}
