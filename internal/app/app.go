// Package app wires together configuration, the fetcher, and the history
// journal into a single Deps struct that commands receive at runtime.
package app

import (
	"github.com/johnny111272/grib-getter/internal/config"
	"github.com/johnny111272/grib-getter/internal/fetcher"
	"github.com/johnny111272/grib-getter/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// The journal is opened lazily so read-only commands never touch the DB file.
type Deps struct {
	Config  *config.Config
	Fetcher *fetcher.Fetcher

	journal *store.Store
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	f := fetcher.New(fetcher.Options{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay,
		MaxDelay:     cfg.MaxDelay,
		RateInterval: cfg.RateInterval,
		Timeout:      cfg.RequestTimeout,
	})
	return &Deps{
		Config:  cfg,
		Fetcher: f,
	}
}

// Journal returns the fetch history store, opening it on first use.
func (d *Deps) Journal() (*store.Store, error) {
	if d.journal != nil {
		return d.journal, nil
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return nil, err
	}
	d.journal = s
	return s, nil
}

// Close releases any open resources.
func (d *Deps) Close() error {
	if d.journal != nil {
		err := d.journal.Close()
		d.journal = nil
		return err
	}
	return nil
}
