// Package manager moves tables between a store and the caller, running
// downloads through type inference.
package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

type DownloadOptions struct {
	HeaderRow   int
	IndexCol    string
	AutoConvert bool
}

// DefaultDownloadOptions reads from the first row and converts types.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{AutoConvert: true}
}

type Manager struct {
	store   store.Store
	inferer infer.Inferer
	log     logrus.FieldLogger
}

// New builds a manager. A nil logger falls back to the standard logrus logger.
func New(s store.Store, inf infer.Inferer, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{store: s, inferer: inf, log: log}
}

// Upload replaces the destination's contents with t.
func (m *Manager) Upload(ctx context.Context, t *types.Table, name string, includeIndex bool) error {
	start := time.Now()
	if err := m.store.Write(ctx, t, name, store.WriteOptions{IncludeIndex: includeIndex}); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	m.log.WithFields(logrus.Fields{
		"table":    name,
		"rows":     t.NumRows(),
		"columns":  t.NumCols(),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Uploaded table")
	return nil
}

// Download reads the named table. A destination that does not exist yet is
// created when the store supports it and an empty table is returned. With
// AutoConvert the table is passed through the inferer and Result.Columns
// describes each decision; otherwise the raw table is returned as is.
func (m *Manager) Download(ctx context.Context, name string, opts DownloadOptions) (*infer.Result, error) {
	log := m.log.WithField("table", name)

	raw, err := m.store.ReadRaw(ctx, name, store.ReadOptions{HeaderRow: opts.HeaderRow, IndexCol: opts.IndexCol})
	if errors.Is(err, store.ErrTableNotFound) {
		if c, ok := m.store.(store.Creator); ok {
			if err := c.Create(ctx, name); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", name, err)
			}
			log.Info("Created missing table")
		} else {
			log.Warn("Table not found")
		}
		return &infer.Result{Table: &types.Table{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}

	log = log.WithFields(logrus.Fields{"rows": raw.NumRows(), "columns": raw.NumCols()})
	if !opts.AutoConvert || m.inferer == nil {
		log.Info("Downloaded table")
		return &infer.Result{Table: raw}, nil
	}
	defer raw.Release()

	res, err := m.inferer.Infer(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", name, err)
	}
	for _, c := range res.Columns {
		log.WithFields(logrus.Fields{
			"column": c.Name,
			"kind":   c.To,
			"parsed": c.Parsed,
			"total":  c.Total,
		}).Debug("Inferred column")
	}
	log.WithField("policy", m.inferer.Policy()).Info("Downloaded table")
	return res, nil
}
