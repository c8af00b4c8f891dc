package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nconklindev/sheetsync/internal/config"
	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/store/arrowfile"
	"github.com/nconklindev/sheetsync/internal/store/csvdir"
	"github.com/nconklindev/sheetsync/internal/store/gsheets"
	"github.com/nconklindev/sheetsync/internal/store/sqlstore"
	"github.com/nconklindev/sheetsync/internal/store/xlsx"
)

// openStore builds the configured store. The returned close function is never nil.
func (a *app) openStore(ctx context.Context) (store.Store, func() error, error) {
	noop := func() error { return nil }
	cfg := a.cfg
	if err := cfg.ValidateStore(); err != nil {
		return nil, noop, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, noop, err
	}

	switch cfg.Store.Kind {
	case config.StoreSheets:
		creds, err := cfg.CredentialsPath(a.finder, wd)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to locate credentials: %w", err)
		}
		api, err := gsheets.NewService(ctx, creds)
		if err != nil {
			return nil, noop, err
		}
		return gsheets.New(api, cfg.Sheets.SpreadsheetID), noop, nil

	case config.StoreXLSX:
		return xlsx.New(cfg.Store.Path), noop, nil

	case config.StoreSQL:
		s, err := sqlstore.Open(ctx, cfg.SQL.Driver, cfg.SQL.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}

	dir, err := cfg.StorePath(a.finder, wd)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to locate %s directory: %w", cfg.Store.Kind, err)
	}
	switch cfg.Store.Kind {
	case config.StoreFeather:
		return arrowfile.New(dir, arrowfile.FormatFeather), noop, nil
	case config.StoreParquet:
		return arrowfile.New(dir, arrowfile.FormatParquet), noop, nil
	default:
		return csvdir.New(dir), noop, nil
	}
}
