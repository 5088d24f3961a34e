// Package app wires the gateway's components and owns their lifecycle.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"blocksd/internal/refresh"
	"blocksd/pkg/cache"
	"blocksd/pkg/classify"
	"blocksd/pkg/config"
	"blocksd/pkg/engage"
	"blocksd/pkg/fetch"
	"blocksd/pkg/layout"
	"blocksd/pkg/ledger"
	"blocksd/pkg/logger"
	"blocksd/pkg/models"
	"blocksd/pkg/pinning"
	"blocksd/pkg/store"
	"blocksd/pkg/tx"
)

// App encapsulates the gateway components and lifecycle.
type App struct {
	cfg       *config.Config
	addr      string
	sources   string
	version   string
	commit    string
	buildDate string

	led     *ledger.Client
	scanner *fetch.Scanner
	cache   *cache.Cache
	eng     *engage.Reconciler
	pins    *pinning.Client

	srv *http.Server
}

// New initializes everything that does not need a running context: config
// validation, the store, the ledger client and the domain components. Call
// Run to start the scheduler and HTTP server.
func New(cfg *config.Config, addr, sources, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	config.SetRuntime(cfg.RuntimeKeys())

	if err := store.Open(cfg.Server.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Server.DBPath, err)
	}

	a := &App{
		cfg:       cfg,
		addr:      addr,
		sources:   sources,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
	}

	a.led = ledger.New(cfg.Ledger.Endpoint, cfg.Ledger.Timeout.Duration())
	a.scanner = fetch.New(a.led, fetch.Config{
		Program:   cfg.Ledger.Program,
		BatchSize: cfg.Fetch.BatchSize,
		BaseDelay: cfg.Fetch.BaseDelay.Duration(),
		MaxDelay:  cfg.Fetch.MaxDelay.Duration(),
		Retries:   cfg.Fetch.Retries,
	})
	a.cache = cache.New(a.fetchEntry)
	a.eng = engage.New(a.submitter())
	if cfg.Pinning.Endpoint != "" {
		a.pins = pinning.New(cfg.Pinning.Endpoint, cfg.Pinning.APIKey, cfg.Pinning.Timeout.Duration())
	}

	// serve reads from the last run's snapshots until the first scan lands
	if err := a.warmLoad(); err != nil {
		logger.Warn("snapshot_warm_load_failed", "err", err)
	}

	return a, nil
}

// Run starts the refresh scheduler and the HTTP server, and blocks until
// ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	// initial population; a failure is not fatal, the scheduler retries
	go func() {
		if err := a.applyScan(ctx); err != nil {
			logger.Warn("initial_scan_failed", "err", err)
		}
	}()

	stopRefresh, err := refresh.Start(ctx, a.cfg.Refresh, a.applyScan)
	if err != nil {
		return err
	}
	defer stopRefresh()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(shCtx)
		return store.Close()
	case err := <-errCh:
		_ = store.Close()
		return err
	}
}

// submitter wraps the ledger client's send/confirm pair behind the
// tx.Submitter seam the reconciler and handlers share.
func (a *App) submitter() tx.Submitter {
	return tx.Func(func(ctx context.Context, wallet string, payload []byte) (string, error) {
		frame, err := tx.Envelope(wallet, payload)
		if err != nil {
			return "", err
		}
		sig, err := a.led.SendTransaction(ctx, frame)
		if err != nil {
			return "", err
		}
		cctx := ctx
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
		}
		if err := a.led.ConfirmTransaction(cctx, sig); err != nil {
			return "", err
		}
		return sig, nil
	})
}

// fetchEntry is the cache's read-through: one point lookup, classified.
func (a *App) fetchEntry(ctx context.Context, addr string) (cache.Entry, error) {
	acc, err := a.led.GetAccountInfo(ctx, addr)
	if err != nil {
		return cache.Entry{}, err
	}
	res, ok := classify.Classify(acc.Data)
	if !ok {
		return cache.Entry{}, fmt.Errorf("account %s: no layout accepted", addr)
	}
	if p, isPost := res.Entity.(*models.Post); isPost {
		p.Derive(time.Now())
	}
	a.snapshot(addr, res.Kind, res.Entity)
	return cache.Entry{Kind: res.Kind, Entity: res.Entity}, nil
}

// applyScan runs one full scan and folds the result into the cache,
// last-write-wins. Used for the initial load, the cron refresh and the
// admin trigger.
func (a *App) applyScan(ctx context.Context) error {
	res, err := a.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	for _, it := range res.Items {
		a.cache.Put(it.Address, cache.Entry{Kind: it.Kind, Entity: it.Entity})
		a.snapshot(it.Address, it.Kind, it.Entity)
	}
	return nil
}

func (a *App) snapshot(addr string, kind layout.Kind, entity any) {
	b, err := json.Marshal(entity)
	if err != nil {
		return
	}
	if err := store.SaveSnapshot(addr, string(kind), b); err != nil {
		logger.Debug("snapshot_save_failed", "addr", addr, "err", err)
	}
}

// warmLoad seeds the cache from persisted snapshots.
func (a *App) warmLoad() error {
	n := 0
	err := store.LoadSnapshots(func(addr, kind string, data []byte) error {
		var entity any
		switch layout.Kind(kind) {
		case layout.KindProfile:
			entity = &models.Profile{}
		case layout.KindPost:
			entity = &models.Post{}
		case layout.KindComment:
			entity = &models.Comment{}
		case layout.KindCommunity:
			entity = &models.Community{}
		default:
			return nil
		}
		if err := json.Unmarshal(data, entity); err != nil {
			return nil // stale snapshot, the next scan replaces it
		}
		a.cache.Put(addr, cache.Entry{Kind: layout.Kind(kind), Entity: entity})
		n++
		return nil
	})
	if n > 0 {
		logger.Info("snapshots_loaded", "count", n)
	}
	return err
}
