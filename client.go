package ftsi

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ftsi/internal/app"
	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/db/bleve"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/logger"
)

// Client owns the catalogs and the entity registry.
// Safe for concurrent use. Call Close to release open catalogs.
type Client struct {
	store *bleve.Store
	app   *app.App
	cfg   clientConfig
	obs   *observer
}

// New opens a client. Catalogs are created lazily on first write.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o.apply(&cfg)
	}
	if cfg.analyzer != "" && !db.IsTextAnalyzer(cfg.analyzer) {
		return nil, fmt.Errorf("ftsi: unknown analyzer %q, want one of %v", cfg.analyzer, db.TextAnalyzers)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := bleve.NewStore(db.OnDisk(cfg.path), cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("ftsi: open storage: %w", err)
	}

	return &Client{
		store: store,
		app: app.New(store, entity.NewRegistry(), app.Options{
			Highlight:   cfg.highlight,
			MaxPageSize: cfg.maxPageSize,
			Analyzer:    cfg.analyzer,
		}),
		cfg: cfg,
		obs: obs,
	}, nil
}

// Close releases every open catalog. On-disk catalogs stay on disk.
func (c *Client) Close() error {
	return c.store.Close()
}

// Ping checks that the storage is usable.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Entities lists the registered entity type names.
func (c *Client) Entities() []string {
	es := c.app.Schemas.Entities()
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name()
	}
	return out
}

// TotalsAll returns the number of live documents across every catalog.
func (c *Client) TotalsAll(ctx context.Context) (n int, err error) {
	call := c.obs.begin("totals_all", "")
	defer func() { call.end(err, 0) }()

	return c.app.Catalogs.TotalsAll(c.ctx(ctx))
}

// DeleteEverything empties every catalog and returns how many documents were removed.
func (c *Client) DeleteEverything(ctx context.Context) (n int, err error) {
	call := c.obs.begin("delete_everything", "")
	defer func() { call.end(err, n) }()

	return c.app.Documents.DeleteEverything(c.ctx(ctx))
}

// Statuses returns the status of every catalog.
func (c *Client) Statuses(ctx context.Context) (_ []Status, err error) {
	call := c.obs.begin("statuses", "")
	defer func() { call.end(err, 0) }()

	sts, err := c.app.Catalogs.Statuses(c.ctx(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]Status, len(sts))
	for i, st := range sts {
		out[i] = statusFromDomain(st)
	}
	return out, nil
}

// ctx attaches the client logger so service-level logs reach it.
func (c *Client) ctx(ctx context.Context) context.Context {
	if c.cfg.logger == nil {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.cfg.logger)
}
