package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mccw/internal/config"
	"github.com/oakwood-commons/mccw/pkg/core"
	"github.com/oakwood-commons/mccw/pkg/host"
	"github.com/oakwood-commons/mccw/pkg/loader"
	"github.com/oakwood-commons/mccw/pkg/logger"
	"github.com/oakwood-commons/mccw/pkg/store"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

// app is everything a command needs to drive a widget instance.
type app struct {
	cfg      config.Config
	widget   *widget.Widget
	engine   *core.Engine
	registry *host.Registry
	closers  []func() error
}

// loadConfig reads the config file and applies the flag overrides.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	path, found := config.Path(opts.run.ConfigFile)
	if !found {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if opts.store != "" {
		if isDSN(opts.store) {
			cfg.Store.DSN, cfg.Store.Path = opts.store, ""
		} else {
			cfg.Store.Path, cfg.Store.DSN = opts.store, ""
		}
	}
	if opts.items != "" {
		cfg.Items.Path = opts.items
	}
	if opts.filter != "" {
		cfg.Filter = opts.filter
	}
	if cmd.Flags().Changed("locale") {
		cfg.Locale = opts.run.Locale
	}
	return cfg, cfg.Validate()
}

func isDSN(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	catalog, err := host.NewCatalog(cfg.Catalogs)
	if err != nil {
		return nil, err
	}
	w := widget.New(
		widget.WithLabels(catalog.Labels(cfg.Locale)),
		widget.WithClassPrefix(cfg.ClassPrefix),
	)

	a := &app{cfg: cfg, widget: w, registry: host.NewRegistry()}
	if err := host.Setup(a.registry, w); err != nil {
		return nil, err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var src core.Source = core.StaticSource(nil)
	if cfg.Items.Path != "" {
		src = loader.FileSource{Path: cfg.Items.Path, Locale: cfg.LocaleTag(), Logger: *lgr}
	}

	a.engine, err = core.New(
		core.WithStore(st),
		core.WithSource(src),
		core.WithWidget(w),
		core.WithFilterExpr(cfg.Filter),
		core.WithDefaults(cfg.Defaults),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	lgr.V(1).Info("widget ready", "store", storeKind(cfg.Store), "items", cfg.Items.Path, "locale", cfg.Locale)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	switch {
	case a.cfg.Store.DSN != "":
		db, err := store.OpenPostgres(ctx, a.cfg.Store.DSN, a.cfg.Store.Table)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case a.cfg.Store.Path != "":
		return store.NewFile(a.cfg.Store.Path)
	default:
		return store.NewMemory(), nil
	}
}

func storeKind(c config.StoreConfig) string {
	switch {
	case c.DSN != "":
		return "postgres"
	case c.Path != "":
		return c.Path
	default:
		return "memory"
	}
}

// Close releases the store.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
