package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tankwars/server/internal/battle"
	"github.com/tankwars/server/internal/catalogue"
	"github.com/tankwars/server/internal/config"
	"github.com/tankwars/server/internal/dispatcher"
	"github.com/tankwars/server/internal/idgen"
	"github.com/tankwars/server/internal/matchmaker"
	"github.com/tankwars/server/internal/model"
	"github.com/tankwars/server/internal/store"
	"github.com/tankwars/server/internal/transport"
)

const ConfigPath = "config/tankserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("TANKWARS_CONFIG"); p != "" {
		cfgPath = p
	}

	var (
		port        = flag.Int("port", 0, "override the configured UDP port")
		keyLog      = flag.Bool("keylog", false, "enable TLS session key logging (SSLKEYLOGFILE-style)")
		flagCfgPath = flag.String("config", cfgPath, "path to the server's YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*flagCfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *keyLog {
		cfg.KeyLog = true
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("tankwars server starting", "bind", cfg.BindAddress, "port", cfg.Port)

	db, err := store.NewPGStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()
	slog.Info("database connected")

	if err := store.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	tanks, err := catalogue.LoadTanks(cfg.TanksDir)
	if err != nil {
		return fmt.Errorf("loading tank catalogue: %w", err)
	}
	maps, err := catalogue.LoadMaps(cfg.MapsDir)
	if err != nil {
		return fmt.Errorf("loading map catalogue: %w", err)
	}
	slog.Info("catalogue loaded", "tanks", len(tanks), "maps", len(maps))

	assets, err := dispatcher.NewAssetIndex(".")
	if err != nil {
		return fmt.Errorf("indexing distributable assets: %w", err)
	}

	ids, err := idgen.New(cfg.NodeID)
	if err != nil {
		return fmt.Errorf("creating id generator: %w", err)
	}

	tanksByID := make(map[int32]model.TankCatalogueEntry, len(tanks))
	for _, t := range tanks {
		tanksByID[t.ID] = t
	}

	bodies := battle.BodyCatalogues{
		Tanks:      loadBodyCatalogue(cfg.TanksBodies),
		Bullets:    loadBodyCatalogue(cfg.BulletsBodies),
		MapObjects: loadBodyCatalogue(cfg.MapObjectsBodies),
	}

	engine := battle.NewEngine(tanksByID, maps, bodies, db)
	mm := matchmaker.New(engine)
	disp := dispatcher.New(db, ids, tanks, assets, mm, engine)

	endpoint := transport.NewEndpoint(disp, disp, mm.RemovePlayer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting matchmaker")
		mm.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("starting battle engine")
		engine.Run(gctx)
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
		var keyLogWriter interface {
			Write([]byte) (int, error)
		}
		if cfg.KeyLog {
			f, err := os.Create("tankserver-keylog.txt")
			if err != nil {
				return fmt.Errorf("opening TLS keylog file: %w", err)
			}
			defer f.Close()
			keyLogWriter = f
		}
		if err := endpoint.ListenAndServe(gctx, addr, cfg.CertCacheDir, keyLogWriter); err != nil {
			return fmt.Errorf("transport endpoint: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// loadBodyCatalogue loads a .polygons body catalogue, logging a warning and
// falling back to the bounding-circle stand-in radii (battle package) if
// the file is missing or malformed rather than treating it as fatal.
func loadBodyCatalogue(path string) catalogue.BodyCatalogue {
	bodies, err := catalogue.LoadBodyCatalogue(path)
	if err != nil {
		slog.Warn("falling back to stand-in collider radii", "path", path, "error", err)
		return nil
	}
	return bodies
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
