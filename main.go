package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/cache"
	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/config"
	"github.com/ThomasAyr/carte-scolaire/internal/dashboard"
	"github.com/ThomasAyr/carte-scolaire/internal/db"
	"github.com/ThomasAyr/carte-scolaire/internal/geocoding"
	"github.com/ThomasAyr/carte-scolaire/internal/httputil"
	"github.com/ThomasAyr/carte-scolaire/internal/logger"
	"github.com/ThomasAyr/carte-scolaire/internal/metrics"
	"github.com/ThomasAyr/carte-scolaire/internal/middleware"
	"github.com/ThomasAyr/carte-scolaire/internal/pages"
	"github.com/ThomasAyr/carte-scolaire/internal/perimeter"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
	_ "github.com/ThomasAyr/carte-scolaire/internal/provider/annuaire"
	"github.com/ThomasAyr/carte-scolaire/internal/provider/annuairecsv"
	"github.com/ThomasAyr/carte-scolaire/internal/sectorisation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer lg.Sync()
	zap.ReplaceGlobals(lg.Logger)
	log := lg.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A load failure does not stop the server: pages that need the table
	// answer 503 with the reason.
	state := loadState(ctx, cfg, log)
	if err := state.Ready(); err != nil {
		log.Error("catchment table unavailable", zap.String("source", state.Source), zap.Error(err))
	} else {
		metrics.CatchmentRows.Set(float64(state.Table.Len()))
		log.Info("catchment table loaded",
			zap.String("source", state.Source),
			zap.Int("rows", state.Table.Len()),
			zap.Int("localities", len(state.Table.Localities())))
	}

	dir, catalog, closeDir, err := buildDirectory(cfg, log)
	if err != nil {
		log.Fatal("directory", zap.Error(err))
	}
	defer closeDir()

	geo := geocoding.NewClient(cfg.Provider.GeocoderURL, cfg.Provider.Timeout,
		geocoding.WithRateLimit(cfg.Provider.GeocoderRateLimit))

	pops := dashboard.DefaultPopulations()
	if cfg.PopulationsPath != "" {
		if pops, err = dashboard.LoadPopulations(cfg.PopulationsPath); err != nil {
			log.Fatal("populations", zap.String("path", cfg.PopulationsPath), zap.Error(err))
		}
	}

	search := sectorisation.NewService(state.Table, dir, geo, log.Named("search"),
		sectorisation.WithConcurrency(cfg.EnrichConcurrency))
	perim := perimeter.NewService(state.Table, catalog, geo, log.Named("perimeter"))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(log.Named("http")))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if err := state.Ready(); err != nil {
			status, code = err.Error(), http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{
			"catchment": status,
			"rows":      state.Table.Len(),
			"directory": dir.Name(),
		})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/pages", pages.SetupRoutes(pages.NewHandler(state)))
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCatchment(state))
			r.Mount("/sectorisation", sectorisation.SetupRoutes(sectorisation.NewHandler(search, log.Named("search"))))
			r.Mount("/stats", dashboard.SetupRoutes(dashboard.NewHandler(state.Table, pops, log.Named("stats"))))
			r.Mount("/perimeter", perimeter.SetupRoutes(perimeter.NewHandler(perim, log.Named("perimeter"))))
		})
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func loadState(ctx context.Context, cfg *config.Config, log *zap.Logger) *pages.AppState {
	state := &pages.AppState{Source: cfg.CatchmentSource}
	switch cfg.CatchmentSource {
	case config.SourceDB:
		gdb, err := db.Connect(cfg.DatabaseURL, log)
		if err != nil {
			state.LoadErr = err
			return state
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}
		state.Table, state.LoadErr = catchment.NewStore(gdb).Load(ctx, cfg.CatchmentDepartments)
	default:
		state.Source = cfg.CatchmentCSVPath
		rows, err := catchment.LoadCSV(cfg.CatchmentCSVPath)
		if err != nil {
			state.LoadErr = err
			return state
		}
		state.Table = catchment.NewTable(rows)
	}
	return state
}

// buildDirectory returns the lookup directory (cache-wrapped when configured)
// and the perimeter catalog, which needs the CSV dump.
func buildDirectory(cfg *config.Config, log *zap.Logger) (provider.Directory, perimeter.Catalog, func(), error) {
	closer := func() {}

	dir, err := provider.NewDirectory(cfg.Provider)
	if err != nil {
		return nil, nil, closer, err
	}

	var catalog perimeter.Catalog
	if d, ok := dir.(*annuairecsv.Directory); ok {
		catalog = d
	} else if cfg.Provider.DirectoryCSVPath != "" {
		d, err := annuairecsv.Load(cfg.Provider.DirectoryCSVPath)
		if err != nil {
			log.Warn("perimeter catalog unavailable", zap.Error(err))
		} else {
			catalog = d
		}
	}

	switch cfg.CacheBackend {
	case config.CacheMemory:
		dir = provider.NewCachedDirectory(dir, cache.NewMemoryStore(cfg.CacheTTL), cfg.CacheTTL)
	case config.CacheRedis:
		rc := cache.OpenRedisFromEnv()
		closer = func() { _ = rc.Close() }
		dir = provider.NewCachedDirectory(dir, cache.NewRedisStore(rc, "carte-scolaire:"), cfg.CacheTTL)
	}

	log.Info("directory ready", zap.String("provider", dir.Name()), zap.Bool("perimeter_catalog", catalog != nil))
	return dir, catalog, closer, nil
}
