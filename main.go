package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/apikey"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/notify"
	"github.com/Zachkp/portfolio/internal/seed"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/table"
	"github.com/Zachkp/portfolio/internal/table/sqltable"
)

const version = "1.0.0"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio website and certificate admin",
		Long: `Serves the portfolio site, its certificate admin and the certificates
REST API. Without a subcommand it runs the web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	})
	cmd.AddCommand(certsCmd(), keysCmd(), seedCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio version %s\n", version)
		},
	})
	return cmd
}

// setup loads the configuration and installs the logger every command
// uses.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	levelName := cfg.LogLevel
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		levelName = f.Value.String()
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tbl, err := sqltable.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer tbl.Close()

	if cfg.SeedPath != "" {
		if err := seedIfEmpty(ctx, tbl, cfg.SeedPath, logger); err != nil {
			logger.Warn("Seeding certificates failed", "path", cfg.SeedPath, "error", err)
		}
	}

	a, err := newApp(cfg, tbl, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("Portfolio listening", "port", cfg.Port, "database", cfg.DatabasePath)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seedIfEmpty(ctx context.Context, tbl *sqltable.Table, path string, logger *slog.Logger) error {
	n, err := tbl.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	entries, err := seed.ReadFile(path)
	if err != nil {
		return err
	}
	inserted, err := seed.Insert(ctx, tbl, entries)
	logger.Info("Seeded certificates", "path", path, "count", inserted)
	return err
}

// app carries what the handlers share. The certificate snapshot is not
// part of it: every view builds and owns its own store.
type app struct {
	cfg      *config.Config
	table    table.Table
	keys     *apikey.Keys
	registry *prometheus.Registry
	metrics  *store.Metrics
	logger   *slog.Logger
	admins   *adminSessions
	salt     string
}

func newApp(cfg *config.Config, tbl table.Table, logger *slog.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	a := &app{
		cfg:      cfg,
		table:    tbl,
		registry: registry,
		metrics:  store.NewMetrics(registry),
		logger:   logger,
		admins:   newAdminSessions(),
		salt:     generateAdminToken(),
	}

	if cfg.TableJWTSecret != "" {
		keys, err := apikey.New(cfg.TableJWTSecret)
		if err != nil {
			return nil, err
		}
		a.keys = keys
	} else {
		logger.Warn("TABLE_JWT_SECRET is not set; the certificates REST API is disabled")
	}

	if cfg.AdminPassword == "admin123" && gin.Mode() == gin.DebugMode {
		logger.Warn("Using default admin password. Set ADMIN_PASSWORD environment variable.")
	}
	logger.Info("Admin access available", "path", "/admin/login")
	return a, nil
}

// newStore builds a store owned by a single view.
func (a *app) newStore(sink notify.Sink, quietLoad bool) *store.Store {
	return store.New(store.Config{
		Table:     a.table,
		Sink:      sink,
		Logger:    a.logger,
		Metrics:   a.metrics,
		QuietLoad: quietLoad,
	})
}

func (a *app) router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(templates)

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"name":        Name,
			"tagline":     Tagline,
			"aboutMe":     AboutMe,
			"skillGroups": SkillGroups,
			"project":     ProjectOne,
			"email":       ContactEmail,
			"socialLinks": SocialLinks,
			"year":        time.Now().Year(),
		})
	})

	// Certifications section, loaded by HTMX once the page is up
	r.GET("/certifications", func(c *gin.Context) {
		certs := a.newStore(notify.Discard, true)
		certs.Load(c.Request.Context())
		c.HTML(http.StatusOK, "certifications.html", gin.H{
			"certificates": certs.Snapshot(),
		})
	})

	// Work experience content
	r.GET("/work-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "work-content.html", gin.H{
			"jobTitle": "Fresh Graduate",
			"summary":  WorkExperience,
		})
	})

	// Education content
	r.GET("/education-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "education-content.html", gin.H{
			"education": EducationTimeline,
		})
	})

	r.GET("/health", func(c *gin.Context) {
		if p, ok := a.table.(interface{ Ping(context.Context) error }); ok {
			if err := p.Ping(c.Request.Context()); err != nil {
				a.logger.Error("Health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	a.setupAdminRoutes(r)
	a.setupTableRoutes(r)
	return r
}
