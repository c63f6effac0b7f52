package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/labtrack/labtrack/internal/attachment"
	"github.com/labtrack/labtrack/internal/config"
	"github.com/labtrack/labtrack/internal/mcp"
	"github.com/labtrack/labtrack/internal/notify"
	"github.com/labtrack/labtrack/internal/progress"
	"github.com/labtrack/labtrack/internal/report"
	"github.com/labtrack/labtrack/internal/roster"
	"github.com/labtrack/labtrack/internal/snapshot"
	"github.com/labtrack/labtrack/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := os.Stdout
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewSlogNotifier(logger)
	manager := snapshot.NewManager(sqlite.NewKV(db), notifier, logger, snapshot.WithKey(cfg.DB.SnapshotKey))

	months := roster.BuildMonths(cfg.Roster.StartYear)
	members := manager.Load(context.Background(), roster.BuildMembers(cfg.Seeds()))

	store := progress.NewStore(members, months)
	attachments := attachment.NewManager(store, notifier)
	reports := report.NewService(store)

	save := func(ctx context.Context) error {
		return manager.Save(ctx, store)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Progress:    store,
			Attachments: attachments,
			Reports:     reports,
			Save:        save,
		},
		Logger: logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopAutosave := startAutosave(ctx, logger, save, cfg.Autosave.IntervalSeconds)
	defer stopAutosave()

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, cancel, logger, mcpServer)
	} else {
		runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}

	// Final write so nothing edited since the last autosave is lost.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := save(shutdownCtx); err != nil {
		logger.Error("final snapshot save failed", "error", err)
	}
}

// startAutosave persists the store on a fixed interval. An interval of zero
// disables it. The returned func stops the ticker.
func startAutosave(ctx context.Context, logger *slog.Logger, save mcp.SaveFunc, intervalSeconds int) func() {
	if intervalSeconds <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := save(ctx); err != nil {
					logger.Error("autosave failed", "error", err)
				}
			}
		}
	}()
	return func() {
		ticker.Stop()
		<-done
	}
}

func runStdioMode(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	transport := &sdkmcp.StdioTransport{}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
