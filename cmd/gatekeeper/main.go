// ABOUTME: Entry point for the gatekeeper access-control server
// ABOUTME: Provides serve, seed, and health subcommands

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/asbp/gatekeeper/internal/auth"
	"github.com/asbp/gatekeeper/internal/config"
	"github.com/asbp/gatekeeper/internal/server"
	"github.com/asbp/gatekeeper/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gatekeeper <command> [-config path]")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the gatekeeper server")
		fmt.Println("  seed      Create default roles and the root account")
		fmt.Println("  health    Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "seed":
		err = runSeed(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("gatekeeper", flag.ExitOnError)
	path := fs.String("config", "gatekeeper.yaml", "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return config.Load(*path)
}

func runServe(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	setupLogging(cfg.Logging)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if cfg.Seed.Enabled {
		if err := st.Seed(ctx, auth.HashPassword); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	cipher, err := auth.NewCipher(cfg.Auth.Secret, cfg.Auth.KDFWorkers)
	if err != nil {
		return fmt.Errorf("initializing cipher: %w", err)
	}

	svc := auth.NewService(st, st, st, cipher, slog.Default())
	srv := server.New(cfg.Server.HTTPAddr, st, svc, cfg.Server.ShutdownTimeout)

	return srv.Run(ctx)
}

func runSeed(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	setupLogging(cfg.Logging)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := st.Seed(ctx, auth.HashPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	color.Green("Seeded default roles and the %q account", store.SeedRootUsername)
	color.Yellow("Change the default password immediately after first login")
	return nil
}

func runHealth(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	addr := cfg.Server.HTTPAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	color.Green("Server healthy: %s", body["status"])
	return nil
}

// setupLogging configures the default slog logger from config
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
