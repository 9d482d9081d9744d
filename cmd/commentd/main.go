package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"

	"github.com/fragmede/commentbox/internal/config"
	"github.com/fragmede/commentbox/internal/server"
	"github.com/fragmede/commentbox/internal/store"
)

const CommentdVersion = "0.1.0"

const shutdownTimeout = 10 * time.Second

var (
	loadDotEnv = godotenv.Load
	openStore  = store.Open
)

func main() {
	usage := `Comment service.

Settings not given as options come from the environment
(COMMENTD_ADDR, COMMENTD_DB_PATH, COMMENTD_CORS_ORIGIN) or a .env file.

Usage:
    commentd [--addr=<addr>] [--db=<path>] [--cors=<origin>]
    commentd -h | --help
    commentd --version

Options:
    -h --help          Show this screen.
    --version          Show version.
    --addr=<addr>      Listen address, e.g. :8080.
    --db=<path>        SQLite database file.
    --cors=<origin>    Allowed CORS origin.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], CommentdVersion)
	if err != nil {
		log.Fatalf("parsing arguments: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("commentd: %v", err)
	}
}

func run(ctx context.Context, opts docopt.Opts) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr, err := opts.String("--addr"); err == nil && addr != "" {
		cfg.ServerAddr = addr
	}
	if path, err := opts.String("--db"); err == nil && path != "" {
		cfg.DBPath = path
	}
	if origin, err := opts.String("--cors"); err == nil && origin != "" {
		cfg.CORSOrigin = origin
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database dir: %w", err)
	}
	db, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           server.New(db, cfg.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("commentd %s listening on %s (db %s)", CommentdVersion, cfg.ServerAddr, cfg.DBPath)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
