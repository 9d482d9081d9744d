package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docopt/docopt-go"
	"github.com/go-playground/assert/v2"

	"github.com/fragmede/commentbox/internal/store"
)

func TestRunStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "comments.db")
	opts := docopt.Opts{"--addr": "127.0.0.1:0", "--db": path, "--cors": nil}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, run(ctx, opts), nil)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not created: %v", err)
	}
}

func TestRunReportsStoreFailure(t *testing.T) {
	orig := openStore
	defer func() { openStore = orig }()
	boom := errors.New("disk full")
	openStore = func(string) (*store.DB, error) { return nil, boom }

	opts := docopt.Opts{"--addr": "127.0.0.1:0", "--db": filepath.Join(t.TempDir(), "c.db")}
	err := run(context.Background(), opts)
	assert.Equal(t, errors.Is(err, boom), true)
}
