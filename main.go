package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/config"
	"github.com/fragmede/commentbox/internal/ui"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		log.Fatalf("creating config dir: %v", err)
	}

	// The terminal belongs to the UI; everything logged goes to the file.
	logFile, err := tea.LogToFile(cfg.LogPath, "commentbox")
	if err != nil {
		log.Fatalf("opening log: %v", err)
	}
	defer logFile.Close()

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, cfg.PrefetchTTL)

	// Warm the first page while the program starts up.
	go prefetch(client, cfg.DefaultPageSize)

	app := ui.NewApp(cfg, client, client)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func prefetch(client *api.Client, size int) {
	if _, err := client.Prefetch(context.Background(), []int{1}, size); err != nil {
		log.Printf("startup prefetch: %v", err)
	}
}
