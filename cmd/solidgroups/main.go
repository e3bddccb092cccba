package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkel/solidgroups/internal/cache"
	"github.com/mkel/solidgroups/internal/config"
	"github.com/mkel/solidgroups/internal/contacts"
	"github.com/mkel/solidgroups/internal/graph"
	"github.com/mkel/solidgroups/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the type index to start from: argument wins over config
	typeIndex := cfg.Source.TypeIndex
	if len(os.Args) > 1 {
		typeIndex = os.Args[1]
	}

	// remember the last type index so the next run needs no argument
	if typeIndex != "" && typeIndex != cfg.Source.TypeIndex {
		cfg.Source.TypeIndex = typeIndex
		if err := config.Save(cfg); err != nil {
			log.Printf("save config: %v", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		log.Fatalf("mkdir cache dir: %v", err)
	}

	if err := cache.RunMigrations(cfg.Cache.Path, "internal/cache/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer db.Close()

	client := &http.Client{Timeout: time.Duration(cfg.Source.TimeoutSeconds) * time.Second}

	store := graph.NewStore()
	fetch := graph.NewFetcher(store, client, cache.NewDocuments(db))
	patch := graph.NewPatcher(client)
	locator := &contacts.Locator{Store: store, Fetch: fetch, Patch: patch}

	p := tea.NewProgram(tui.New(ctx, cfg, store, fetch, locator, typeIndex), tea.WithAltScreen())
	model, err := p.Run()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	// report the picked group on stdout so the binary composes in scripts
	if app, ok := model.(*tui.App); ok && app.Picked() != nil {
		fmt.Println(app.Picked().Node.Value)
	}
}
