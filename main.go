package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/cramr/internal/config"
	"github.com/sadopc/cramr/internal/importer"
	"github.com/sadopc/cramr/internal/planner"
	"github.com/sadopc/cramr/internal/store"
	"github.com/sadopc/cramr/internal/tui"
)

// provider is what the AI backends offer the app.
type provider interface {
	importer.Extractor
	importer.Motivator
}

func newProvider(cfg config.Config) provider {
	if cfg.Provider == config.ProviderOllama {
		return importer.NewOllamaExtractor(cfg.OllamaURL, cfg.Model)
	}
	return importer.NewGeminiExtractor(cfg.APIKey, cfg.Model)
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug {
		dir, err := config.Dir()
		if err == nil {
			err = os.MkdirAll(dir, 0o755)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		f, err := tea.LogToFile(filepath.Join(dir, "debug.log"), "cramr")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	mode, err := planner.ParseMode(cfg.ImportMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	tasks, settings := s.Load()
	plan := planner.New(s, tasks, settings, mode)

	ai := newProvider(cfg)
	log.Printf("[main] provider=%s db=%s tasks=%d mode=%s", cfg.Provider, dbPath, len(tasks), mode)

	app := tui.NewApp(plan, importer.NewPipeline(ai), ai, time.Now)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
