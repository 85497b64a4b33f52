package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heefoo/codesight/internal/catalog"
	"github.com/heefoo/codesight/internal/config"
	"github.com/heefoo/codesight/internal/daemon"
	"github.com/heefoo/codesight/internal/embedding"
	"github.com/heefoo/codesight/internal/index"
	"github.com/heefoo/codesight/internal/llm"
	"github.com/heefoo/codesight/internal/parser"
	"github.com/heefoo/codesight/internal/review"
	"github.com/heefoo/codesight/internal/vector"
)

const version = "codesight v0.1.0"

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "index":
		indexCmd(os.Args[2:])
	case "ask":
		askCmd(os.Args[2:])
	case "watch":
		watchCmd(os.Args[2:])
	case "version":
		fmt.Println(version)
	case "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

// newService wires config into a review service. Embedding, LLM, and catalog
// failures downgrade to warnings so indexing and keyword retrieval still
// work offline.
func newService(configPath string) (*review.Service, *config.Config) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	for _, warning := range config.Validate(cfg) {
		log.Printf("Warning: %s", warning)
	}

	var embedder embedding.Provider
	if cfg.Embedding.Provider != "" {
		embedder, err = embedding.NewProvider(cfg.Embedding)
		if err != nil {
			log.Printf("Warning: embedding disabled: %v", err)
			embedder = nil
		}
	}

	var llmProvider llm.Provider
	if cfg.LLM.Enabled {
		llmProvider, err = llm.NewProvider(cfg.LLM)
		if err != nil {
			log.Printf("Warning: LLM disabled: %v", err)
			llmProvider = nil
		}
	}

	var cat review.Catalog
	if cfg.Catalog.Enabled {
		storage, err := catalog.NewStorage(cfg.Catalog)
		if err != nil {
			log.Printf("Warning: catalog disabled: %v", err)
		} else {
			if err := storage.RunMigrations(context.Background()); err != nil {
				log.Printf("Warning: catalog migrations failed: %v", err)
			}
			cat = storage
		}
	}

	idx := index.NewStore(parser.NewParser())
	vectors := vector.NewStore(embedder)
	return review.NewService(cfg, idx, vectors, llmProvider, cat), cfg
}

func indexCmd(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	asJSON := fs.Bool("json", false, "Print the summary as JSON")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codesight index [flags] <directory>")
		os.Exit(1)
	}

	svc, _ := newService(*configPath)

	summary, err := svc.IndexProject(context.Background(), fs.Arg(0))
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("Project %s indexed: %d/%d files supported, %d elements, languages: %v\n",
		summary.ProjectID, summary.SupportedFiles, summary.TotalFiles,
		summary.ElementCount, summary.Languages)
}

func askCmd(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	asJSON := fs.Bool("json", false, "Print the answer as JSON")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: codesight ask [flags] <directory> <question>")
		os.Exit(1)
	}

	svc, _ := newService(*configPath)
	ctx := context.Background()

	// The ask command indexes on demand: answering requires the project to
	// be indexed in this process first.
	summary, err := svc.IndexProject(ctx, fs.Arg(0))
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}

	answer, err := svc.Ask(ctx, summary.ProjectID, fs.Arg(1))
	if err != nil {
		log.Fatalf("Question failed: %v", err)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(answer.Answer)
	if len(answer.References) > 0 {
		fmt.Println("\nReferences:")
		for _, ref := range answer.References {
			fmt.Printf("  %s %s (%s:%d-%d)\n", ref.Kind, ref.Element, ref.File, ref.StartLine, ref.EndLine)
		}
	}
}

func watchCmd(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codesight watch [flags] <directory>")
		os.Exit(1)
	}
	root := fs.Arg(0)

	svc, cfg := newService(*configPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := svc.IndexProject(ctx, root); err != nil {
		log.Fatalf("Initial indexing failed: %v", err)
	}

	watcher, err := daemon.NewWatcher(daemon.WatcherConfig{
		Root: root,
		Reindex: func(ctx context.Context, root string) error {
			_, err := svc.IndexProject(ctx, root)
			return err
		},
		ExcludePatterns: cfg.Indexer.ExcludePatterns,
		DebounceMs:      cfg.Indexer.WatcherDebounceMs,
	})
	if err != nil {
		log.Fatalf("Failed to create watcher: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		watcher.Stop()
		cancel()
	}()

	log.Printf("Watching %s for changes...", root)
	if err := watcher.Watch(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Watcher error: %v", err)
	}
}

func printHelp() {
	fmt.Println(`codesight - code question answering over indexed projects

Commands:
  index <directory>             Index a project and print a summary
  ask <directory> <question>    Index a project and ask a question about it
  watch <directory>             Index a project and re-index on file changes
  version                       Print the version
  help                          Show this help

Flags (per command):
  -config <path>   Path to a TOML config file
  -json            Machine-readable output (index, ask)`)
}
