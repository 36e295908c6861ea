// Package main is the NovaSearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Gauravmangate27/novasearch/internal/cli"
	"github.com/Gauravmangate27/novasearch/internal/config"
	"github.com/Gauravmangate27/novasearch/internal/embedding"
	"github.com/Gauravmangate27/novasearch/internal/lexical"
	"github.com/Gauravmangate27/novasearch/internal/metadata"
	"github.com/Gauravmangate27/novasearch/internal/models"
	"github.com/Gauravmangate27/novasearch/internal/search"
	"github.com/Gauravmangate27/novasearch/internal/server"
	"github.com/Gauravmangate27/novasearch/internal/vector"
	"github.com/Gauravmangate27/novasearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/novasearch/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// uses the project's config.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				return config.Load(fallback)
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "index":
		runIndex()
	case "save":
		runSnapshot("save")
	case "load":
		runSnapshot("load")
	case "version":
		fmt.Printf("novasearch %s\n", version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: novasearch <command> [flags]

Commands:
  server    run the retrieval API server
  search    query a running server
  index     index a JSON documents file via a running server
  save      snapshot the server's index to a file
  load      restore the server's index from a snapshot
  version   print the version`)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to config file")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		logger.Fatal("failed to create embedder", zap.Error(err))
	}
	defer embedder.Close()

	store, err := newMetadataStore(&cfg.Storage)
	if err != nil {
		logger.Fatal("failed to open metadata store", zap.Error(err))
	}
	defer store.Close()

	// The lexical backend is optional: a failed open means the engine runs
	// dense-only for the life of the process.
	var lex lexical.Index
	if bleveIdx, lexErr := lexical.NewBleveIndex(cfg.Storage.LexicalIndexPath); lexErr != nil {
		logger.Warn("lexical backend unavailable, running dense-only", zap.Error(lexErr))
	} else {
		lex = bleveIdx
		defer bleveIdx.Close()
	}

	engine := search.NewEngine(embedder, vector.NewFlatIndex(), store, lex, &cfg.Search, logger)

	ctx := context.Background()
	if _, err := os.Stat(cfg.Storage.IndexPath); err == nil {
		if err := engine.LoadIndex(ctx, cfg.Storage.IndexPath); err != nil {
			logger.Error("failed to load index snapshot", zap.Error(err))
		}
	}
	// A durable metadata store without a matching snapshot would hand out
	// positions the vector index does not have. Refuse to start that way.
	if count, err := store.Count(ctx); err != nil {
		logger.Fatal("failed to read metadata count", zap.Error(err))
	} else if count != engine.Count() {
		logger.Fatal("metadata store does not match the vector index; load a matching snapshot or clear the metadata database",
			zap.Int("metadata_records", count), zap.Int("indexed_vectors", engine.Count()))
	}

	srv := server.NewServer(engine, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := engine.SaveIndex(ctx, cfg.Storage.IndexPath); err != nil {
			logger.Error("failed to save index snapshot", zap.Error(err))
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	k := fs.Int("k", 5, "number of results")
	hybrid := fs.Bool("hybrid", true, "use hybrid retrieval")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: novasearch search [flags] <query>")
		os.Exit(1)
	}
	query := fs.Arg(0)

	body, err := postJSON(*serverURL+"/api/v1/search", &models.SearchQuery{Query: query, K: *k, Hybrid: hybrid})
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}
	var response models.SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		fmt.Fprintf(os.Stderr, "invalid server response: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, &response, cli.OutputFormat(*format)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write results: %v\n", err)
		os.Exit(1)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	file := fs.String("file", "", "JSON file with documents to index")
	_ = fs.Parse(os.Args[2:])
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: novasearch index -file <documents.json>")
		os.Exit(1)
	}

	docs, err := readDocumentsFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read documents: %v\n", err)
		os.Exit(1)
	}
	body, err := postJSON(*serverURL+"/api/v1/documents", server.IndexRequest{Documents: docs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "indexing failed: %v\n", err)
		os.Exit(1)
	}
	var resp server.IndexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "invalid server response: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d of %d documents\n", resp.Indexed, resp.Total)
}

func runSnapshot(action string) {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	path := fs.String("path", "", "snapshot file path")
	_ = fs.Parse(os.Args[2:])
	if *path == "" {
		fmt.Fprintf(os.Stderr, "usage: novasearch %s -path <file>\n", action)
		os.Exit(1)
	}
	if _, err := postJSON(*serverURL+"/api/v1/index/"+action, server.SnapshotRequest{Path: *path}); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", action, err)
		os.Exit(1)
	}
	fmt.Printf("Index %s: %s\n", action+"d", *path)
}

// readDocumentsFile parses a JSON file holding either a bare document array
// or an {"documents": [...]} wrapper.
func readDocumentsFile(path string) ([]*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []*models.Document
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}
	var wrapper server.IndexRequest
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("file must hold a document array or {\"documents\": [...]}: %w", err)
	}
	return wrapper.Documents, nil
}

func postJSON(url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, body)
	}
	return body, nil
}

func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	case "openai", "":
		return embedding.NewOpenAIEmbedder(embedding.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			CacheSize:  cfg.CacheSize,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: openai, mock)", cfg.Provider)
	}
}

func newMetadataStore(cfg *config.StorageConfig) (metadata.Store, error) {
	switch cfg.MetadataBackend {
	case "sqlite":
		return metadata.NewSQLiteStore(cfg.MetadataDBPath)
	case "memory", "":
		return metadata.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q (supported: memory, sqlite)", cfg.MetadataBackend)
	}
}
