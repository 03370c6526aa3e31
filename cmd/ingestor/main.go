package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/ebcharge/internal/adapters/postgres"
	"github.com/samirrijal/ebcharge/internal/adapters/valkey"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
	"github.com/samirrijal/ebcharge/internal/pkg/config"
	"github.com/samirrijal/ebcharge/internal/pkg/logging"
)

// Manifest lists the charging networks whose catalogs are imported.
type Manifest struct {
	Source   string         `json:"source"`
	Networks []NetworkEntry `json:"networks"`
}

type NetworkEntry struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	// CatalogURL is an http(s) URL or a local path to a terminals CSV.
	CatalogURL string `json:"catalog_url"`
}

// catalogWriter persists parsed places and their terminals.
type catalogWriter interface {
	Upsert(ctx context.Context, places []postgres.PlaceRecord) (int, error)
}

// catalogSnapshot drops the catalog snapshot the API caches in Valkey.
type catalogSnapshot struct {
	cache ports.CacheService
}

func (s catalogSnapshot) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, usecases.CatalogCacheKey)
}

func main() {
	cfg, err := config.Load("ebcharge-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	slog.Info("catalog import starting", "networks", len(manifest.Networks), "source", manifest.Source)

	// Optional CLI arg: slug list
	slugFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			slugFilter[strings.TrimSpace(s)] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}
	writer := postgres.NewCatalogWriter(db)

	// Imported terminals must not wait out the API's catalog cache TTL
	var invalidator usecases.CatalogInvalidator
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, catalog cache not invalidated", "error", err)
	} else {
		defer cache.Close()
		invalidator = catalogSnapshot{cache: cache}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, network := range manifest.Networks {
		if len(slugFilter) > 0 && !slugFilter[network.Slug] {
			continue
		}

		wg.Add(1)
		go func(n NetworkEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestNetwork(ctx, writer, invalidator, client, n); err != nil {
				slog.Error("network import failed", "network", n.Slug, "error", err)
			}
		}(network)
	}

	wg.Wait()
	slog.Info("catalog import complete")
}

// ingestNetwork imports one network's catalog and, once it is stored,
// invalidates the cached catalog. A failed invalidation is only logged.
func ingestNetwork(ctx context.Context, writer catalogWriter, invalidator usecases.CatalogInvalidator, client *http.Client, n NetworkEntry) error {
	logger := slog.With("network", n.Slug)
	logger.Info("reading catalog", "url", n.CatalogURL)

	body, err := openCatalog(ctx, client, n.CatalogURL)
	if err != nil {
		return err
	}
	defer body.Close()

	places, problems, err := parseCatalog(body, n.Slug)
	if err != nil {
		return err
	}
	for _, p := range problems {
		logger.Warn("row skipped", "problem", p)
	}

	count, err := writer.Upsert(ctx, places)
	if err != nil {
		return err
	}
	logger.Info("catalog imported", "places", len(places), "terminals", count, "skipped", len(problems))

	if invalidator != nil {
		if err := invalidator.Invalidate(ctx); err != nil {
			logger.Warn("catalog cache invalidation failed", "error", err)
		}
	}
	return nil
}

func openCatalog(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.Open(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, location)
	}
	return resp.Body, nil
}
