// Package main is the KeurCoiff CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/keurcoiff/keurcoiff/internal/config"
	"github.com/keurcoiff/keurcoiff/internal/export"
	"github.com/keurcoiff/keurcoiff/internal/models"
	"github.com/keurcoiff/keurcoiff/internal/search"
	"github.com/keurcoiff/keurcoiff/internal/server"
	"github.com/keurcoiff/keurcoiff/internal/storage"
	"github.com/keurcoiff/keurcoiff/internal/watcher"
	"github.com/keurcoiff/keurcoiff/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/keurcoiff/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if
// that exists it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "nearby":
		runNearby()
	case "seed":
		runSeed()
	case "export":
		runExport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("keurcoiff version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := storage.NewSQLiteCatalog(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if cfg.Storage.SeedPath != "" {
		count, err := store.CountSalons(ctx)
		if err != nil {
			logger.Fatal("Failed to count salons", zap.Error(err))
		}
		if count == 0 {
			n, err := store.Seed(ctx, cfg.Storage.SeedPath)
			if err != nil {
				logger.Warn("seed load failed", zap.String("path", cfg.Storage.SeedPath), zap.Error(err))
			} else {
				logger.Info("catalog seeded", zap.Int("salons", n))
			}
		}
	}

	engine := search.NewEngine(&cfg.Search, store.ListSalons, logger)
	salons, err := store.ListSalons(ctx)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	engine.Rebuild(salons)
	logger.Info("search index ready", zap.Int("indexed", engine.Size()))

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Storage.SeedPath != "" {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		seedWatch := watcher.NewSeedWatcher(cfg.Storage.SeedPath, func(path string) {
			n, err := store.Seed(context.Background(), path)
			if err != nil {
				logger.Warn("seed reload failed", zap.String("path", path), zap.Error(err))
				return
			}
			salons, err := store.ListSalons(context.Background())
			if err != nil {
				logger.Warn("catalog reload failed", zap.Error(err))
				return
			}
			engine.Rebuild(salons)
			logger.Info("catalog reloaded from seed", zap.Int("salons", n))
		}, watchOpts...)
		if err := seedWatch.Start(watchCtx); err != nil {
			logger.Warn("seed watcher not started", zap.Error(err))
		} else {
			defer seedWatch.Stop()
		}
	}

	srv := server.NewServer(engine, store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// buildQueryString joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildQueryString(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 10, "number of results")
	quarter := fs.String("quarter", "", "filter by quarter")
	city := fs.String("city", "", "filter by city")
	service := fs.String("service", "", "filter by service name")
	homeService := fs.Bool("home-service", false, "only salons offering home service")
	minRating := fs.Float64("min-rating", 0, "minimum average rating")
	maxPrice := fs.Float64("max-price", 0, "maximum service price in FCFA (0 = no limit)")
	lat := fs.Float64("lat", 0, "origin latitude for distance filtering")
	lng := fs.Float64("lng", 0, "origin longitude for distance filtering")
	maxDistance := fs.Float64("max-distance", 0, "maximum distance in km (requires -lat/-lng)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	queryStr := buildQueryString(fs.Args())

	query := &models.SearchQuery{
		Query: queryStr,
		Limit: *limit,
		Filters: models.Filters{
			Quarter:       *quarter,
			City:          *city,
			Service:       *service,
			HomeService:   *homeService,
			MinRating:     *minRating,
			MaxPrice:      *maxPrice,
			MaxDistanceKm: *maxDistance,
		},
	}
	if visited("lat", fs) && visited("lng", fs) {
		query.Filters.Origin = &models.Coordinate{Lat: *lat, Lng: *lng}
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		res, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		response = res
	} else {
		engine, store := openEngine(*configPath)
		defer store.Close()
		res, err := engine.Search(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		response = res
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		printResults(response.Results)
		fmt.Printf("\n%d result(s) in %d ms\n", response.Count, response.QueryTimeMs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// visited reports whether the named flag was set explicitly. Coordinates
// default to 0 which is a valid position, so presence matters.
func visited(name string, fs *flag.FlagSet) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printResults(results []*models.SearchResult) {
	for i, r := range results {
		line := fmt.Sprintf("%2d. %s — %s, %s (note %.1f/5, %d avis)",
			i+1, r.Salon.Name, r.Salon.Location.Quarter, r.Salon.Location.City,
			r.Salon.Rating.Average, r.Salon.Rating.Count)
		if r.DistanceKm != nil {
			line += fmt.Sprintf(" — %.2f km", *r.DistanceKm)
		}
		fmt.Println(utils.Truncate(line, 120))
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	params := url.Values{}
	if query.Query != "" {
		params.Set("q", query.Query)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	f := query.Filters
	if f.Quarter != "" {
		params.Set("quarter", f.Quarter)
	}
	if f.City != "" {
		params.Set("city", f.City)
	}
	if f.Service != "" {
		params.Set("service", f.Service)
	}
	if f.HomeService {
		params.Set("homeService", "true")
	}
	if f.MinRating > 0 {
		params.Set("minRating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MaxPrice != 0 {
		params.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Origin != nil {
		params.Set("latitude", strconv.FormatFloat(f.Origin.Lat, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(f.Origin.Lng, 'f', -1, 64))
	}
	if f.MaxDistanceKm > 0 {
		params.Set("maxDistance", strconv.FormatFloat(f.MaxDistanceKm, 'f', -1, 64))
	}

	resp, err := http.Get(serverURL + "/api/v1/salons/search?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runNearby() {
	fs := flag.NewFlagSet("nearby", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	lat := fs.Float64("lat", 0, "origin latitude")
	lng := fs.Float64("lng", 0, "origin longitude")
	maxDistance := fs.Float64("max-distance", 0, "maximum distance in km (0 = configured default)")
	_ = fs.Parse(os.Args[2:])

	if !visited("lat", fs) || !visited("lng", fs) {
		fmt.Println("Usage: keurcoiff nearby -lat <latitude> -lng <longitude> [-max-distance km]")
		os.Exit(1)
	}
	origin := models.Coordinate{Lat: *lat, Lng: *lng}
	if !origin.IsValid() {
		fmt.Fprintf(os.Stderr, "Invalid coordinates: %.4f, %.4f\n", *lat, *lng)
		os.Exit(1)
	}

	var results []*models.SearchResult
	if *serverURL != "" {
		params := url.Values{}
		params.Set("latitude", strconv.FormatFloat(*lat, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(*lng, 'f', -1, 64))
		if *maxDistance > 0 {
			params.Set("maxDistance", strconv.FormatFloat(*maxDistance, 'f', -1, 64))
		}
		resp, err := http.Get(*serverURL + "/api/v1/salons/nearby?" + params.Encode())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Results []*models.SearchResult `json:"results"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		results = out.Results
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		radius := *maxDistance
		if radius <= 0 {
			radius = cfg.Search.DefaultRadiusKm
		}
		engine, store := openEngine(*configPath)
		defer store.Close()
		results, err = engine.Nearby(context.Background(), origin, radius)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Nearby search failed: %v\n", err)
			os.Exit(1)
		}
	}
	printResults(results)
	fmt.Printf("\n%d salon(s) found\n", len(results))
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	seedPath := cfg.Storage.SeedPath
	if fs.NArg() > 0 {
		seedPath = fs.Arg(0)
	}
	if seedPath == "" {
		fmt.Println("Usage: keurcoiff seed [flags] <seed-file>")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteCatalog(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	n, err := store.Seed(context.Background(), seedPath)
	if err != nil {
		fmt.Printf("Seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d salon(s) from %s\n", n, seedPath)
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "catalog.xlsx", "output xlsx path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteCatalog(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	salons, err := store.ListSalons(context.Background())
	if err != nil {
		fmt.Printf("Failed to load catalog: %v\n", err)
		os.Exit(1)
	}
	if err := export.WriteCatalog(*out, salons); err != nil {
		fmt.Printf("Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d salon(s) to %s\n", len(salons), *out)
}

// statusResponse is the shape of GET /status.
type statusResponse struct {
	Salons  int64                  `json:"salons"`
	Indexed int                    `json:"indexed"`
	Config  map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.NewSQLiteCatalog(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open catalog: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		count, err := store.CountSalons(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count salons failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Salons: count}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("salons:   %d   # count of catalog entries\n", status.Salons)
		fmt.Printf("indexed:  %d   # count of published salons in the search index\n", status.Indexed)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// openEngine opens the catalog and builds a search engine for direct
// (serverless) commands.
func openEngine(configPath string) (*search.Engine, *storage.SQLiteCatalog) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteCatalog(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	return search.NewEngine(&cfg.Search, store.ListSalons, logger), store
}

func printUsage() {
	fmt.Println(`keurcoiff - Salon marketplace search engine

Usage:
  keurcoiff server [flags]            Start the HTTP server
  keurcoiff search [flags] <query>    Search salons
  keurcoiff nearby [flags]            List salons near a position
  keurcoiff seed [flags] [file]       Load the catalog from a seed file
  keurcoiff export [flags]            Export the catalog to xlsx
  keurcoiff status [flags]            Show catalog/index status
  keurcoiff version                   Show version
  keurcoiff help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/keurcoiff/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --server string         Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int             Number of results (default: 10)
  --quarter string        Filter by quarter
  --city string           Filter by city
  --service string        Filter by service name
  --home-service          Only salons offering home service
  --min-rating float      Minimum average rating
  --max-price float       Maximum service price in FCFA
  --lat, --lng float      Origin position (enables distance annotation)
  --max-distance float    Maximum distance in km (requires --lat/--lng)
  --output string         Output format: text or json (default: text)

Nearby Flags:
  --lat, --lng float      Origin position (required)
  --max-distance float    Maximum distance in km (default from config)

Examples:
  keurcoiff server
  keurcoiff search tresses dakar
  keurcoiff search --quarter plateau --min-rating 4.5
  keurcoiff search --lat 14.6928 --lng -17.4467 --max-distance 5 coiffure
  keurcoiff nearby --lat 14.6928 --lng -17.4467
  keurcoiff seed data/seed.json
  keurcoiff export --out catalog.xlsx
  keurcoiff status --output json`)
}
