package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"lead-insights/internal/provider"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Provider provider.Settings

	DataPath string
	CacheDir string

	HTTPAddr       string
	AllowedOrigins []string

	EnableMermaidCharts bool
	ChronologicalMonths bool
	ExportColumnsFile   string
	// SnapshotMaxAge triggers a refetch of older snapshots; zero keeps them forever.
	SnapshotMaxAge time.Duration
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	return fromEnv(dataPath)
}

func fromEnv(dataPath string) (*AppConfig, error) {
	cacheDir := filepath.Join(dataPath, "cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	durationVar := func(key string, fallback time.Duration) time.Duration {
		v, err := getEnvDuration(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &AppConfig{
		Provider: provider.Settings{
			Source: strings.ToLower(getEnv("LEADS_SOURCE", provider.SourceDemo)),
			Demo: provider.DemoConfig{
				Count:    intVar("DEMO_LEAD_COUNT", 250),
				Seed:     int64(intVar("DEMO_SEED", 42)),
				Scenario: getEnv("DEMO_SCENARIO", "steady"),
			},
			File: provider.FileConfig{
				Path: getEnv("LEADS_FILE", ""),
			},
			REST: provider.RESTConfig{
				BaseURL:        getEnv("LEADS_REST_URL", ""),
				Table:          getEnv("LEADS_REST_TABLE", "leads"),
				APIKey:         getEnv("LEADS_REST_API_KEY", ""),
				Token:          getEnv("LEADS_REST_TOKEN", ""),
				Order:          getEnv("LEADS_REST_ORDER", ""),
				PageSize:       intVar("LEADS_REST_PAGE_SIZE", 1000),
				Concurrency:    intVar("LEADS_REST_CONCURRENCY", 4),
				CacheTTL:       durationVar("LEADS_REST_CACHE_TTL", 5*time.Minute),
				RequestTimeout: durationVar("LEADS_REST_TIMEOUT", 30*time.Second),
			},
			Firestore: provider.FirestoreConfig{
				ProjectID:         getEnv("FIRESTORE_PROJECT_ID", ""),
				Collection:        getEnv("FIRESTORE_COLLECTION", "leads"),
				CredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
				CredentialsBase64: getEnv("FIRESTORE_CREDENTIALS_BASE64", ""),
			},
		},
		DataPath:            dataPath,
		CacheDir:            cacheDir,
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS"),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		ChronologicalMonths: getEnvBool("CHRONOLOGICAL_MONTHS", false),
		ExportColumnsFile:   getEnv("EXPORT_COLUMNS_FILE", ""),
		SnapshotMaxAge:      durationVar("SNAPSHOT_MAX_AGE", 0),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs[0])
	}
	return cfg, nil
}

// getEnv treats an empty variable as unset.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
