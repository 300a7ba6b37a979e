// Package config loads configuration from an optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/easeaico/gridcare/internal/advisor"
)

// Snapshot backends.
const (
	SnapshotFile      = "file"
	SnapshotPostgres  = "postgres"
	SnapshotFirestore = "firestore"
)

// Config holds runtime settings.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`

	GenerativeProvider string        `yaml:"generative_provider"`
	GenerativeModel    string        `yaml:"generative_model"`
	GenerativeTimeout  time.Duration `yaml:"generative_timeout"`
	GoogleAPIKey       string        `yaml:"google_api_key"`
	OpenAIAPIKey       string        `yaml:"openai_api_key"`
	XAIAPIKey          string        `yaml:"xai_api_key"`
	OpenRouterAPIKey   string        `yaml:"openrouter_api_key"`

	SnapshotBackend     string `yaml:"snapshot_backend"`
	SnapshotPath        string `yaml:"snapshot_path"`
	FirestoreProject    string `yaml:"firestore_project"`
	FirestoreCollection string `yaml:"firestore_collection"`
	FlushEvery          int    `yaml:"flush_every"`

	KafkaBrokers      []string `yaml:"kafka_brokers"`
	InteractionsTopic string   `yaml:"interactions_topic"`
	KafkaGroupID      string   `yaml:"kafka_group_id"`

	AreaIssues []advisor.AreaIssue `yaml:"area_issues"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		LogLevel:            "info",
		GenerativeProvider:  "none",
		GenerativeTimeout:   15 * time.Second,
		SnapshotBackend:     SnapshotFile,
		SnapshotPath:        "knowledge_graph.json",
		FirestoreCollection: "knowledge",
		FlushEvery:          10,
		InteractionsTopic:   "interactions",
		KafkaGroupID:        "gridcare-learning",
	}
}

// Load applies defaults, then the YAML file at path (if path is non-empty),
// then environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.GenerativeProvider = getEnv("GENERATIVE_PROVIDER", cfg.GenerativeProvider)
	cfg.GenerativeModel = getEnv("GENERATIVE_MODEL", cfg.GenerativeModel)
	cfg.GenerativeTimeout = getEnvDuration("GENERATIVE_TIMEOUT", cfg.GenerativeTimeout)
	cfg.GoogleAPIKey = getEnv("GOOGLE_API_KEY", cfg.GoogleAPIKey)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.XAIAPIKey = getEnv("XAI_API_KEY", cfg.XAIAPIKey)
	cfg.OpenRouterAPIKey = getEnv("OPENROUTER_API_KEY", cfg.OpenRouterAPIKey)
	cfg.SnapshotBackend = getEnv("SNAPSHOT_BACKEND", cfg.SnapshotBackend)
	cfg.SnapshotPath = getEnv("SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.FirestoreProject = getEnv("FIRESTORE_PROJECT", cfg.FirestoreProject)
	cfg.FirestoreCollection = getEnv("FIRESTORE_COLLECTION", cfg.FirestoreCollection)
	cfg.FlushEvery = getEnvInt("FLUSH_EVERY", cfg.FlushEvery)
	cfg.InteractionsTopic = getEnv("INTERACTIONS_TOPIC", cfg.InteractionsTopic)
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		cfg.KafkaBrokers = splitList(val)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	var errs []error
	switch c.SnapshotBackend {
	case SnapshotFile:
		if c.SnapshotPath == "" {
			errs = append(errs, errors.New("SNAPSHOT_PATH is required for the file snapshot backend"))
		}
	case SnapshotPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres snapshot backend"))
		}
	case SnapshotFirestore:
		if c.FirestoreProject == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT is required for the firestore snapshot backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown snapshot backend %q", c.SnapshotBackend))
	}
	if c.FlushEvery <= 0 {
		errs = append(errs, fmt.Errorf("FLUSH_EVERY must be positive, got %d", c.FlushEvery))
	}
	if c.GenerativeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATIVE_TIMEOUT must be positive, got %s", c.GenerativeTimeout))
	}
	if c.GenerativeProvider != "none" && c.GenerativeProvider != "" && c.APIKey() == "" {
		errs = append(errs, fmt.Errorf("no API key configured for generative provider %q", c.GenerativeProvider))
	}
	return errors.Join(errs...)
}

// APIKey returns the key for the configured generative provider.
func (c Config) APIKey() string {
	switch c.GenerativeProvider {
	case "gemini":
		return c.GoogleAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "grok":
		return c.XAIAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// KafkaEnabled reports whether interactions flow through Kafka.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.InteractionsTopic != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
