// Package config loads service settings from .env and the environment.
package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MailProviderGraph = "graph"
	MailProviderGmail = "gmail"
	MailProviderNone  = "none"
)

type GraphConfig struct {
	Authority    string // e.g. https://login.microsoftonline.com
	TenantID     string
	ClientID     string
	ClientSecret string
	Mailbox      string // sending mailbox, required with application permissions
	BaseURL      string
}

type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
}

type BoondConfig struct {
	BaseURL     string
	ClientToken string
	ClientKey   string
	UserToken   string
	Since       time.Time
	Interval    time.Duration
}

// Enabled reports whether all BoondManager credentials are present.
func (b BoondConfig) Enabled() bool {
	return b.ClientToken != "" && b.ClientKey != "" && b.UserToken != ""
}

type Config struct {
	Port        string
	DatabaseURL string
	CORSOrigins []string

	// Skill extraction
	TaxonomyPath        string
	FrequencyHintsPath  string
	AnnotationThreshold float64
	ExtractionTimeout   time.Duration

	// Mail
	MailProvider string
	Graph        GraphConfig
	Gmail        GmailConfig
	NotifyTo     []string

	Boond BoondConfig

	GeminiAPIKey string
	GeminiModel  string
}

// Load reads .env when present and builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		CORSOrigins:        splitList(os.Getenv("CORS_ORIGINS")),
		TaxonomyPath:       getEnv("TAXONOMY_PATH", "skill_db_relax_20.json"),
		FrequencyHintsPath: getEnv("FREQUENCY_HINTS_PATH", "token_dist.json"),
		MailProvider:       strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderNone)),
		Graph: GraphConfig{
			Authority:    getEnv("GRAPH_AUTHORITY", "https://login.microsoftonline.com"),
			TenantID:     os.Getenv("GRAPH_TENANT_ID"),
			ClientID:     os.Getenv("GRAPH_CLIENT_ID"),
			ClientSecret: os.Getenv("GRAPH_CLIENT_SECRET"),
			Mailbox:      os.Getenv("GRAPH_MAILBOX"),
			BaseURL:      getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com"),
		},
		Gmail: GmailConfig{
			CredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credential.json"),
			TokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		},
		NotifyTo: splitList(os.Getenv("NOTIFY_TO")),
		Boond: BoondConfig{
			BaseURL:     getEnv("BOOND_BASE_URL", "https://ui.boondmanager.com"),
			ClientToken: os.Getenv("BOOND_CLIENT_TOKEN"),
			ClientKey:   os.Getenv("BOOND_CLIENT_KEY"),
			UserToken:   os.Getenv("BOOND_USER_TOKEN"),
		},
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	var err error
	if cfg.AnnotationThreshold, err = strconv.ParseFloat(getEnv("ANNOTATION_THRESHOLD", "0.5"), 64); err != nil {
		return nil, fmt.Errorf("invalid ANNOTATION_THRESHOLD: %w", err)
	}
	if cfg.ExtractionTimeout, err = time.ParseDuration(getEnv("EXTRACTION_TIMEOUT", "120s")); err != nil {
		return nil, fmt.Errorf("invalid EXTRACTION_TIMEOUT: %w", err)
	}
	if cfg.Boond.Interval, err = time.ParseDuration(getEnv("BOOND_INTERVAL", "15m")); err != nil {
		return nil, fmt.Errorf("invalid BOOND_INTERVAL: %w", err)
	}
	if since := os.Getenv("BOOND_SINCE"); since != "" {
		if cfg.Boond.Since, err = time.Parse(time.RFC3339, since); err != nil {
			return nil, fmt.Errorf("invalid BOOND_SINCE (want RFC3339): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and provider-specific requirements.
func (c *Config) Validate() error {
	if math.IsNaN(c.AnnotationThreshold) || c.AnnotationThreshold < 0 || c.AnnotationThreshold > 1 {
		return fmt.Errorf("config error: ANNOTATION_THRESHOLD must be within [0, 1], got %v", c.AnnotationThreshold)
	}
	if c.ExtractionTimeout <= 0 {
		return fmt.Errorf("config error: EXTRACTION_TIMEOUT must be positive")
	}
	if c.Boond.Interval <= 0 {
		return fmt.Errorf("config error: BOOND_INTERVAL must be positive")
	}

	switch c.MailProvider {
	case MailProviderNone, MailProviderGmail:
	case MailProviderGraph:
		g := c.Graph
		if g.TenantID == "" || g.ClientID == "" || g.ClientSecret == "" || g.Mailbox == "" {
			return fmt.Errorf("config error: MAIL_PROVIDER=graph needs GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET and GRAPH_MAILBOX")
		}
	default:
		return fmt.Errorf("config error: unknown MAIL_PROVIDER %q", c.MailProvider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
