package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// Store backends.
const (
	StoreFirestore = "firestore"
	StoreBolt      = "bolt"
	StoreMemory    = "memory"
)

// Config is everything the serve command needs.
type Config struct {
	Port      string
	CORSHosts []string
	LogLevel  string

	Store               string
	BoltPath            string
	FirebaseProjectID   string
	FirebaseCredentials string

	RecipesURL         string
	GoogleClientID     string
	GoogleClientSecret string
	CalendarID         string
	CalendarTimezone   string

	DependencyTimeout time.Duration
	BreakerThreshold  uint
	BreakerTimeout    time.Duration

	ResendKey string
	MailFrom  string
}

// Flags returns the serve flags. Each one can also be set through its
// environment variable.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Value: "8080", EnvVars: []string{"PORT"}},
		&cli.StringFlag{Name: "cors-hosts", Usage: "Comma separated allowed origins.", EnvVars: []string{"CORS_HOSTS"}},
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		&cli.StringFlag{Name: "store", Value: StoreFirestore, Usage: "Document store: firestore, bolt or memory.", EnvVars: []string{"STORE"}},
		&cli.StringFlag{Name: "bolt-path", Value: "planner.db", EnvVars: []string{"BOLT_PATH"}},
		&cli.StringFlag{Name: "firebase-project-id", EnvVars: []string{"FIREBASE_PROJECT_ID"}},
		&cli.StringFlag{Name: "firebase-credentials-json", EnvVars: []string{"FIREBASE_CREDENTIALS_JSON"}},
		&cli.StringFlag{Name: "recipes-url", Usage: "Base URL of the recipe service.", EnvVars: []string{"RECIPES_URL"}},
		&cli.StringFlag{Name: "google-client-id", EnvVars: []string{"GOOGLE_CLIENT_ID"}},
		&cli.StringFlag{Name: "google-client-secret", EnvVars: []string{"GOOGLE_CLIENT_SECRET"}},
		&cli.StringFlag{Name: "calendar-id", Value: "primary", EnvVars: []string{"CALENDAR_ID"}},
		&cli.StringFlag{Name: "calendar-timezone", Value: "Europe/Madrid", EnvVars: []string{"CALENDAR_TIMEZONE"}},
		&cli.DurationFlag{Name: "dependency-timeout", Value: 10 * time.Second, EnvVars: []string{"DEPENDENCY_TIMEOUT"}},
		&cli.UintFlag{Name: "breaker-threshold", Value: 3, Usage: "Consecutive failures that open a breaker.", EnvVars: []string{"BREAKER_THRESHOLD"}},
		&cli.DurationFlag{Name: "breaker-timeout", Value: 10 * time.Second, Usage: "How long an open breaker fails fast.", EnvVars: []string{"BREAKER_TIMEOUT"}},
		&cli.StringFlag{Name: "resend-key", Usage: "Enables sync confirmation mails.", EnvVars: []string{"RESEND_KEY"}},
		&cli.StringFlag{Name: "mail-from", EnvVars: []string{"MAIL_FROM"}},
	}
}

// FromContext reads the flags declared by Flags.
func FromContext(c *cli.Context) (Config, error) {
	cfg := Config{
		Port:                c.String("port"),
		CORSHosts:           splitHosts(c.String("cors-hosts")),
		LogLevel:            c.String("log-level"),
		Store:               c.String("store"),
		BoltPath:            c.String("bolt-path"),
		FirebaseProjectID:   c.String("firebase-project-id"),
		FirebaseCredentials: c.String("firebase-credentials-json"),
		RecipesURL:          strings.TrimRight(c.String("recipes-url"), "/"),
		GoogleClientID:      c.String("google-client-id"),
		GoogleClientSecret:  c.String("google-client-secret"),
		CalendarID:          c.String("calendar-id"),
		CalendarTimezone:    c.String("calendar-timezone"),
		DependencyTimeout:   c.Duration("dependency-timeout"),
		BreakerThreshold:    c.Uint("breaker-threshold"),
		BreakerTimeout:      c.Duration("breaker-timeout"),
		ResendKey:           c.String("resend-key"),
		MailFrom:            c.String("mail-from"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreFirestore, StoreBolt, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.RecipesURL == "" {
		return fmt.Errorf("recipes-url is required")
	}
	if c.BreakerThreshold == 0 {
		return fmt.Errorf("breaker-threshold must be positive")
	}
	if _, err := time.LoadLocation(c.CalendarTimezone); err != nil {
		return fmt.Errorf("calendar-timezone: %w", err)
	}
	return nil
}

func splitHosts(hosts string) []string {
	var out []string
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
