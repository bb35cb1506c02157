// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	Port              int
	DatabaseURL       string
	DatabaseType      string
	GroupsFile        string
	AdminPassword     string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration
	SecureCookies     bool
}

const (
	defaultPort       = 3318
	defaultSQLitePath = "classvote.db"
	defaultGroupsFile = "groups.yaml"
	defaultSessionTTL = 12 * time.Hour
)

// ParseFlags reads flags, falling back to environment variables and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("classvote", pflag.ContinueOnError)

	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database", "d", "", "Database URL or SQLite file")
	fs.StringVarP(&cfg.DatabaseType, "type", "t", "", "Database type (sqlite or postgres)")
	fs.StringVarP(&cfg.GroupsFile, "groups", "g", "", "Groups file (.yaml or .json)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Session lifetime")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", false, "Mark session cookies Secure")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Admin password (prefer env)")
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = defaultSQLitePath
	}

	if cfg.GroupsFile == "" {
		cfg.GroupsFile = os.Getenv("GROUPS_FILE")
		if cfg.GroupsFile == "" {
			cfg.GroupsFile = defaultGroupsFile
		}
	}

	if cfg.SessionTTL == 0 {
		if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				return Config{}, fmt.Errorf("invalid SESSION_TTL env variable: %w", err)
			}
			cfg.SessionTTL = d
		} else {
			cfg.SessionTTL = defaultSessionTTL
		}
	}

	if !fs.Changed("secure-cookies") {
		if v := os.Getenv("SECURE_COOKIES"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid SECURE_COOKIES env variable")
			}
			cfg.SecureCookies = b
		}
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}

	// Admin password - MUST be provided, plain or as a bcrypt hash
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return Config{}, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH required")
	}

	return cfg, nil
}
