package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/lbin817/MSE/models"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port        string
	DatabaseURL string
	FrontendURL string

	AdminUsername     string
	AdminPassword     string // plaintext fallback, compared in constant time
	AdminPasswordHash string // bcrypt hash, takes precedence when set
	JWTSecret         string

	UploadDir  string
	AllowedIPs []netip.Prefix
}

// Load reads the environment. Defaults mirror the course deployment: port
// 8000, all IPs allowed, uploads next to the binary.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              envOr("PORT", "8000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		FrontendURL:       envOr("FRONTEND_URL", "http://localhost:3000"),
		AdminUsername:     envOr("ADMIN_USERNAME", "MSE3105"),
		AdminPassword:     envOr("ADMIN_PASSWORD", "KHU"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         envOr("JWT_SECRET", "change-this-in-production"),
		UploadDir:         envOr("UPLOAD_DIR", "uploads"),
	}

	prefixes, err := parseAllowedIPs(os.Getenv("ALLOWED_IPS"))
	if err != nil {
		return nil, err
	}
	cfg.AllowedIPs = prefixes

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseAllowedIPs reads a comma-separated CIDR list. Empty means allow all.
func parseAllowedIPs(raw string) ([]netip.Prefix, error) {
	if strings.TrimSpace(raw) == "" {
		return []netip.Prefix{
			netip.MustParsePrefix("0.0.0.0/0"),
			netip.MustParsePrefix("::/0"),
		}, nil
	}
	var prefixes []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOWED_IPS entry %q: %w", part, err)
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}

// DefaultTeams is the fixed course roster seeded on first start. Budgets
// are in won; current and original start equal.
func DefaultTeams() []*models.Team {
	specs := []struct {
		name       string
		department int64
		student    int64
	}{
		{"월요일 1조", 600000, 500000},
		{"월요일 2조", 700000, 500000},
		{"월요일 3조", 600000, 500000},
		{"월요일 4조", 700000, 500000},
		{"화요일 1조", 600000, 500000},
		{"화요일 2조", 700000, 500000},
		{"화요일 3조", 600000, 500000},
		{"화요일 4조", 700000, 500000},
		{"화요일 5조", 600000, 500000},
		{"화요일 6조", 700000, 500000},
		{"화요일 7조", 600000, 500000},
	}

	teams := make([]*models.Team, 0, len(specs))
	for _, s := range specs {
		teams = append(teams, &models.Team{
			Name:                     s.name,
			DepartmentBudget:         s.department,
			StudentBudget:            s.student,
			OriginalDepartmentBudget: s.department,
			OriginalStudentBudget:    s.student,
		})
	}
	return teams
}
