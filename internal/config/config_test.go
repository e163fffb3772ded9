package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadFallsBackOnBadTTL(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "soon")
	t.Setenv("DEFAULT_BUSINESS_ID", "")

	cfg := Load()
	if cfg.ReportCacheTTLSeconds != 60 {
		t.Fatalf("expected default ttl 60, got %d", cfg.ReportCacheTTLSeconds)
	}
	if cfg.BusinessID != "main-salon" {
		t.Fatalf("expected default business id, got %q", cfg.BusinessID)
	}
}

func TestLoadProfileDefaultsWithoutPath(t *testing.T) {
	profile, err := LoadProfile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.COGSRate != 0.15 || profile.CardFeeRate != 0.029 || profile.CardFeeFixedCents != 30 || profile.StaffHoursPerDay != 8 {
		t.Fatalf("unexpected defaults %+v", profile)
	}
}

func TestLoadProfileOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := "name: Paws on Main\ntimezone: America/Chicago\ncogs_rate: 0.2\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != "Paws on Main" || profile.COGSRate != 0.2 {
		t.Fatalf("expected overrides, got %+v", profile)
	}
	if profile.CardFeeFixedCents != 30 || profile.StaffHoursPerDay != 8 {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", profile)
	}
	loc, err := profile.Location()
	if err != nil || loc.String() != "America/Chicago" {
		t.Fatalf("unexpected location %v (%v)", loc, err)
	}
}

func TestLoadProfileRejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("timezone: Mars/Olympus\n"), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatalf("expected an error for an unknown timezone")
	}
}
