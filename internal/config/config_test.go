package config

import (
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
token: "123:abc"
main_admins: [1001]
`

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Token != "123:abc" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if len(cfg.MainAdmins) != 1 || cfg.MainAdmins[0] != 1001 {
		t.Errorf("MainAdmins = %v", cfg.MainAdmins)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"driver", cfg.DB.Driver, "sqlite"},
		{"path", cfg.DB.Path, "linkshelf.db"},
		{"title page size", cfg.TitlePageSize, 20},
		{"episode page size", cfg.EpisodePageSize, 30},
		{"auto delete", cfg.AutoDeleteDelay(), 300 * time.Second},
		{"session timeout stays disabled", cfg.SessionTimeoutSeconds, 0},
		{"utc offset", cfg.UTCOffset(), 7 * time.Hour},
		{"donate image", cfg.DonateImage, "donate_qr.png"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestParse_ExplicitZerosHonored(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + "\nauto_delete_seconds: 0\nutc_offset_hours: 0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.AutoDeleteDelay(); got != 0 {
		t.Errorf("AutoDeleteDelay() = %v, want 0 (disabled)", got)
	}
	if got := cfg.UTCOffset(); got != 0 {
		t.Errorf("UTCOffset() = %v, want 0 (UTC)", got)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + "\ndb:\n  driver: mysql\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DB.Host != "127.0.0.1" || cfg.DB.Port != 3306 || cfg.DB.Database != "linkshelf" {
		t.Errorf("mysql defaults = %+v", cfg.DB)
	}
}

func TestParse_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := Parse([]byte("main_admins: [1]\n"))
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !strings.Contains(err.Error(), "token is required") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_MissingMainAdmins(t *testing.T) {
	t.Setenv("MAIN_ADMIN_IDS", "")
	_, err := Parse([]byte("token: x\n"))
	if err == nil {
		t.Fatal("expected error for missing main admins")
	}
	if !strings.Contains(err.Error(), "main admin") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_UnknownDriver(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "\ndb:\n  driver: postgres\n"))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("MAIN_ADMIN_IDS", "5, 6,junk,7")

	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.DB.Path != "/tmp/env.db" {
		t.Errorf("DB.Path = %q", cfg.DB.Path)
	}
	want := []int64{5, 6, 7}
	if len(cfg.MainAdmins) != len(want) {
		t.Fatalf("MainAdmins = %v, want %v", cfg.MainAdmins, want)
	}
	for i := range want {
		if cfg.MainAdmins[i] != want[i] {
			t.Errorf("MainAdmins[%d] = %d, want %d", i, cfg.MainAdmins[i], want[i])
		}
	}
}

func TestIsMainAdmin(t *testing.T) {
	cfg := &Config{MainAdmins: []int64{10, 20}}
	if !cfg.IsMainAdmin(10) {
		t.Error("10 should be a main admin")
	}
	if cfg.IsMainAdmin(30) {
		t.Error("30 should not be a main admin")
	}
}
