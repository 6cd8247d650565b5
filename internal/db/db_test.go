package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/meanun/linkshelf/internal/config"
	"github.com/meanun/linkshelf/internal/models"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DBConfig
		want string
	}{
		{
			name: "default root no password",
			cfg:  config.DBConfig{Host: "127.0.0.1", Port: 3306, Database: "linkshelf"},
			want: "root@tcp(127.0.0.1:3306)/linkshelf?parseTime=true",
		},
		{
			name: "user and password",
			cfg:  config.DBConfig{Host: "db.internal", Port: 3307, User: "bot", Password: "pw", Database: "catalog"},
			want: "bot:pw@tcp(db.internal:3307)/catalog?parseTime=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.cfg); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(config.DBConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("error = %v", err)
	}
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Connect(config.DBConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// Round-trip one row through each core table.
	title := models.Title{Name: "Show X", CreatedBy: 1}
	if err := db.Create(&title).Error; err != nil {
		t.Fatalf("create title: %v", err)
	}
	ep := models.Episode{TitleID: title.ID, Name: "Ep1", URL: "http://a.co/1", CreatedBy: 1}
	if err := db.Create(&ep).Error; err != nil {
		t.Fatalf("create episode: %v", err)
	}

	var got models.Episode
	if err := db.First(&got, ep.ID).Error; err != nil {
		t.Fatalf("read episode: %v", err)
	}
	if got.TitleID != title.ID || got.Name != "Ep1" {
		t.Errorf("episode = %+v", got)
	}
}

func TestAllModels_Count(t *testing.T) {
	if got := len(AllModels()); got != 6 {
		t.Errorf("AllModels() returned %d models, want 6", got)
	}
}
