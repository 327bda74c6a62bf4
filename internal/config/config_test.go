package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.War.StartTime != "11:10" {
		t.Errorf("Expected default war start 11:10, got %s", cfg.War.StartTime)
	}
	if cfg.War.Timezone != "Asia/Baku" {
		t.Errorf("Expected default timezone Asia/Baku, got %s", cfg.War.Timezone)
	}
	if cfg.War.RecentVibeSample != 5 {
		t.Errorf("Expected default vibe sample 5, got %d", cfg.War.RecentVibeSample)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WAR_TIMEZONE", "UTC")
	t.Setenv("DATABASE_NAME", "slaymeter_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port override 9090, got %s", cfg.Server.Port)
	}
	if cfg.War.Timezone != "UTC" {
		t.Errorf("Expected timezone override UTC, got %s", cfg.War.Timezone)
	}
	if cfg.Database.Name != "slaymeter_test" {
		t.Errorf("Expected database name override, got %s", cfg.Database.Name)
	}
}
