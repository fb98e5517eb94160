package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected log level info, got %q", cfg.Log.Level)
	}
	if len(cfg.Questionnaire.Skip) != 4 || cfg.Questionnaire.Skip[0] != "q_21" {
		t.Errorf("Expected default skipped questions, got %v", cfg.Questionnaire.Skip)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_FileAndEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `server:
  port: "9000"
redis:
  addr: localhost:6379
  ttl: 5m
schemes:
  file: data/schemes.yaml
questionnaire:
  skip: [q_22]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SCHEMES_REDIS_ADDR", "redis:6379")
	t.Setenv("SCHEMES_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port from file, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Expected env override for redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected env override for log level, got %q", cfg.Log.Level)
	}
	if cfg.Schemes.File != "data/schemes.yaml" {
		t.Errorf("Expected schemes file, got %q", cfg.Schemes.File)
	}
	if len(cfg.Questionnaire.Skip) != 1 || cfg.Questionnaire.Skip[0] != "q_22" {
		t.Errorf("Expected skip list from file, got %v", cfg.Questionnaire.Skip)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 5*time.Minute {
		t.Errorf("Expected 5m ttl, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Load("")
	cfg.Log.Level = "loud"
	var verr ValidationError
	if err := cfg.Validate(); !errors.As(err, &verr) || verr.Field != "log.level" {
		t.Fatalf("expected log.level validation error, got %v", err)
	}

	cfg, _ = Load("")
	cfg.Schemes.TTL = "soon"
	if err := cfg.Validate(); !errors.As(err, &verr) || verr.Field != "schemes.ttl" {
		t.Fatalf("expected schemes.ttl validation error, got %v", err)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("nope", time.Second); got != time.Second {
		t.Fatalf("expected fallback for invalid input, got %v", got)
	}
}
