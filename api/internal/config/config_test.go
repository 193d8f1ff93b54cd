package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Port != "8000" || cfg.Engine != "tesseract" || cfg.Languages != "eng+ben" || cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HistoryRetention != 30*24*time.Hour {
		t.Fatalf("history retention = %v", cfg.HistoryRetention)
	}
}

func TestLoadFromHistoryRetention(t *testing.T) {
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
	t.Setenv("OCR_HISTORY_RETENTION", "36h")
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.HistoryRetention != 36*time.Hour {
		t.Fatalf("history retention = %v", cfg.HistoryRetention)
	}

	t.Setenv("OCR_HISTORY_RETENTION", "0s")
	if cfg, err = LoadFrom(""); err != nil || cfg.HistoryRetention != 0 {
		t.Fatalf("zero must disable purge: %v %v", cfg, err)
	}
	t.Setenv("OCR_HISTORY_RETENTION", "-1h")
	if _, err := LoadFrom(""); err == nil {
		t.Fatalf("negative retention must fail")
	}
	t.Setenv("OCR_HISTORY_RETENTION", "soon")
	if _, err := LoadFrom(""); err == nil {
		t.Fatalf("garbage retention must fail")
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
	path := filepath.Join(t.TempDir(), "ocr.yaml")
	yaml := "port: \"9090\"\nengine: Gemini\nlanguages: ben\ngemini_model: from-file\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_MODEL", "from-env")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Port != "9090" || cfg.Engine != "gemini" || cfg.Languages != "ben" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.GeminiModel != "from-env" {
		t.Fatalf("env must win over file, got %q", cfg.GeminiModel)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
