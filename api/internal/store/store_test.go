package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ocrapp/api/internal/ocr"
)

func TestSafeDSNSummary(t *testing.T) {
	tests := map[string]string{
		"postgres://ocr:secret@db:5432/ocr?sslmode=disable": "host=db port=5432 db=ocr user=ocr",
		"postgres://ocr@localhost/app":                      "host=localhost db=app user=ocr",
	}
	for in, want := range tests {
		if got := SafeDSNSummary(in); got != want {
			t.Fatalf("SafeDSNSummary(%q) = %q, want %q", in, got, want)
		}
	}
}

// Интеграционный тест: нужен живой Postgres в TEST_DATABASE_URL.
func TestExtractionRepo(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	repo := NewExtractionRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	hash := "test-" + time.Now().Format("150405.000000000")
	if err := repo.Record(ctx, ocr.Outcome{
		ImageSHA256: hash, MIME: ocr.MimePNG, Size: 10, Languages: "eng+ben",
		Engine: "fake", TextLen: 3, Duration: 1500 * time.Millisecond,
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := repo.Record(ctx, ocr.Outcome{
		ImageSHA256: hash, MIME: ocr.MimePNG, Engine: "fake",
		Kind: ocr.KindRecognition, Error: "OCR Processing failed: boom",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	row, err := repo.FindByHash(ctx, hash)
	if err != nil {
		t.Fatalf("FindByHash() error = %v", err)
	}
	if row.Status != "failed" || row.ErrorKind != string(ocr.KindRecognition) {
		t.Fatalf("latest row = %+v", row)
	}
	if _, err := repo.FindByHash(ctx, hash+"-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByHash(missing) error = %v", err)
	}
	rows, err := repo.Recent(ctx, 10)
	if err != nil || len(rows) == 0 {
		t.Fatalf("Recent() = %v, %v", rows, err)
	}
	if _, err := repo.PurgeOlderThan(ctx, 0); err == nil {
		t.Fatalf("PurgeOlderThan(0) must fail")
	}
	if err := repo.Record(ctx, ocr.Outcome{ImageSHA256: hash + "-old", Engine: "fake", At: time.Now().Add(-72 * time.Hour)}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	n, err := repo.PurgeOlderThan(ctx, 48*time.Hour)
	if err != nil || n < 1 {
		t.Fatalf("PurgeOlderThan() = %d, %v", n, err)
	}
	if _, err := repo.FindByHash(ctx, hash+"-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old row survived purge: %v", err)
	}
	if _, err := repo.FindByHash(ctx, hash); err != nil {
		t.Fatalf("fresh row purged: %v", err)
	}
}
