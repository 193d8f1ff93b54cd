package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/ocr/ocrtest"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type syncBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.Write(p)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunWritesTextFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.png", pngMagic)
	b := writeFile(t, dir, "b.png", pngMagic)
	out := filepath.Join(dir, "out")

	eng := ocrtest.Default("text")
	eng.TextFunc = func(img ocr.Image) string { return "same text\n" }
	var stderr syncBuffer
	r := &runner{svc: ocr.NewService(eng), langs: ocr.DefaultLanguages(), outDir: out, stdout: &bytes.Buffer{}, stderr: &stderr}

	if err := r.run(context.Background(), []string{a, b}, 2); err != nil {
		t.Fatalf("run() = %v", err)
	}
	for _, name := range []string{"a.txt", "b.txt"} {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil || string(got) != "same text\n" {
			t.Fatalf("%s = %q, %v", name, got, err)
		}
	}
	if !strings.Contains(stderr.String(), "a.png: recognizing text 100%") {
		t.Fatalf("progress not reported: %q", stderr.String())
	}
	if eng.Created() != 2 || eng.Terminated() != 2 {
		t.Fatalf("workers: created=%d terminated=%d", eng.Created(), eng.Terminated())
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.gif", []byte("GIF89a"))
	good := writeFile(t, dir, "good.png", pngMagic)

	var stdout, stderr syncBuffer
	r := &runner{svc: ocr.NewService(ocrtest.Default("ok")), langs: ocr.DefaultLanguages(), stdout: &stdout, stderr: &stderr}

	err := r.run(context.Background(), []string{bad, good}, 1)
	if !errors.Is(err, ocr.ErrValidation) {
		t.Fatalf("run() = %v, want validation error", err)
	}
	if !strings.Contains(stdout.String(), "==> "+good+" <==\nok\n") {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Invalid file type") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
