package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ocrapp/api/internal/ocr"
)

func newTestEngine(t *testing.T, h http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	e := New("sk-test", "gpt-4o-mini")
	e.URL = srv.URL
	return e
}

func TestEngineThroughService(t *testing.T) {
	var gotAuth, gotSystem string
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content any    `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 {
			gotSystem, _ = body.Messages[0].Content.(string)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Hello\nহ্যালো  "}}]}`))
	})

	var events []ocr.Progress
	res, err := ocr.NewService(e).ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG), ocr.DefaultLanguages(),
		func(p ocr.Progress) { events = append(events, p) })
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if res.Text != "  Hello\nহ্যালো  " {
		t.Fatalf("text = %q", res.Text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if !strings.Contains(gotSystem, "English, Bengali") {
		t.Fatalf("system prompt = %q", gotSystem)
	}
	if len(events) != 2 || events[1].Percent() != 100 {
		t.Fatalf("events = %+v", events)
	}
}

func TestRecognizeHTTPError(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, err := ocr.NewService(e).ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG), ocr.DefaultLanguages(), nil)
	if ocr.KindOf(err) != ocr.KindRecognition || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewWorkerRequiresKey(t *testing.T) {
	_, err := ocr.NewService(New("", "m")).ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG), ocr.DefaultLanguages(), nil)
	if ocr.KindOf(err) != ocr.KindEngineInit {
		t.Fatalf("err = %v", err)
	}
}
