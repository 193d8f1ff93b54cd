package yandex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"ocrapp/api/internal/ocr"
)

func newTestEngine(t *testing.T, ocrHandler http.HandlerFunc) (*Engine, *atomic.Int32) {
	t.Helper()
	var iamCalls atomic.Int32
	iam := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := iamCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"iamToken": "t" + string(rune('0'+n))})
	}))
	t.Cleanup(iam.Close)
	api := httptest.NewServer(ocrHandler)
	t.Cleanup(api.Close)

	e := New("oauth", "folder")
	e.iamc.url = iam.URL
	e.url = api.URL
	return e, &iamCalls
}

func TestRecognize(t *testing.T) {
	var got request
	e, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-folder-id") != "folder" || r.Header.Get("Authorization") != "Bearer t1" {
			http.Error(w, "bad headers", http.StatusBadRequest)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"result":{"textAnnotation":{"fullText":" Hello\nWorld "}}}`))
	})

	svc := ocr.NewService(e)
	var events []ocr.Progress
	res, err := svc.ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG),
		ocr.DefaultLanguages(),
		func(p ocr.Progress) { events = append(events, p) },
	)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if res.Text != " Hello\nWorld " {
		t.Fatalf("text = %q", res.Text)
	}
	if !reflect.DeepEqual(got.LanguageCodes, []string{"en", "bn"}) || got.MimeType != "JPEG" {
		t.Fatalf("request = %+v", got)
	}
	if len(events) != 2 || events[1].Progress != 1 {
		t.Fatalf("events = %+v", events)
	}
}

func TestRecognizeRefreshesTokenOn401(t *testing.T) {
	var calls atomic.Int32
	e, iamCalls := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"textAnnotation":{"blocks":[{"lines":[{"text":"a"},{"text":" "}]},{"lines":[{"text":"b"}]}]}}}`))
	})
	res, err := ocr.NewService(e).ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG), ocr.LanguageSet{ocr.English}, nil)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if res.Text != "a\nb" {
		t.Fatalf("text = %q", res.Text)
	}
	if iamCalls.Load() != 2 {
		t.Fatalf("iam calls = %d", iamCalls.Load())
	}
}

func TestRecognizeServerError(t *testing.T) {
	e, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})
	_, err := ocr.NewService(e).ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG), ocr.LanguageSet{ocr.English}, nil)
	if ocr.KindOf(err) != ocr.KindRecognition {
		t.Fatalf("expected recognition error, got %v", err)
	}
}

func TestNewWorkerFailsWithoutIAM(t *testing.T) {
	iam := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer iam.Close()
	e := New("oauth", "folder")
	e.iamc.url = iam.URL
	_, err := ocr.NewService(e).ExtractText(context.Background(),
		ocr.NewImage([]byte{0xFF, 0xD8, 0xFF}, ocr.MimeJPEG), ocr.LanguageSet{ocr.English}, nil)
	if ocr.KindOf(err) != ocr.KindEngineInit {
		t.Fatalf("expected engine init error, got %v", err)
	}
}
