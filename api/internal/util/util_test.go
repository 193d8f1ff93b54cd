package util

import (
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"
)

var (
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0}
	pngHead  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	webpHead = []byte("RIFF\x10\x00\x00\x00WEBPVP8 ")
)

func TestSniffImageMIME(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{jpegHead, "image/jpeg"},
		{pngHead, "image/png"},
		{webpHead, "image/webp"},
		{[]byte("GIF89a......"), "image/gif"},
		{[]byte("hello world"), "text/plain"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := SniffImageMIME(tt.in); got != tt.want {
			t.Fatalf("SniffImageMIME(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSniffMimeForOCR(t *testing.T) {
	if SniffMimeForOCR(jpegHead) != "JPEG" || SniffMimeForOCR(pngHead) != "PNG" || SniffMimeForOCR(webpHead) != "" {
		t.Fatalf("unexpected OCR mime mapping")
	}
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(pngHead)

	b, mime, err := DecodeBase64MaybeDataURL("data:image/png;base64," + payload)
	if err != nil || mime != "image/png" || string(b) != string(pngHead) {
		t.Fatalf("data url: %v %q %v", b, mime, err)
	}
	b, mime, err = DecodeBase64MaybeDataURL("  " + payload + "\n")
	if err != nil || mime != "" || string(b) != string(pngHead) {
		t.Fatalf("plain: %v %q %v", b, mime, err)
	}
	if _, _, err := DecodeBase64MaybeDataURL("%%%"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPickMIME(t *testing.T) {
	if got := PickMIME("image/webp", "image/png", jpegHead); got != "image/webp" {
		t.Fatalf("explicit: %q", got)
	}
	if got := PickMIME("", "image/png", jpegHead); got != "image/png" {
		t.Fatalf("hint: %q", got)
	}
	if got := PickMIME(" ", "", jpegHead); got != "image/jpeg" {
		t.Fatalf("sniffed: %q", got)
	}
}

func TestWebPToPNGRejectsGarbage(t *testing.T) {
	if _, err := WebPToPNG(webpHead); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTruncate(t *testing.T) {
	if Truncate("abc", 5) != "abc" {
		t.Fatalf("short string changed")
	}
	s := strings.Repeat("বাংলা", 10)
	got := Truncate(s, 10)
	if !utf8.ValidString(got) || !strings.HasSuffix(got, "…") {
		t.Fatalf("Truncate broke utf-8: %q", got)
	}
	if len(got) > 10+len("…") {
		t.Fatalf("too long: %d", len(got))
	}
}

func TestSHA256Hex(t *testing.T) {
	if got := SHA256Hex([]byte("abc")); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("SHA256Hex = %s", got)
	}
}
