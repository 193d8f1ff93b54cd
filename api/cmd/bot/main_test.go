package main

import (
	"errors"
	"testing"
	"time"
)

func TestRetryDelayFromError(t *testing.T) {
	tests := []struct {
		err  error
		want time.Duration
	}{
		{nil, 0},
		{errors.New("Too Many Requests: retry after 7"), 7 * time.Second},
		{errors.New("too many requests"), 3 * time.Second},
		{errors.New("connection reset"), time.Second},
	}
	for _, tt := range tests {
		if got := retryDelayFromError(tt.err); got != tt.want {
			t.Fatalf("retryDelayFromError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestShortHashIsStable(t *testing.T) {
	a, b := shortHash("123:token"), shortHash("123:token")
	if a != b || len(a) != 16 {
		t.Fatalf("shortHash = %q / %q", a, b)
	}
	if shortHash("other") == a {
		t.Fatalf("different tokens must give different paths")
	}
}
