package util

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// Truncate обрезает строку до max байт, не разрывая UTF-8 (в бенгальском 3 байта на символ).
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
