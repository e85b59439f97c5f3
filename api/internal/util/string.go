package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FormatInts renders numbers as a bracketed list: [2, 3].
func FormatInts(ns []int) string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(JoinInts(ns, ", "))
	b.WriteByte(']')
	return b.String()
}

func JoinInts(ns []int, sep string) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}

func TruncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

func SHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
