package common

import (
	"context"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

// IsValidURL returns true if input is an absolute url with a scheme and a host.
func IsValidURL(input string) bool {
	u, err := url.ParseRequestURI(input)

	return err == nil && u.Scheme != "" && u.Host != ""
}

func DecodeHex(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}

	return hex.DecodeString(s)
}

func IsContextDoneErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// SafeSubtract returns a - b or def if the subtraction would underflow.
func SafeSubtract(a, b, def uint64) uint64 {
	if a >= b {
		return a - b
	}

	return def
}

// SplitToChunks splits items into consecutive chunks of at most size elements.
func SplitToChunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}

	chunks := make([][]T, 0, (len(items)+max(size, 1)-1)/max(size, 1))

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}

	return chunks
}
