package id

import (
	"crypto/rand"
	"fmt"
)

const charset = "0123456789" + "ABCDEFGHIJKLMNOPQRSTUVWXYZ" + "abcdefghijklmnopqrstuvwxyz"

// bytes at or above this value are rejected so every character is equally likely
const maxUnbiased = 256 / len(charset) * len(charset)

// New returns a cryptographically random alphanumeric ID of length idLen.
func New(idLen uint8) (string, error) {
	out := make([]byte, 0, idLen)
	buf := make([]byte, int(idLen)+8)
	for len(out) < int(idLen) {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, charset[int(b)%len(charset)])
			if len(out) == int(idLen) {
				break
			}
		}
	}
	return string(out), nil
}

// WithPrefix returns prefix + "_" + New(idLen).
func WithPrefix(prefix string, idLen uint8) (string, error) {
	s, err := New(idLen)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return s, nil
	}
	return prefix + "_" + s, nil
}

func MustNew(idLen uint8) string {
	s, err := New(idLen)
	if err != nil {
		panic(err)
	}
	return s
}
