// Package codeinput turns the two ways a merchant enters a redemption code,
// camera scan and typing, into the same trimmed string.
package codeinput

import (
	"errors"
	"strings"
	"sync"
)

var ErrEmptyCode = errors.New("codeinput: empty code")

// Manual normalises a typed code. Empty input is rejected before any call is made.
func Manual(text string) (string, error) {
	code := strings.TrimSpace(text)
	if code == "" {
		return "", ErrEmptyCode
	}
	return code, nil
}

// ScanLock admits the first non-empty scanned payload and ignores every
// following one until Reset is called. A QR code left in front of the camera
// therefore produces a single submission.
type ScanLock struct {
	mu     sync.Mutex
	locked bool
}

// Accept returns the trimmed payload and true when it took the lock.
func (l *ScanLock) Accept(payload string) (string, bool) {
	code := strings.TrimSpace(payload)
	if code == "" {
		return "", false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked {
		return "", false
	}
	l.locked = true
	return code, true
}

func (l *ScanLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

func (l *ScanLock) Reset() {
	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
}
