// Package ghoutput writes step outputs in the GITHUB_OUTPUT file format.
// Gitea Actions reads the same format.
package ghoutput

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Writer appends outputs to the file at Path. With an empty Path values are only logged.
type Writer struct {
	Path   string
	Logger *slog.Logger

	mu sync.Mutex
}

// New returns a Writer for the given GITHUB_OUTPUT path.
func New(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Path: strings.TrimSpace(path), Logger: logger}
}

var newDelimiter = func() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "ghadelimiter_" + hex.EncodeToString(buf)
}

// Set writes one output.
func (w *Writer) Set(key, value string) error {
	return w.Write(map[string]string{key: value})
}

// Write appends all values in key order. Multi-line values use the heredoc form.
func (w *Writer) Write(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if w.Path == "" {
		for _, key := range keys {
			w.Logger.Info("output", "key", key, "value", values[key])
		}
		return nil
	}

	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, key := range keys {
		if _, err := f.WriteString(format(key, values[key])); err != nil {
			return fmt.Errorf("write output %s: %w", key, err)
		}
	}
	return nil
}

func format(key, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return fmt.Sprintf("%s=%s\n", key, value)
	}
	delim := newDelimiter()
	for strings.Contains(value, delim) {
		delim = newDelimiter()
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delim, value, delim)
}
