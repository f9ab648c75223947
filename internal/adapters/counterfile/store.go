// Package counterfile keeps scan counters in a local JSON file.
package counterfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

type Store struct {
	Path string
}

var _ ports.CounterStore = (*Store)(nil)

func New(path string) *Store { return &Store{Path: path} }

// Load reads the counters. A missing or malformed file yields zero counters.
func (s *Store) Load(ctx context.Context) (domain.Counts, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Counts{}, nil
	}
	if err != nil {
		return domain.Counts{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		slog.Warn("counter file malformed, starting from zero", "path", s.Path, "err", err)
		return domain.Counts{}, nil
	}
	return domain.Counts{
		Safe:       coerce(fields["safe"]),
		Suspicious: coerce(fields["suspicious"]),
		Malicious:  coerce(fields["malicious"]),
	}, nil
}

// Save replaces the file atomically.
func (s *Store) Save(ctx context.Context, c domain.Counts) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".counts-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// coerce accepts JSON numbers and numeric strings; everything else is zero.
func coerce(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var str string
	if raw[0] == '"' {
		if json.Unmarshal(raw, &str) != nil {
			return 0
		}
		return domain.ParseCount(str)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) != nil {
		return 0
	}
	return domain.ParseCount(n.String())
}
