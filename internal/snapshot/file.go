// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// CodeWriteFailed marks a snapshot that could not be persisted.
const CodeWriteFailed = "SNAPSHOT_WRITE_FAILED"

// Retry defaults for file writes.
const (
	DefaultMaxRetries  = 3
	DefaultRetryBackoff = 50 * time.Millisecond
)

// FileWriter writes snapshots as JSON files under
// <dir>/<run-id>/<scenario>_layer_<NNN>.json. Each file is written to a
// temporary name and renamed into place.
type FileWriter struct {
	dir        string
	maxRetries uint64
	backoff    time.Duration
	indent     bool
}

// FileOption configures a FileWriter.
type FileOption func(*FileWriter)

// WithRetries sets how many times a failed write is retried and the base
// of the exponential backoff between attempts.
func WithRetries(maxRetries uint64, base time.Duration) FileOption {
	return func(w *FileWriter) {
		w.maxRetries = maxRetries
		w.backoff = base
	}
}

// WithIndent pretty-prints the written JSON.
func WithIndent(indent bool) FileOption {
	return func(w *FileWriter) {
		w.indent = indent
	}
}

// NewFileWriter creates a writer rooted at dir.
func NewFileWriter(dir string, opts ...FileOption) *FileWriter {
	w := &FileWriter{
		dir:        dir,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultRetryBackoff,
		indent:     true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the root directory.
func (w *FileWriter) Dir() string {
	return w.dir
}

// RunDir returns the directory holding the files of one run.
func (w *FileWriter) RunDir(runID string) string {
	return filepath.Join(w.dir, runID)
}

// Path returns the file a snapshot is written to.
func (w *FileWriter) Path(snap Snapshot) string {
	return filepath.Join(w.RunDir(snap.RunID), FileName(snap.Scenario, snap.Layer))
}

// Write implements Sink.
func (w *FileWriter) Write(ctx context.Context, snap Snapshot) error {
	path := w.Path(snap)

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(snap.Document(), "", "  ")
	} else {
		data, err = json.Marshal(snap.Document())
	}
	if err != nil {
		return oops.Code(CodeWriteFailed).
			With("path", path).
			Wrapf(err, "encode snapshot")
	}

	attempt := 0
	backoff := retry.WithMaxRetries(w.maxRetries, retry.NewExponential(w.backoff))
	err = retry.Do(ctx, backoff, func(_ context.Context) error {
		attempt++
		if err := writeAtomic(path, data); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return err
			}
			slog.Warn("snapshot write failed, retrying",
				"path", path,
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code(CodeWriteFailed).
			With("path", path).
			With("scenario", snap.Scenario).
			With("layer", snap.Layer).
			With("attempts", attempt).
			Wrapf(err, "write snapshot")
	}

	slog.Debug("snapshot written",
		"path", path,
		"worlds", len(snap.Worlds))
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// Removing after a successful rename fails harmlessly.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
