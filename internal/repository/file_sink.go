package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// fileSink appends records to daily gzip files. Every record becomes its own
// gzip member, so a file is a valid multi-member gzip stream at all times.
type fileSink struct {
	dir    string
	prefix string
	now    func() time.Time
	mu     sync.Mutex
}

// NewFileSink creates a sink under dir, creating the directory if needed
func NewFileSink(dir, prefix string) (EventSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sink directory: %w", err)
	}
	return &fileSink{dir: dir, prefix: prefix, now: time.Now}, nil
}

// PutRecord decodes the base64 record and appends it in one write
func (s *fileSink) PutRecord(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable("put record", err)
	}

	payload, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return "", fmt.Errorf("decode record: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return "", fmt.Errorf("compress record: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", unavailable("open sink file", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", unavailable("write record", err)
	}
	if err := f.Close(); err != nil {
		return "", unavailable("close sink file", err)
	}

	return uuid.New().String(), nil
}

// Ping checks that the sink directory is still writable
func (s *fileSink) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *fileSink) path() string {
	name := fmt.Sprintf("%s-%s.ndjson.gz", s.prefix, s.now().UTC().Format("2006-01-02"))
	return filepath.Join(s.dir, name)
}
