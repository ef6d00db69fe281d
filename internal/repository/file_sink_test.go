package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_PutRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "records")
	sink, err := NewFileSink(dir, "sendgrid")
	require.NoError(t, err)
	fs := sink.(*fileSink)
	fs.now = func() time.Time { return time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC) }

	records := []string{
		"{\"event\":\"open\"}\n",
		"{\"event\":\"click\"}\n{\"event\":\"bounce\"}\n",
	}
	for _, r := range records {
		id, err := sink.PutRecord(context.Background(), []byte(base64.StdEncoding.EncodeToString([]byte(r))))
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "sendgrid-2024-03-09.ndjson.gz"))
	require.NoError(t, err)

	// the multi-member stream reads back as the concatenation of all records
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, records[0]+records[1], string(decoded))

	require.NoError(t, fs.Ping(context.Background()))
}

func TestFileSink_RejectsNonBase64(t *testing.T) {
	sink, err := NewFileSink(t.TempDir(), "sendgrid")
	require.NoError(t, err)

	_, err = sink.PutRecord(context.Background(), []byte("not base64!"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestFileSink_CancelledContext(t *testing.T) {
	sink, err := NewFileSink(t.TempDir(), "sendgrid")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sink.PutRecord(ctx, []byte("eA=="))
	assert.ErrorIs(t, err, ErrUnavailable)
}
