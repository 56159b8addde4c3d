package gateway

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
)

// DownloadBackup streams the Gateway's JSON data export into a gzip
// compressed file at dst. The stream is validated as JSON on the way
// through, so a truncated or garbled export fails loudly instead of leaving
// a silently broken backup on disk. Returns the number of uncompressed
// bytes exported.
func (c *Client) DownloadBackup(ctx context.Context, dst string) (int64, error) {
	body, err := c.stream(ctx, http.MethodGet, "/auth/backup/", nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return 0, errors.Wrap(err, "create backup dir")
	}

	tmp := dst + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, errors.Wrap(err, "create backup file")
	}
	defer func() { _ = os.Remove(tmp) }()

	gz := pgzip.NewWriter(f)
	counter := &countingWriter{w: gz}

	// The decoder pulls from the response through the tee, so every byte
	// is compressed exactly once and validated at the same time.
	dec := jx.Decode(io.TeeReader(body, counter), 1<<16)
	if err := dec.Skip(); err != nil {
		_ = gz.Close()
		_ = f.Close()
		return 0, errors.Wrap(err, "backup stream is not valid JSON")
	}

	if err := gz.Close(); err != nil {
		_ = f.Close()
		return 0, errors.Wrap(err, "flush backup")
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "close backup file")
	}
	if err := os.Rename(tmp, dst); err != nil {
		return 0, errors.Wrap(err, "finalize backup file")
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
