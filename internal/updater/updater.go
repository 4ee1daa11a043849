// Package updater downloads installer images in the background and
// streams progress to the UI. Installing is the shell's job; the daemon
// only fetches the file.
package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/events"
	"github.com/elegantclip/elegantclip/internal/types"
)

// progressInterval spaces progress events so a fast download does not
// flood subscribers; roughly ten per second.
const progressInterval = 100 * time.Millisecond

// Updater fetches update installers.
type Updater struct {
	client  *http.Client
	emitter events.Emitter
	logger  *zap.Logger
}

// New creates an Updater emitting progress on emitter.
func New(emitter events.Emitter, logger *zap.Logger) *Updater {
	return &Updater{
		client:  &http.Client{Timeout: 30 * time.Minute},
		emitter: emitter,
		logger:  logger,
	}
}

// Download fetches url into destPath, emitting update-download-progress
// events while the body streams. The file is written to a temporary
// sibling and renamed into place only on success.
func (u *Updater) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update server returned %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	tmpPath := destPath + ".partial"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}

	total := resp.ContentLength
	written, err := u.copyWithProgress(out, resp.Body, total)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write update file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize update file: %w", err)
	}

	u.emitProgress(written, total)
	u.logger.Info("update downloaded",
		zap.String("path", destPath),
		zap.Int64("bytes", written))
	return nil
}

func (u *Updater) copyWithProgress(dst io.Writer, src io.Reader, total int64) (int64, error) {
	var written int64
	lastEmit := time.Now()
	buf := make([]byte, 64*1024)

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if time.Since(lastEmit) >= progressInterval {
				u.emitProgress(written, total)
				lastEmit = time.Now()
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func (u *Updater) emitProgress(downloaded, total int64) {
	p := types.UpdateProgress{Downloaded: downloaded, Total: total}
	if total > 0 {
		p.Percent = float64(downloaded) / float64(total) * 100
	}
	u.emitter.Emit(types.EventUpdateProgress, p)
}
