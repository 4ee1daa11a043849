//go:build !windows

package platform

import (
	"fmt"
	"time"

	atotto "github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/clipboard"
	"github.com/elegantclip/elegantclip/internal/types"
)

// Clipboard is the degraded text-only clipboard for non-Windows
// systems. Image and file payloads are not supported here.
type Clipboard struct {
	logger *zap.Logger
}

func NewClipboard(logger *zap.Logger) *Clipboard {
	return &Clipboard{logger: logger}
}

func (c *Clipboard) ReadText() (string, error) {
	text, err := atotto.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return "", clipboard.ErrNoContent
	}
	return text, nil
}

func (c *Clipboard) ReadImage() ([]byte, error) {
	return nil, clipboard.ErrNoContent
}

func (c *Clipboard) WriteText(text string) error {
	if err := atotto.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

func (c *Clipboard) WriteImage([]byte) error { return ErrUnsupported }

func (c *Clipboard) WriteFiles([]string) error { return ErrUnsupported }

func (c *Clipboard) Clear() error {
	return c.WriteText("")
}

func (c *Clipboard) WriteItem(item *types.ClipboardItem) error {
	switch item.ContentType {
	case types.TypeText, types.TypeHTML, types.TypeRTF:
		return c.WriteText(item.PlainText())
	default:
		return ErrUnsupported
	}
}

// pollInterval paces the fallback change listener. There is no portable
// change notification, so the clipboard is sampled.
const pollInterval = 500 * time.Millisecond

// ChangeListener approximates clipboard-change notifications by polling
// the text clipboard.
type ChangeListener struct {
	logger  *zap.Logger
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewChangeListener(logger *zap.Logger) *ChangeListener {
	return &ChangeListener{logger: logger}
}

func (l *ChangeListener) Start(onChange func()) error {
	if l.started {
		return fmt.Errorf("listener already started")
	}
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	l.started = true

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		last, _ := atotto.ReadAll()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				text, err := atotto.ReadAll()
				if err != nil || text == last {
					continue
				}
				last = text
				if text != "" {
					onChange()
				}
			}
		}
	}()
	return nil
}

func (l *ChangeListener) Stop() error {
	if !l.started {
		return nil
	}
	close(l.stop)
	<-l.done
	l.started = false
	return nil
}
