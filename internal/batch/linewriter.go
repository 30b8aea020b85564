package batch

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// lineLogger logs complete lines written by the tool at debug level.
// A trailing partial line is dropped when the process exits.
type lineLogger struct {
	log    zerolog.Logger
	stream string
	buf    []byte
}

func (lw *lineLogger) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		if line := bytes.TrimRight(lw.buf[:idx], "\r"); len(line) > 0 {
			lw.log.Debug().Str("stream", lw.stream).Msg(string(line))
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
