package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Session is the request/response file pair owned by one Generate call.
// Files are left on disk after the call returns.
type Session struct {
	ID           string
	Dir          string
	RequestPath  string
	ResponsePath string
}

// SessionDir returns the shared directory under base that holds session files.
func SessionDir(base string) string {
	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, sessionSubdir)
}

// newSession mints a fresh id and ensures the shared directory exists.
func newSession(dir string) (Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Session{}, fmt.Errorf("create session dir: %w", err)
	}
	id := uuid.NewString()
	return Session{
		ID:           id,
		Dir:          dir,
		RequestPath:  filepath.Join(dir, "questions-"+id+".jsonl"),
		ResponsePath: filepath.Join(dir, "answers-"+id+".jsonl"),
	}, nil
}
