package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"go.uber.org/zap"
)

const headContent = "ref: refs/heads/main\n"

// Init creates the storage layout under path: HEAD, objects/ and refs/.
// Running it on an existing repository is not an error; missing pieces are
// created and an existing HEAD is left untouched.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	r := newRepo(abs, buildOptions(opts))

	dirs := []string{
		filepath.Join(r.GitDir, "objects"),
		filepath.Join(r.GitDir, "refs"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(r.GitDir, "HEAD")
	if _, err := os.Stat(headPath); errors.Is(err, fs.ErrNotExist) {
		if err := renameio.WriteFile(headPath, []byte(headContent), 0o644); err != nil {
			return nil, fmt.Errorf("init: write HEAD: %w", err)
		}
		r.logger.Debug("wrote HEAD", zap.String("path", headPath))
	} else if err != nil {
		return nil, fmt.Errorf("init: stat HEAD: %w", err)
	}

	return r, nil
}

// Open searches upward from path for a storage root and opens the
// repository. Returns an error wrapping ErrNotRepository if none is found.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}
	o := buildOptions(opts)

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, o.storageDir, "objects"))
		if err == nil && info.IsDir() {
			return newRepo(cur, o), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any parent up to /)", abs, ErrNotRepository)
		}
		cur = parent
	}
}

// Head reads HEAD. If the content starts with "ref: ", it returns the ref
// path (e.g., "refs/heads/main"). Otherwise it returns the raw content.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	return strings.TrimPrefix(content, "ref: "), nil
}
