package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/minigit/pkg/object"
	"go.uber.org/zap"
)

// HashFile computes the blob id of the file at path, resolved against the
// working directory when relative. When write is set the blob is also
// persisted. A missing file yields an error wrapping ErrSourcePathNotFound.
func (r *Repo) HashFile(path string, write bool) (object.Hash, error) {
	full := r.abs(path)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("hash %s: %w", path, ErrSourcePathNotFound)
		}
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("hash %s: not a regular file", path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	if !write {
		return object.HashObject(object.TypeBlob, data), nil
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return h, nil
}

// WriteTree snapshots the whole working directory.
func (r *Repo) WriteTree() (object.Hash, error) {
	return r.BuildTree(r.WorkDir)
}

// BuildTree walks dir recursively, storing every regular file as a blob and
// every subdirectory as a tree, and returns the id of the root tree.
//
// Only directories and regular files are represented. Symbolic links,
// devices, sockets and named pipes are skipped (with a warning); they never
// reach the object store. Executable bits are not recorded: every file is
// stored with mode 100644. Entries are ordered by plain byte comparison of
// their names, which differs from Git when a directory name is a prefix of
// a sibling (see object.MarshalTree).
func (r *Repo) BuildTree(dir string) (object.Hash, error) {
	return r.buildTreeDir(r.abs(dir), "")
}

// buildTreeDir builds a TreeObj for the directory at full, whose path
// relative to the walk root is rel, and writes it to the store.
func (r *Repo) buildTreeDir(full, rel string) (object.Hash, error) {
	dirents, err := os.ReadDir(full)
	if err != nil {
		return "", fmt.Errorf("build tree %q: %w", displayRel(rel), err)
	}

	entries := make([]object.TreeEntry, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		childFull := filepath.Join(full, name)
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if childFull == r.GitDir || r.exclude.Excluded(childRel, de.IsDir()) {
			r.logger.Debug("excluded", zap.String("path", childRel))
			continue
		}

		switch mode := de.Type(); {
		case mode.IsDir():
			subHash, err := r.buildTreeDir(childFull, childRel)
			if err != nil {
				return "", err
			}
			entries = append(entries, object.TreeEntry{
				Mode: object.TreeModeDir,
				Name: name,
				Hash: subHash,
			})
		case mode.IsRegular():
			data, err := os.ReadFile(childFull)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childRel, err)
			}
			blobHash, err := r.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childRel, err)
			}
			entries = append(entries, object.TreeEntry{
				Mode: object.TreeModeFile,
				Name: name,
				Hash: blobHash,
			})
		default:
			r.logger.Warn("skipping unsupported file type",
				zap.String("path", childRel),
				zap.String("mode", mode.String()),
			)
		}
	}

	object.SortTreeEntries(entries)
	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree %q: %w", displayRel(rel), err)
	}
	return h, nil
}

func displayRel(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
