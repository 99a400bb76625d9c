package repo

import (
	"fmt"
	"io"

	"github.com/odvcencio/minigit/pkg/object"
)

// View selects how a tree listing is rendered.
type View int

const (
	// ViewLong renders "mode type id<TAB>name", like git ls-tree.
	ViewLong View = iota
	// ViewNameOnly renders entry names only.
	ViewNameOnly
)

// NameOnlyFlag is the command-line flag that selects ViewNameOnly.
const NameOnlyFlag = "--name-only"

// ParseView maps a display flag to a View. An empty flag is the long view.
func ParseView(flag string) (View, error) {
	switch flag {
	case "":
		return ViewLong, nil
	case NameOnlyFlag:
		return ViewNameOnly, nil
	default:
		return 0, fmt.Errorf("%s: %w", flag, ErrUnsupportedView)
	}
}

// CatFile returns the type and decoded payload of the object h.
func (r *Repo) CatFile(h object.Hash) (object.ObjectType, []byte, error) {
	objType, data, err := r.Store.Read(h)
	if err != nil {
		return "", nil, fmt.Errorf("cat-file: %w", err)
	}
	return objType, data, nil
}

// ListTree returns the tree's entries rendered in view, in stored order.
func (r *Repo) ListTree(h object.Hash, view View) ([]string, error) {
	if view != ViewLong && view != ViewNameOnly {
		return nil, fmt.Errorf("ls-tree: view %d: %w", view, ErrUnsupportedView)
	}
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("ls-tree: %w", err)
	}
	lines := make([]string, 0, len(tr.Entries))
	for _, e := range tr.Entries {
		lines = append(lines, formatTreeEntry(e, view))
	}
	return lines, nil
}

// FormatTree writes one line per entry.
func FormatTree(w io.Writer, tr *object.TreeObj, view View) error {
	for _, e := range tr.Entries {
		if _, err := fmt.Fprintln(w, formatTreeEntry(e, view)); err != nil {
			return err
		}
	}
	return nil
}

func formatTreeEntry(e object.TreeEntry, view View) string {
	if view == ViewNameOnly {
		return e.Name
	}
	mode := e.Mode
	if e.IsDir() {
		mode = "040000"
	}
	return fmt.Sprintf("%s %s %s\t%s", mode, e.Type(), e.Hash, e.Name)
}
