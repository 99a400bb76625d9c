package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds one
// zlib-compressed encoded object in Git's loose-object format.
type Store struct {
	root   string
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for write tracing.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the storage root the store was opened on.
func (s *Store) Root() string {
	return s.root
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	h, err := ParseHash(string(h))
	if err != nil {
		return false
	}
	_, err = os.Stat(s.objectPath(h))
	return err == nil
}

// Write encodes, hashes, and stores an object, returning its id.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	raw := EncodeObject(objType, data)
	h := HashBytes(raw)
	if err := s.WriteRaw(h, raw); err != nil {
		return "", err
	}
	return h, nil
}

// WriteRaw persists an already-encoded object under h. Writing the same id
// twice is a no-op. The fan-out directory is created if absent, and the file
// is replaced atomically, so concurrent writers of the same id never observe
// a partial object.
func (s *Store) WriteRaw(h Hash, raw []byte) error {
	h, err := ParseHash(string(h))
	if err != nil {
		return fmt.Errorf("object write: %w", err)
	}

	// Fast path: already exists.
	if s.Has(h) {
		s.logger.Debug("object exists", zap.String("id", string(h)))
		return nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	compressed, err := deflate(raw)
	if err != nil {
		return fmt.Errorf("object write %s: compress: %w", h, err)
	}
	// Loose objects are read-only, as Git leaves them.
	if err := renameio.WriteFile(s.objectPath(h), compressed, 0o444); err != nil {
		return fmt.Errorf("object write %s: %w", h, err)
	}

	s.logger.Debug("object written",
		zap.String("id", string(h)),
		zap.Int("size", len(raw)),
		zap.Int("compressed", len(compressed)),
	)
	return nil
}

// ReadRaw retrieves the encoded bytes ("type len\0content") for h.
func (s *Store) ReadRaw(h Hash) ([]byte, error) {
	h, err := ParseHash(string(h))
	if err != nil {
		return nil, fmt.Errorf("object read: %w: %v", ErrObjectNotFound, err)
	}
	compressed, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	raw, err := inflate(compressed)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorruptObject, err)
	}
	return raw, nil
}

// Read retrieves an object by hash, returning its type and payload.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	raw, err := s.ReadRaw(h)
	if err != nil {
		return "", nil, err
	}
	objType, content, err := DecodeObject(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, content, nil
}

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// ---------------------------------------------------------------------------
// Verification
// ---------------------------------------------------------------------------

// VerifySummary reports the outcome of Verify.
type VerifySummary struct {
	LooseObjects int
}

// Verify re-hashes every stored object and fails on the first whose content
// does not match its id.
func (s *Store) Verify() (*VerifySummary, error) {
	report := &VerifySummary{}
	hashes, err := s.listLooseObjectHashes()
	if err != nil {
		return nil, err
	}
	for _, h := range hashes {
		raw, err := s.ReadRaw(h)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", h, err)
		}
		if _, _, err := DecodeObject(raw); err != nil {
			return nil, fmt.Errorf("verify %s: %w", h, err)
		}
		if actual := HashBytes(raw); actual != h {
			return nil, fmt.Errorf("verify %s: %w: hash mismatch (computed %s)", h, ErrCorruptObject, actual)
		}
		report.LooseObjects++
	}
	return report, nil
}

func (s *Store) listLooseObjectHashes() ([]Hash, error) {
	objectsDir := filepath.Join(s.root, "objects")
	fanouts, err := os.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var out []Hash
	for _, fanout := range fanouts {
		if !fanout.IsDir() || len(fanout.Name()) != 2 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(objectsDir, fanout.Name()))
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", fanout.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			h, err := ParseHash(fanout.Name() + f.Name())
			if err != nil {
				// Temp files and strays are not objects.
				continue
			}
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, want)
	}
	return data, nil
}
