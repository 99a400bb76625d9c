package repo

import (
	"errors"
	"path/filepath"

	"github.com/odvcencio/minigit/pkg/object"
	"go.uber.org/zap"
)

// DefaultStorageDir is the name of the hidden storage root inside a working
// directory.
const DefaultStorageDir = ".git"

var (
	// ErrNotRepository is returned by Open when no storage root is found.
	ErrNotRepository = errors.New("not a repository")
	// ErrSourcePathNotFound is returned when a file named for hashing does
	// not exist.
	ErrSourcePathNotFound = errors.New("source path not found")
	// ErrUnsupportedView is returned for an unrecognized tree display mode.
	ErrUnsupportedView = errors.New("unsupported view")
)

// Repo represents an opened repository. All paths are absolute; nothing in
// this package consults the process working directory.
type Repo struct {
	WorkDir string        // working directory root
	GitDir  string        // storage root, e.g. <WorkDir>/.git
	Store   *object.Store // content-addressed object store

	exclude *Excluder
	logger  *zap.Logger
}

type options struct {
	storageDir string
	exclude    []string
	logger     *zap.Logger
}

// Option configures Init and Open.
type Option func(*options)

// WithStorageDir overrides the storage root name (default ".git").
func WithStorageDir(name string) Option {
	return func(o *options) {
		if name != "" {
			o.storageDir = name
		}
	}
}

// WithExclude adds exclusion patterns applied by BuildTree, on top of the
// storage root which is always excluded.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithLogger sets the logger shared by the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{storageDir: DefaultStorageDir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newRepo(workDir string, o *options) *Repo {
	gitDir := filepath.Join(workDir, o.storageDir)
	return &Repo{
		WorkDir: workDir,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir, object.WithLogger(o.logger)),
		exclude: NewExcluder(o.storageDir, o.exclude),
		logger:  o.logger,
	}
}

// AddExclude appends exclusion patterns after the repository is opened,
// e.g. once repository-local configuration has been read.
func (r *Repo) AddExclude(patterns ...string) {
	r.exclude.Add(patterns...)
}

// abs resolves p against the working directory unless it is absolute.
func (r *Repo) abs(p string) string {
	if p == "" {
		return r.WorkDir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.WorkDir, p)
}
