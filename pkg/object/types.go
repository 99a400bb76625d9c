package object

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

const (
	// Tree mode constants in Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// Type returns the object type the entry points at.
func (e TreeEntry) Type() ObjectType {
	if e.IsDir() {
		return TypeTree
	}
	return TypeBlob
}

// TreeObj holds a list of tree entries. Marshalling sorts them by name.
type TreeObj struct {
	Entries []TreeEntry
}

// Signature is an identity plus the moment it acted. Identity is usually
// "Name <email>". Timezone is an optional "+hhmm"/"-hhmm" offset; when empty
// it is left out of the serialized line.
type Signature struct {
	Identity string
	When     int64
	Timezone string
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash // empty for a root commit
	Author    Signature
	Committer Signature
	Signature string // armored signature, stored in the gpgsig header
	Message   string
}
