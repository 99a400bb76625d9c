package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

func encodeHeader(objType ObjectType, n int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, n))
}

// EncodeObject frames payload as "type len\0payload". The result is the unit
// that is hashed and stored.
func EncodeObject(objType ObjectType, payload []byte) []byte {
	header := encodeHeader(objType, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// DecodeObject splits an encoded object into its type and payload. The
// declared length must match the payload exactly.
func DecodeObject(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: no header terminator", ErrCorruptObject)
	}
	header := string(raw[:nulIdx])
	payload := raw[nulIdx+1:]

	typ, size, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrCorruptObject, header)
	}
	objType := ObjectType(typ)
	if !objType.Valid() {
		return "", nil, fmt.Errorf("%w: unknown type %q", ErrCorruptObject, typ)
	}
	length, err := strconv.Atoi(size)
	if err != nil || length < 0 {
		return "", nil, fmt.Errorf("%w: invalid length %q", ErrCorruptObject, size)
	}
	if len(payload) != length {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrCorruptObject, length, len(payload))
	}
	return objType, payload, nil
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// SortTreeEntries orders entries by name using byte-wise comparison.
func SortTreeEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare([]byte(entries[i].Name), []byte(entries[j].Name)) < 0
	})
}

// MarshalTree serializes a TreeObj in Git's binary tree format. Entries are
// sorted by name first, so insertion order never affects the result. Each
// entry is:
//
//	mode SP name NUL <20 raw digest bytes>
//
// Names are compared as plain bytes. Git instead compares a directory as
// "name/", so a tree holding both a directory "a" and a file "a.txt" is
// ordered differently here and git fsck reports it as treeNotSorted.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	SortTreeEntries(sorted)

	var buf bytes.Buffer
	for i, e := range sorted {
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: duplicate entry %q", e.Name)
		}
		if e.Name == "" || strings.ContainsAny(e.Name, "/\x00") {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		if _, err := parseTreeMode(e.Mode); err != nil {
			return nil, fmt.Errorf("marshal tree: %q: %w", e.Name, err)
		}
		h, err := ParseHash(string(e.Hash))
		if err != nil {
			return nil, fmt.Errorf("marshal tree: %q: %w", e.Name, err)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(h.Raw())
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree payload. Entries are consumed sequentially: the
// digest after each name is a fixed HashSize bytes of binary, so it is sliced
// by width and never searched for delimiters.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		sp := bytes.IndexByte(data, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: tree entry missing mode separator", ErrCorruptObject)
		}
		mode, err := parseTreeMode(string(data[:sp]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
		}
		data = data[sp+1:]

		nul := bytes.IndexByte(data, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: tree entry missing name terminator", ErrCorruptObject)
		}
		name := string(data[:nul])
		data = data[nul+1:]

		if len(data) < HashSize {
			return nil, fmt.Errorf("%w: tree entry %q truncated digest", ErrCorruptObject, name)
		}
		h, _ := HashFromRaw(data[:HashSize])
		data = data[HashSize:]

		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	}
	return tr, nil
}

func parseTreeMode(mode string) (string, error) {
	switch mode {
	case TreeModeDir, TreeModeFile, TreeModeExecutable:
		return mode, nil
	// Git writes directories as "40000" but some tools zero-pad.
	case "040000":
		return TreeModeDir, nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H      (optional)
//	author I T [Z]
//	committer I T [Z]
//	gpgsig S      (optional, continuation lines indented by one space)
//
//	message
//
// The message is written verbatim; callers that want the conventional
// trailing newline add it before marshalling.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	fmt.Fprintf(&buf, "author %s\n", formatSignature(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatSignature(c.Committer))
	if sig := strings.TrimRight(c.Signature, "\n"); sig != "" {
		buf.WriteString("gpgsig ")
		buf.WriteString(strings.ReplaceAll(sig, "\n", "\n "))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature header itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}

// ValidateSignature checks that s can be written into a commit header and
// parsed back unchanged.
func ValidateSignature(s Signature) error {
	if strings.TrimSpace(s.Identity) == "" {
		return fmt.Errorf("signature: empty identity")
	}
	if strings.ContainsAny(s.Identity, "\n\x00") {
		return fmt.Errorf("signature: identity %q contains a newline or NUL", s.Identity)
	}
	if s.Timezone != "" && !ValidTimezone(s.Timezone) {
		return fmt.Errorf("signature: timezone %q is not +hhmm or -hhmm", s.Timezone)
	}
	return nil
}

func formatSignature(s Signature) string {
	line := s.Identity + " " + strconv.FormatInt(s.When, 10)
	if s.Timezone != "" {
		line += " " + s.Timezone
	}
	return line
}

func parseSignature(val string) (Signature, error) {
	fields := strings.Split(val, " ")
	var sig Signature
	// A trailing "-hhmm" is a timezone only when a timestamp precedes it;
	// otherwise it is a negative timestamp.
	if n := len(fields); n >= 3 && ValidTimezone(fields[n-1]) {
		if _, err := strconv.ParseInt(fields[n-2], 10, 64); err == nil {
			sig.Timezone = fields[n-1]
			fields = fields[:n-1]
		}
	}
	n := len(fields)
	if n < 2 {
		return Signature{}, fmt.Errorf("malformed signature %q", val)
	}
	when, err := strconv.ParseInt(fields[n-1], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("bad timestamp in %q: %w", val, err)
	}
	sig.When = when
	sig.Identity = strings.Join(fields[:n-1], " ")
	return sig, nil
}

// ValidTimezone reports whether s is a "+hhmm" or "-hhmm" offset.
func ValidTimezone(s string) bool {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: commit missing header/message separator", ErrCorruptObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	var sigLines []string
	lastKey := ""
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, " ") {
			if lastKey != "gpgsig" {
				return nil, fmt.Errorf("%w: unexpected continuation line %q", ErrCorruptObject, line)
			}
			sigLines = append(sigLines, line[1:])
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed commit header line %q", ErrCorruptObject, line)
		}
		lastKey = key
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			if c.Parent != "" {
				return nil, fmt.Errorf("%w: multiple parents are not supported", ErrCorruptObject)
			}
			c.Parent = Hash(val)
		case "author", "committer":
			sig, err := parseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrCorruptObject, key, err)
			}
			if key == "author" {
				c.Author = sig
			} else {
				c.Committer = sig
			}
		case "gpgsig":
			sigLines = append(sigLines, val)
		default:
			return nil, fmt.Errorf("%w: unknown commit header key %q", ErrCorruptObject, key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("%w: commit has no tree", ErrCorruptObject)
	}
	if len(sigLines) > 0 {
		c.Signature = strings.Join(sigLines, "\n") + "\n"
	}
	return c, nil
}
