package object

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/src-d/go-git.v4/plumbing"
)

func TestMarshalUnmarshalBlob(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	data := MarshalBlob(orig)
	got, err := UnmarshalBlob(data)
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Blob round-trip mismatch: got %q, want %q", got.Data, orig.Data)
	}
}

func TestEncodeObjectHeader(t *testing.T) {
	got := EncodeObject(TypeBlob, []byte("hello\n"))
	if want := []byte("blob 6\x00hello\n"); !bytes.Equal(got, want) {
		t.Errorf("EncodeObject = %q, want %q", got, want)
	}
}

func TestDecodeObject(t *testing.T) {
	objType, payload, err := DecodeObject([]byte("commit 3\x00a\x00b"))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if objType != TypeCommit {
		t.Errorf("type = %q, want commit", objType)
	}
	if string(payload) != "a\x00b" {
		t.Errorf("payload = %q", payload)
	}
}

func TestDecodeObjectErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no nul", raw: "blob 3abc"},
		{name: "no space", raw: "blob3\x00abc"},
		{name: "unknown type", raw: "tag 3\x00abc"},
		{name: "bad length", raw: "blob x\x00abc"},
		{name: "negative length", raw: "blob -1\x00"},
		{name: "length mismatch", raw: "blob 4\x00abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeObject([]byte(tc.raw))
			if !errors.Is(err, ErrCorruptObject) {
				t.Fatalf("DecodeObject(%q): got %v, want ErrCorruptObject", tc.raw, err)
			}
		})
	}
}

func TestMarshalTreeMatchesGit(t *testing.T) {
	blob := HashObject(TypeBlob, []byte("hello\n"))
	payload, err := MarshalTree(&TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "hello.txt", Hash: blob},
	}})
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}

	var want bytes.Buffer
	want.WriteString("100644 hello.txt\x00")
	want.Write(blob.Raw())
	if !bytes.Equal(payload, want.Bytes()) {
		t.Fatalf("payload = %q, want %q", payload, want.Bytes())
	}

	got := HashObject(TypeTree, payload)
	oracle := plumbing.ComputeHash(plumbing.TreeObject, payload).String()
	if string(got) != oracle {
		t.Errorf("tree id = %s, go-git computes %s", got, oracle)
	}
}

func TestMarshalTreeCanonicalOrder(t *testing.T) {
	h1 := HashObject(TypeBlob, []byte("1"))
	h2 := HashObject(TypeBlob, []byte("2"))
	h3 := HashObject(TypeBlob, []byte("3"))
	a := &TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "b", Hash: h2},
		{Mode: TreeModeFile, Name: "a", Hash: h1},
		{Mode: TreeModeDir, Name: "C", Hash: h3},
	}}
	b := &TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeDir, Name: "C", Hash: h3},
		{Mode: TreeModeFile, Name: "a", Hash: h1},
		{Mode: TreeModeFile, Name: "b", Hash: h2},
	}}
	da, err := MarshalTree(a)
	if err != nil {
		t.Fatalf("MarshalTree(a): %v", err)
	}
	db, err := MarshalTree(b)
	if err != nil {
		t.Fatalf("MarshalTree(b): %v", err)
	}
	if !bytes.Equal(da, db) {
		t.Fatal("insertion order changed tree serialization")
	}

	tr, err := UnmarshalTree(da)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	var names []string
	for _, e := range tr.Entries {
		names = append(names, e.Name)
	}
	// Byte-wise: uppercase sorts before lowercase.
	if diff := cmp.Diff([]string{"C", "a", "b"}, names); diff != "" {
		t.Errorf("entry order (-want +got):\n%s", diff)
	}
}

func TestSortTreeEntriesByteWise(t *testing.T) {
	entries := []TreeEntry{
		{Name: "file10"},
		{Name: "file2"},
		{Name: "file1"},
		{Name: "é"},
		{Name: "z"},
		{Name: "Z"},
	}
	SortTreeEntries(entries)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"Z", "file1", "file10", "file2", "z", "é"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("sort order (-want +got):\n%s", diff)
	}
}

func TestMarshalTreeRejectsInvalid(t *testing.T) {
	h := HashObject(TypeBlob, []byte("x"))
	tests := []struct {
		name    string
		entries []TreeEntry
	}{
		{name: "duplicate", entries: []TreeEntry{
			{Mode: TreeModeFile, Name: "a", Hash: h},
			{Mode: TreeModeDir, Name: "a", Hash: h},
		}},
		{name: "empty name", entries: []TreeEntry{{Mode: TreeModeFile, Name: "", Hash: h}}},
		{name: "slash", entries: []TreeEntry{{Mode: TreeModeFile, Name: "a/b", Hash: h}}},
		{name: "bad mode", entries: []TreeEntry{{Mode: "120000", Name: "link", Hash: h}}},
		{name: "bad hash", entries: []TreeEntry{{Mode: TreeModeFile, Name: "a", Hash: "nothex"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MarshalTree(&TreeObj{Entries: tc.entries}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestUnmarshalTreeBinaryDigest(t *testing.T) {
	// A digest full of NUL and space bytes must not confuse the parser.
	raw := make([]byte, HashSize)
	raw[0], raw[1], raw[5] = 0, ' ', 0
	h, err := HashFromRaw(raw)
	if err != nil {
		t.Fatalf("HashFromRaw: %v", err)
	}
	h2 := HashObject(TypeBlob, []byte("second"))

	payload, err := MarshalTree(&TreeObj{Entries: []TreeEntry{
		{Mode: TreeModeFile, Name: "a", Hash: h},
		{Mode: TreeModeDir, Name: "b", Hash: h2},
	}})
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	tr, err := UnmarshalTree(payload)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	want := []TreeEntry{
		{Mode: TreeModeFile, Name: "a", Hash: h},
		{Mode: TreeModeDir, Name: "b", Hash: h2},
	}
	if diff := cmp.Diff(want, tr.Entries); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}
}

func TestUnmarshalTreeTruncated(t *testing.T) {
	payload := append([]byte("100644 a\x00"), make([]byte, HashSize-1)...)
	if _, err := UnmarshalTree(payload); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("got %v, want ErrCorruptObject", err)
	}
	if _, err := UnmarshalTree([]byte("100644 a")); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("got %v, want ErrCorruptObject", err)
	}
	if _, err := UnmarshalTree([]byte("777 a\x00")); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("got %v, want ErrCorruptObject", err)
	}
}

func TestUnmarshalTreeEmpty(t *testing.T) {
	tr, err := UnmarshalTree(nil)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(tr.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(tr.Entries))
	}
}

func TestMarshalCommitLayout(t *testing.T) {
	tree := HashObject(TypeTree, nil)
	parent := HashObject(TypeCommit, []byte("p"))
	c := &CommitObj{
		TreeHash:  tree,
		Parent:    parent,
		Author:    Signature{Identity: "Ada Lovelace <ada@example.com>", When: 1700000000},
		Committer: Signature{Identity: "Ada Lovelace <ada@example.com>", When: 1700000000},
		Message:   "Initial commit\n",
	}
	want := "tree " + string(tree) + "\n" +
		"parent " + string(parent) + "\n" +
		"author Ada Lovelace <ada@example.com> 1700000000\n" +
		"committer Ada Lovelace <ada@example.com> 1700000000\n" +
		"\n" +
		"Initial commit\n"
	if got := string(MarshalCommit(c)); got != want {
		t.Errorf("MarshalCommit:\n%s\nwant:\n%s", got, want)
	}
}

func TestCommitRoundTripMatchesGit(t *testing.T) {
	c := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Author:    Signature{Identity: "A U Thor <author@example.com>", When: 1112911993, Timezone: "-0700"},
		Committer: Signature{Identity: "C O Mitter <committer@example.com>", When: 1112911994, Timezone: "+0000"},
		Message:   "msg\n\nbody with blank line\n",
	}
	data := MarshalCommit(c)
	got, err := UnmarshalCommit(data)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("commit round-trip (-want +got):\n%s", diff)
	}
	if string(HashObject(TypeCommit, data)) != plumbing.ComputeHash(plumbing.CommitObject, data).String() {
		t.Error("commit id disagrees with go-git")
	}
}

func TestCommitSignatureHeader(t *testing.T) {
	c := &CommitObj{
		TreeHash:  HashObject(TypeTree, nil),
		Author:    Signature{Identity: "a <a@b>", When: 1},
		Committer: Signature{Identity: "a <a@b>", When: 1},
		Signature: "-----BEGIN SIG-----\nAAAA\n-----END SIG-----\n",
		Message:   "signed\n",
	}
	data := MarshalCommit(c)
	if !strings.Contains(string(data), "gpgsig -----BEGIN SIG-----\n AAAA\n -----END SIG-----\n\nsigned\n") {
		t.Errorf("unexpected gpgsig layout:\n%s", data)
	}
	got, err := UnmarshalCommit(data)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.Signature != c.Signature {
		t.Errorf("Signature = %q, want %q", got.Signature, c.Signature)
	}
	payload := CommitSigningPayload(c)
	if strings.Contains(string(payload), "gpgsig") {
		t.Error("signing payload must exclude the signature")
	}
	if !bytes.Equal(payload, MarshalCommit(&CommitObj{
		TreeHash: c.TreeHash, Author: c.Author, Committer: c.Committer, Message: c.Message,
	})) {
		t.Error("signing payload should equal the unsigned commit")
	}
}

func TestUnmarshalCommitErrors(t *testing.T) {
	tree := string(HashObject(TypeTree, nil))
	tests := []struct {
		name string
		data string
	}{
		{name: "no separator", data: "tree " + tree + "\n"},
		{name: "no tree", data: "author a 1\ncommitter a 1\n\nm"},
		{name: "unknown key", data: "tree " + tree + "\nfoo bar\n\nm"},
		{name: "bad timestamp", data: "tree " + tree + "\nauthor a <b> soon\n\nm"},
		{name: "two parents", data: "tree " + tree + "\nparent " + tree + "\nparent " + tree + "\n\nm"},
		{name: "stray continuation", data: "tree " + tree + "\n cont\n\nm"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalCommit([]byte(tc.data)); !errors.Is(err, ErrCorruptObject) {
				t.Fatalf("got %v, want ErrCorruptObject", err)
			}
		})
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	tree := HashObject(TypeTree, nil)
	tests := []Signature{
		{Identity: "A B", When: -1234},
		{Identity: "A B", When: -1234, Timezone: "-0500"},
		{Identity: "A <a@example.com>", When: 0},
		{Identity: "A <a@example.com>", When: 1700000000, Timezone: "+0100"},
	}
	for _, sig := range tests {
		c := &CommitObj{TreeHash: tree, Author: sig, Committer: sig, Message: "m\n"}
		got, err := UnmarshalCommit(MarshalCommit(c))
		if err != nil {
			t.Errorf("%+v: UnmarshalCommit: %v", sig, err)
			continue
		}
		if diff := cmp.Diff(sig, got.Author); diff != "" {
			t.Errorf("author (-want +got):\n%s", diff)
		}
	}
}

func TestValidateSignature(t *testing.T) {
	tests := []struct {
		sig     Signature
		wantErr bool
	}{
		{sig: Signature{Identity: "A <a@b>", When: 1}},
		{sig: Signature{Identity: "A <a@b>", When: 1, Timezone: "+0100"}},
		{sig: Signature{Identity: "A <a@b>", When: 1, Timezone: "-0930"}},
		{sig: Signature{Identity: "", When: 1}, wantErr: true},
		{sig: Signature{Identity: "Eve\nparent 0000000000000000000000000000000000000000", When: 1}, wantErr: true},
		{sig: Signature{Identity: "Eve\x00", When: 1}, wantErr: true},
		{sig: Signature{Identity: "A", When: 1, Timezone: "UTC"}, wantErr: true},
		{sig: Signature{Identity: "A", When: 1, Timezone: "+01:00"}, wantErr: true},
		{sig: Signature{Identity: "A", When: 1, Timezone: "0100"}, wantErr: true},
	}
	for _, tc := range tests {
		err := ValidateSignature(tc.sig)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateSignature(%q, tz=%q) = %v, wantErr %v", tc.sig.Identity, tc.sig.Timezone, err, tc.wantErr)
		}
	}
}
