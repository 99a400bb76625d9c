package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/odvcencio/minigit/pkg/object"
	"github.com/odvcencio/minigit/pkg/repo"
	"golang.org/x/crypto/ssh"
)

const commitSignaturePrefix = "sshsig-v1"

var errUnsigned = errors.New("commit is not signed")

func newSSHCommitSigner(keyPath string) (repo.CommitSigner, string, error) {
	resolvedPath, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}

	pub := signer.PublicKey()
	pubB64 := base64.StdEncoding.EncodeToString(pub.Marshal())

	commitSigner := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", commitSignaturePrefix, sig.Format, pubB64, sigB64), nil
	}
	return commitSigner, resolvedPath, nil
}

// verifySSHCommitSignature checks the commit's signature against the public
// key embedded in it and returns that key.
func verifySSHCommitSignature(c *object.CommitObj) (ssh.PublicKey, error) {
	encoded := strings.TrimSpace(c.Signature)
	if encoded == "" {
		return nil, errUnsigned
	}
	parts := strings.Split(encoded, ":")
	if len(parts) != 4 || parts[0] != commitSignaturePrefix {
		return nil, fmt.Errorf("unrecognized signature format")
	}
	pubRaw, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	pub, err := ssh.ParsePublicKey(pubRaw)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	sig := &ssh.Signature{Format: parts[1], Blob: blob}
	if err := pub.Verify(object.CommitSigningPayload(c), sig); err != nil {
		return nil, fmt.Errorf("bad signature: %w", err)
	}
	return pub, nil
}

func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return "", fmt.Errorf("resolve signing key %q: %w", path, err)
		}
		return filepath.Abs(expanded)
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}
