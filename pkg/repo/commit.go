package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/minigit/pkg/object"
	"go.uber.org/zap"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// CommitRequest carries everything a commit is built from. Author and
// Committer timestamps are supplied by the caller, so identical requests
// always produce identical commit ids.
type CommitRequest struct {
	Tree      object.Hash
	Parent    object.Hash // optional
	Message   string
	Author    object.Signature
	Committer object.Signature // defaults to Author when Identity is empty
	Signer    CommitSigner     // optional
}

// BuildCommit encodes, stores and returns the id of a commit. The referenced
// tree and parent must already exist in the store. No ref is updated; moving
// a branch pointer is left to the caller.
func (r *Repo) BuildCommit(req CommitRequest) (object.Hash, error) {
	if _, err := r.Store.ReadTree(req.Tree); err != nil {
		return "", fmt.Errorf("commit: tree %s: %w", req.Tree, err)
	}
	if req.Parent != "" {
		if _, err := r.Store.ReadCommit(req.Parent); err != nil {
			return "", fmt.Errorf("commit: parent %s: %w", req.Parent, err)
		}
	}
	if strings.TrimSpace(req.Author.Identity) == "" {
		return "", errors.New("commit: author identity is required")
	}
	committer := req.Committer
	if strings.TrimSpace(committer.Identity) == "" {
		committer = req.Author
	}
	// A header the decoder rejects would leave an unreadable commit that
	// can never serve as a parent.
	if err := object.ValidateSignature(req.Author); err != nil {
		return "", fmt.Errorf("commit: author: %w", err)
	}
	if err := object.ValidateSignature(committer); err != nil {
		return "", fmt.Errorf("commit: committer: %w", err)
	}

	message := req.Message
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	commitObj := &object.CommitObj{
		TreeHash:  req.Tree,
		Parent:    req.Parent,
		Author:    req.Author,
		Committer: committer,
		Message:   message,
	}
	if req.Signer != nil {
		signature, err := req.Signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return "", fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	h, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}
	r.logger.Debug("commit written",
		zap.String("id", string(h)),
		zap.String("tree", string(req.Tree)),
		zap.String("parent", string(req.Parent)),
	)
	return h, nil
}
