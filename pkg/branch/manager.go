// Package branch implements branch creation and selection over a
// topic's branch forest. Mutations operate on topic clones; callers
// persist the returned snapshot wholesale.
package branch

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"synapse/pkg/logger"
	"synapse/pkg/models"
)

var (
	// ErrBranchNotFound reports a source branch id that does not exist
	// within the topic. Lookup failures are explicit rather than silent
	// no-ops so callers must handle them.
	ErrBranchNotFound = errors.New("branch not found")
)

// RootBranchName is the name given to the lazily created first branch.
const RootBranchName = "Main Discussion"

// Initial canvas position for a topic's first branch.
var rootPosition = models.Position{X: 100, Y: 200}

var idSeq uint64

// NewID returns a unique branch id. The nanosecond timestamp is
// suffixed with a process-local counter to avoid collisions within a
// single tick.
func NewID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("branch-%d-%d", n, s)
}

// NewMessageID returns a unique message id carrying the author kind.
func NewMessageID(author string) string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("msg-%s-%d-%d", author, n, s)
}

// EnsureRoot returns the topic's current branch, creating the root
// branch first when the topic has none. The returned topic is a clone
// when a branch had to be created, otherwise the original.
func EnsureRoot(t *models.Topic) (*models.Topic, *models.BranchNode, bool) {
	if cur := t.CurrentBranch(); cur != nil {
		return t, cur, false
	}
	nt := t.Clone()
	root := &models.BranchNode{
		ID:        NewID(),
		Name:      RootBranchName,
		Messages:  []models.Message{},
		Position:  rootPosition,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	nt.Branches = append(nt.Branches, root)
	nt.CurrentBranchID = root.ID
	logger.Info("root_branch_created", "topic", t.ID, "branch", root.ID)
	return nt, root, true
}

// Create forks sourceID into a new branch named name, copying the
// source's messages up to and including upToMessageID. An empty
// upToMessageID, or one not present in the source branch, copies the
// full list. The new branch is marked IsNew (clearing the flag on every
// other branch), given a heuristic position next to its source, and
// becomes the topic's current branch.
//
// The returned topic is a fresh snapshot; the input is not modified.
func Create(t *models.Topic, sourceID, name, upToMessageID string) (*models.Topic, *models.BranchNode, error) {
	src := t.Branch(sourceID)
	if src == nil {
		return nil, nil, fmt.Errorf("source %q in topic %q: %w", sourceID, t.ID, ErrBranchNotFound)
	}

	msgs := append([]models.Message(nil), src.Messages...)
	if upToMessageID != "" {
		for i, m := range src.Messages {
			if m.ID == upToMessageID {
				msgs = append([]models.Message(nil), src.Messages[:i+1]...)
				break
			}
		}
	}

	// Rough placement next to the source; the layout engine overwrites
	// this on the next canvas render.
	siblings := 0
	for _, b := range t.Branches {
		if b.ParentID == sourceID {
			siblings++
		}
	}
	pos := models.Position{
		X: src.Position.X + 300,
		Y: src.Position.Y + float64(siblings)*150,
	}

	nt := t.Clone()
	for _, b := range nt.Branches {
		b.IsNew = false
	}
	nb := &models.BranchNode{
		ID:        NewID(),
		Name:      name,
		ParentID:  sourceID,
		Messages:  msgs,
		Position:  pos,
		IsNew:     true,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	nt.Branches = append(nt.Branches, nb)
	nt.CurrentBranchID = nb.ID
	logger.Info("branch_created", "topic", t.ID, "branch", nb.ID, "source", sourceID, "copied", len(msgs))
	return nt, nb, nil
}

// Select makes branchID the topic's current branch.
func Select(t *models.Topic, branchID string) (*models.Topic, error) {
	if t.Branch(branchID) == nil {
		return nil, fmt.Errorf("branch %q in topic %q: %w", branchID, t.ID, ErrBranchNotFound)
	}
	nt := t.Clone()
	nt.CurrentBranchID = branchID
	return nt, nil
}

// Append adds a message to the named branch of a fresh topic snapshot.
func Append(t *models.Topic, branchID string, msg models.Message) (*models.Topic, error) {
	nt := t.Clone()
	b := nt.Branch(branchID)
	if b == nil {
		return nil, fmt.Errorf("branch %q in topic %q: %w", branchID, t.ID, ErrBranchNotFound)
	}
	b.Messages = append(b.Messages, msg)
	return nt, nil
}
