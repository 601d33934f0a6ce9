package models

// Position is a 2-D canvas coordinate assigned by the layout engine.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BranchNode is an independent line of conversation within a topic.
// ParentID, when set, references another branch in the same topic; a
// branch with an empty ParentID is a root. Branches are only created by
// copying an existing branch's message prefix, so the per-topic branch
// graph is a forest by construction.
type BranchNode struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ParentID string    `json:"parentId,omitempty"`
	Messages []Message `json:"messages"`
	Position Position  `json:"position"`
	// IsNew is a transient highlight flag set on the most recently
	// created branch and cleared on its siblings.
	IsNew     bool   `json:"isNew,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Clone returns a deep copy of the branch. Messages are value copies
// that keep their original ids.
func (b *BranchNode) Clone() *BranchNode {
	nb := *b
	nb.Messages = append([]Message(nil), b.Messages...)
	return &nb
}
