package models

// Topic is a named container for one or more branches sharing a
// subject. At most one branch is "current" and drives the chat view.
type Topic struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Owner           string        `json:"owner,omitempty"`
	Branches        []*BranchNode `json:"branches"`
	CurrentBranchID string        `json:"currentBranchId,omitempty"`
	CreatedTS       int64         `json:"created_ts,omitempty"`
	UpdatedTS       int64         `json:"updated_ts,omitempty"`
}

// Branch returns the branch with the given id, or nil.
func (t *Topic) Branch(id string) *BranchNode {
	for _, b := range t.Branches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// CurrentBranch returns the currently selected branch, or nil when the
// topic has none.
func (t *Topic) CurrentBranch() *BranchNode {
	if t.CurrentBranchID == "" {
		return nil
	}
	return t.Branch(t.CurrentBranchID)
}

// Clone returns a deep copy of the topic. Mutation paths operate on a
// clone and replace the stored snapshot wholesale, so concurrent
// readers never observe a half-updated branch list.
func (t *Topic) Clone() *Topic {
	nt := *t
	nt.Branches = make([]*BranchNode, 0, len(t.Branches))
	for _, b := range t.Branches {
		nt.Branches = append(nt.Branches, b.Clone())
	}
	return &nt
}
