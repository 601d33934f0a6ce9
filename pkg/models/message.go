package models

// Author values for Message.
const (
	AuthorUser = "user"
	AuthorAI   = "ai"
)

// Message is a single conversation turn. Messages are immutable once
// created and are appended to exactly one branch's list in send order.
// Timestamp is a display string (e.g. "10:01 AM"), not a sort key.
type Message struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
