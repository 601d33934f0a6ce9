// Package convo orchestrates conversation turns: it appends user
// messages, requests model completions, and keeps the current branch's
// message list in step with what was sent to the completion API.
package convo

import (
	"context"
	"sync"
	"time"

	"synapse/pkg/branch"
	"synapse/pkg/completion"
	"synapse/pkg/logger"
	"synapse/pkg/models"
	"synapse/pkg/store"
	"synapse/pkg/telemetry"
)

// FallbackReply is appended as an assistant message when a direct
// completion request fails, so the conversation never loses turn
// continuity.
const FallbackReply = "Sorry, I couldn't get a response. Please check your API key and network connection."

// timestampLayout renders the display time shown next to each message.
const timestampLayout = "03:04 PM"

// BranchResult reports the outcome of the asynchronous completion
// issued after a branch is created. Failures are delivered here instead
// of vanishing.
type BranchResult struct {
	TopicID  string
	BranchID string
	Err      error
}

// Orchestrator serializes all mutations of a topic through a per-topic
// lock so two in-flight sends against one branch cannot interleave
// their appends.
type Orchestrator struct {
	provider completion.Provider

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	results chan BranchResult
	wg      sync.WaitGroup
}

// New creates an orchestrator over the given completion provider.
func New(p completion.Provider) *Orchestrator {
	return &Orchestrator{
		provider: p,
		locks:    map[string]*sync.Mutex{},
		results:  make(chan BranchResult, 64),
	}
}

// Results exposes branch-completion outcomes. The channel is buffered;
// when nobody drains it, delivery is dropped after logging rather than
// blocking the worker.
func (o *Orchestrator) Results() <-chan BranchResult {
	return o.results
}

// Wait blocks until all in-flight branch completions have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) topicLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// History builds the ordered {role, text} sequence for a branch, with
// author "user" mapped to the user role and "ai" to the model role.
func History(b *models.BranchNode) []completion.Turn {
	out := make([]completion.Turn, 0, len(b.Messages))
	for _, m := range b.Messages {
		role := completion.RoleUser
		if m.Author == models.AuthorAI {
			role = completion.RoleModel
		}
		out = append(out, completion.Turn{Role: role, Text: m.Content})
	}
	return out
}

func newMessage(author, content string) models.Message {
	return models.Message{
		ID:        branch.NewMessageID(author),
		Author:    author,
		Content:   content,
		Timestamp: time.Now().Format(timestampLayout),
	}
}

// SendMessage appends a user message to the topic's current branch
// (creating the root branch first when the topic has none), requests a
// completion for the branch's full history, and appends the reply. A
// failed completion degrades to the fixed fallback reply; the returned
// error covers storage problems only.
func (o *Orchestrator) SendMessage(ctx context.Context, topicID, content string) (*models.Topic, error) {
	l := o.topicLock(topicID)
	l.Lock()
	defer l.Unlock()

	t, err := store.GetTopic(topicID)
	if err != nil {
		return nil, err
	}

	t, target, created := branch.EnsureRoot(t)
	t, err = branch.Append(t, target.ID, newMessage(models.AuthorUser, content))
	if err != nil {
		return nil, err
	}
	// Persist the user turn before the completion round-trip so the
	// branch (and, on first send, the new root) exists regardless of
	// the API outcome.
	if err := store.SaveTopic(t); err != nil {
		return nil, err
	}
	if created {
		logger.Info("first_message_created_root", "topic", topicID, "branch", t.CurrentBranchID)
	}

	reply, err := o.provider.Generate(ctx, History(t.Branch(t.CurrentBranchID)))
	if err != nil {
		logger.Warn("completion_failed", "topic", topicID, "branch", t.CurrentBranchID, "error", err)
		telemetry.CompletionFailures.Inc()
		reply = FallbackReply
	} else {
		telemetry.Completions.Inc()
	}

	t, err = branch.Append(t, t.CurrentBranchID, newMessage(models.AuthorAI, reply))
	if err != nil {
		return nil, err
	}
	if err := store.SaveTopic(t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateBranch forks sourceID into a new branch and kicks off the
// follow-up completion asynchronously: the branch is inserted and made
// current before the model responds. The completion outcome is
// published on Results.
func (o *Orchestrator) CreateBranch(ctx context.Context, topicID, sourceID, name, upToMessageID string) (*models.Topic, *models.BranchNode, error) {
	l := o.topicLock(topicID)
	l.Lock()
	t, err := store.GetTopic(topicID)
	if err != nil {
		l.Unlock()
		return nil, nil, err
	}
	t, nb, err := branch.Create(t, sourceID, name, upToMessageID)
	if err != nil {
		l.Unlock()
		return nil, nil, err
	}
	if err := store.SaveTopic(t); err != nil {
		l.Unlock()
		return nil, nil, err
	}
	l.Unlock()

	history := History(nb)
	o.wg.Add(1)
	go o.completeBranch(topicID, nb.ID, history)
	return t, nb, nil
}

// completeBranch runs the post-fork completion and appends the reply to
// the new branch. Run detached from the creating request; uses its own
// context so a finished HTTP request does not cancel it.
func (o *Orchestrator) completeBranch(topicID, branchID string, history []completion.Turn) {
	defer o.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reply, err := o.provider.Generate(ctx, history)
	if err != nil {
		telemetry.CompletionFailures.Inc()
		logger.Warn("branch_completion_failed", "topic", topicID, "branch", branchID, "error", err)
		o.publish(BranchResult{TopicID: topicID, BranchID: branchID, Err: err})
		return
	}
	telemetry.Completions.Inc()

	l := o.topicLock(topicID)
	l.Lock()
	defer l.Unlock()
	t, err := store.GetTopic(topicID)
	if err != nil {
		o.publish(BranchResult{TopicID: topicID, BranchID: branchID, Err: err})
		return
	}
	t, err = branch.Append(t, branchID, newMessage(models.AuthorAI, reply))
	if err != nil {
		// Branch was deleted while the completion was in flight.
		o.publish(BranchResult{TopicID: topicID, BranchID: branchID, Err: err})
		return
	}
	if err := store.SaveTopic(t); err != nil {
		o.publish(BranchResult{TopicID: topicID, BranchID: branchID, Err: err})
		return
	}
	o.publish(BranchResult{TopicID: topicID, BranchID: branchID})
}

func (o *Orchestrator) publish(r BranchResult) {
	select {
	case o.results <- r:
	default:
		logger.Warn("branch_result_dropped", "topic", r.TopicID, "branch", r.BranchID, "error", r.Err)
	}
}

// SelectBranch makes branchID the topic's current branch and persists
// the snapshot.
func (o *Orchestrator) SelectBranch(topicID, branchID string) (*models.Topic, error) {
	l := o.topicLock(topicID)
	l.Lock()
	defer l.Unlock()
	t, err := store.GetTopic(topicID)
	if err != nil {
		return nil, err
	}
	t, err = branch.Select(t, branchID)
	if err != nil {
		return nil, err
	}
	if err := store.SaveTopic(t); err != nil {
		return nil, err
	}
	return t, nil
}
