// Package intake batches inbound receipt images per conversation. Images
// arriving in quick succession are buffered until a debounce window elapses
// with no new image, then dispatched downstream as one submission.
package intake

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wunderfauks/receiptguard/internal/common"
)

// DefaultDebounce is the quiet period after the last image before a batch
// is considered complete.
const DefaultDebounce = 2 * time.Second

// State is the lifecycle phase of one conversation's batch.
type State int

// Conversation batch states.
const (
	StateIdle State = iota
	StateCollecting
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// Dispatcher receives a completed batch for fraud scoring and campaign
// evaluation. It is invoked exactly once per batch, from the batcher's own
// goroutine; errors are logged, never surfaced to the submitter.
type Dispatcher interface {
	ProcessBatch(ctx context.Context, conversationID string, mediaRefs []string) error
}

// Notifier sends user-facing messages over the chat channel. Delivery
// failures are logged and otherwise ignored.
type Notifier interface {
	AckReceived(ctx context.Context, conversationID string) error
}

type conversation struct {
	timer     *time.Timer
	pending   []string
	state     State
	expecting bool
	timerGen  uint64
}

// Batcher is the per-conversation intake state machine. State is keyed by
// conversation id; a given key is only ever mutated under the batcher lock,
// and conversations never interact.
type Batcher struct {
	dispatcher    Dispatcher
	notifier      Notifier
	conversations map[string]*conversation
	mu            sync.Mutex
	debounce      time.Duration
}

// NewBatcher creates an intake batcher with the default debounce window.
func NewBatcher(dispatcher Dispatcher, notifier Notifier) *Batcher {
	return &Batcher{
		dispatcher:    dispatcher,
		notifier:      notifier,
		conversations: make(map[string]*conversation),
		debounce:      DefaultDebounce,
	}
}

// WithDebounce overrides the debounce window. Used in tests.
func (b *Batcher) WithDebounce(d time.Duration) *Batcher {
	b.debounce = d
	return b
}

// ExpectImage marks a conversation as waiting for receipt uploads. Images
// arriving for a conversation not in this mode are ignored.
func (b *Batcher) ExpectImage(conversationID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.get(conversationID).expecting = true
}

// StopExpecting ends a conversation's upload mode and discards any images
// still pending.
func (b *Batcher) StopExpecting(conversationID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	conv, ok := b.conversations[conversationID]
	if !ok {
		return
	}
	if conv.timer != nil {
		conv.timer.Stop()
	}
	delete(b.conversations, conversationID)
}

// State reports the current batch state of a conversation.
func (b *Batcher) State(conversationID string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conv, ok := b.conversations[conversationID]; ok {
		return conv.state
	}
	return StateIdle
}

// OnInboundImage feeds one inbound image into the conversation's batch.
// The first image of a batch triggers a single acknowledgment; every image
// resets the debounce timer, so dispatch happens only after a full quiet
// period. A missing conversation id is fatal for the event since the
// submission cannot be attributed.
func (b *Batcher) OnInboundImage(ctx context.Context, conversationID, mediaRef string) error {
	if conversationID == "" {
		return common.ErrMissingSubmitter
	}
	if mediaRef == "" {
		return common.ErrNoImages
	}

	b.mu.Lock()
	conv := b.get(conversationID)
	if !conv.expecting {
		b.mu.Unlock()
		slog.Debug("image ignored, conversation not expecting uploads",
			"conversation_id", conversationID)
		return nil
	}

	conv.pending = append(conv.pending, mediaRef)
	first := len(conv.pending) == 1
	if conv.state != StateProcessing {
		conv.state = StateCollecting
	}

	// Cancel-and-replace: the generation counter keeps a timer that already
	// fired but lost the lock race from dispatching a stale batch.
	if conv.timer != nil {
		conv.timer.Stop()
	}
	conv.timerGen++
	gen := conv.timerGen
	conv.timer = time.AfterFunc(b.debounce, func() {
		b.fire(conversationID, gen)
	})
	b.mu.Unlock()

	if first {
		go b.ack(conversationID)
	}
	return nil
}

// fire snapshots and clears the pending batch, then dispatches it. Runs on
// the timer goroutine; dispatch errors are logged, not surfaced.
func (b *Batcher) fire(conversationID string, gen uint64) {
	b.mu.Lock()
	conv, ok := b.conversations[conversationID]
	if !ok || conv.timerGen != gen || len(conv.pending) == 0 {
		b.mu.Unlock()
		return
	}

	batch := conv.pending
	conv.pending = nil
	conv.timer = nil
	conv.state = StateProcessing
	b.mu.Unlock()

	common.LogInfo("dispatching image batch", common.Fields{
		"conversation_id": conversationID,
		"images":          len(batch),
	})

	if err := b.dispatcher.ProcessBatch(context.Background(), conversationID, batch); err != nil {
		common.LogError(err, "batch processing failed", common.Fields{
			"conversation_id": conversationID,
			"images":          len(batch),
		})
	}

	b.mu.Lock()
	switch {
	case len(conv.pending) > 0:
		// Images arrived during processing; their timer owns the next batch.
		conv.state = StateCollecting
	case conv.state == StateProcessing:
		conv.state = StateIdle
	}
	b.mu.Unlock()
}

func (b *Batcher) ack(conversationID string) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.AckReceived(context.Background(), conversationID); err != nil {
		slog.Warn("failed to acknowledge submission",
			"conversation_id", conversationID,
			"error", err)
	}
}

// get returns the conversation state, creating it on first use. Caller must
// hold the lock.
func (b *Batcher) get(conversationID string) *conversation {
	conv, ok := b.conversations[conversationID]
	if !ok {
		conv = &conversation{}
		b.conversations[conversationID] = conv
	}
	return conv
}
