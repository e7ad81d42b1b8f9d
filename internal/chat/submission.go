package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// State is the submission state machine: Idle -> Sending -> {Succeeded, Failed} -> Idle.
// Succeeded and Failed last only while the outcome is committed under the
// controller's lock, so they appear in the debug log but never in State.
type State int

const (
	Idle State = iota
	Sending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type OutcomeKind int

const (
	// OutcomeIgnored: the prompt was blank, nothing happened.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeBusy: another submission was in flight, the call was rejected.
	OutcomeBusy
	OutcomeSucceeded
	OutcomeFailed
)

// Outcome is how a Submit call resolved. Submit never returns an error.
type Outcome struct {
	Kind     OutcomeKind
	Prompt   string
	Response string
	Reason   string
	Err      error
}

// Echo is the user's prompt as shown before the response arrives.
type Echo struct {
	Prompt         string
	AttachmentName string
}

// Observer is told when a submission starts and when it completes, so a
// front end can show the echo and re-enable its input.
type Observer interface {
	SubmissionStarted(Echo)
	SubmissionFinished(Outcome)
}

type nopObserver struct{}

func (nopObserver) SubmissionStarted(Echo)     {}
func (nopObserver) SubmissionFinished(Outcome) {}

// Controller runs one submission at a time against the remote API.
type Controller struct {
	mu      sync.Mutex
	state   State
	echo    *Echo
	failure string
	last    *Outcome

	remote      Remote
	attachments *AttachmentManager
	store       *ConversationStore
	observer    Observer
	logger      *zap.Logger
}

func NewController(remote Remote, attachments *AttachmentManager, store *ConversationStore, observer Observer, logger *zap.Logger) *Controller {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		remote:      remote,
		attachments: attachments,
		store:       store,
		observer:    observer,
		logger:      logger,
	}
}

// Submit sends prompt with the current attachment, if any.
func (c *Controller) Submit(ctx context.Context, prompt string) Outcome {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Outcome{Kind: OutcomeIgnored}
	}

	c.mu.Lock()
	if c.state == Sending {
		c.mu.Unlock()
		c.logger.Debug("submission rejected, another one is in flight")
		return Outcome{Kind: OutcomeBusy, Prompt: prompt}
	}

	att, hasAttachment := c.attachments.Current()
	echo := Echo{Prompt: prompt}
	if hasAttachment {
		echo.AttachmentName = att.Name
	}
	c.transition(Sending)
	c.echo = &echo
	c.failure = ""
	c.mu.Unlock()

	c.observer.SubmissionStarted(echo)

	var sent *Attachment
	if hasAttachment {
		sent = &att
	}
	response, err := c.send(ctx, prompt, sent)

	c.mu.Lock()
	var out Outcome
	if err != nil {
		c.transition(Failed)
		out = Outcome{Kind: OutcomeFailed, Prompt: prompt, Reason: err.Error(), Err: err}
		c.failure = out.Reason
		c.logger.Warn("submission failed", zap.Error(err))
	} else {
		c.transition(Succeeded)
		c.store.Append(Entry{
			Prompt:       prompt,
			Response:     response,
			HasDocument:  hasAttachment,
			DocumentName: echo.AttachmentName,
		})
		c.attachments.Clear()
		c.echo = nil
		out = Outcome{Kind: OutcomeSucceeded, Prompt: prompt, Response: response}
	}
	c.last = &out
	c.transition(Idle)
	c.mu.Unlock()

	c.observer.SubmissionFinished(out)
	return out
}

// send shields the state machine from a panicking Remote.
func (c *Controller) send(ctx context.Context, prompt string, att *Attachment) (response string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()
	return c.remote.Chat(ctx, prompt, att)
}

// transition must be called with c.mu held.
func (c *Controller) transition(to State) {
	c.logger.Debug("submission state", zap.Stringer("from", c.state), zap.Stringer("to", to))
	c.state = to
}

// State reports Idle or Sending. Use Last for how a submission ended.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the outcome of the most recent completed submission.
func (c *Controller) Last() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Outcome{}, false
	}
	return *c.last, true
}

// live reports what the renderer needs beyond the committed entries.
func (c *Controller) live() (State, *Echo, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var echo *Echo
	if c.echo != nil {
		e := *c.echo
		echo = &e
	}
	return c.state, echo, c.failure
}

// reset forgets the live echo and the last failure, used after clear-all
// and on teardown. An in-flight echo is kept.
func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Sending {
		c.echo = nil
	}
	c.failure = ""
}
