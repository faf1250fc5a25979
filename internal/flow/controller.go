// Package flow drives a subject through a grouping one question at a time.
package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/visibility"
)

// Direction records the last navigation move. Presentation only.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// Outcome reports what a navigation call did.
type Outcome int

const (
	// Blocked means the move was not allowed; state is unchanged.
	Blocked Outcome = iota
	// Moved means the current index changed.
	Moved
	// Completed means the last step was passed and the completion callback ran.
	Completed
)

// ErrNoQuestion is returned when an answer is set with no visible question.
var ErrNoQuestion = errors.New("no current question")

// AnswerWriter persists a single answer.
type AnswerWriter interface {
	WriteAnswer(ctx context.Context, questionID string, v answer.Value) error
}

// AnswerWriterFunc adapts a function to AnswerWriter.
type AnswerWriterFunc func(ctx context.Context, questionID string, v answer.Value) error

// WriteAnswer implements AnswerWriter.
func (f AnswerWriterFunc) WriteAnswer(ctx context.Context, questionID string, v answer.Value) error {
	return f(ctx, questionID, v)
}

// CompletionFunc receives the full answer map when the last step is passed.
type CompletionFunc func(ctx context.Context, answers answer.Answers) error

// Config configures a Controller.
type Config struct {
	// Questions in display order. Group nodes are dropped.
	Questions []catalog.Question
	// Committed answers loaded from the store.
	Committed answer.Answers
	Writer    AnswerWriter
	// OnComplete is optional.
	OnComplete CompletionFunc
}

// Controller is the per-session navigation state machine. It is not safe for
// concurrent use; one subject drives it serially.
type Controller struct {
	questions  []catalog.Question
	visible    []catalog.Question
	committed  answer.Answers
	pending    answer.Answers
	initial    answer.Answers
	writer     AnswerWriter
	onComplete CompletionFunc
	index      int
	direction  Direction
	completed  bool
}

// New creates a Controller positioned on the first visible question.
func New(cfg Config) *Controller {
	var qs []catalog.Question
	for _, q := range cfg.Questions {
		if q.Kind.Answerable() {
			qs = append(qs, q)
		}
	}
	committed := cfg.Committed.Clone()
	c := &Controller{
		questions:  qs,
		committed:  committed,
		pending:    answer.Answers{},
		initial:    committed.Clone(),
		writer:     cfg.Writer,
		onComplete: cfg.OnComplete,
	}
	c.refresh("")
	return c
}

// Answers returns pending edits merged over committed answers.
func (c *Controller) Answers() answer.Answers {
	return answer.Merge(c.committed, c.pending)
}

// Committed returns only the answers that were written successfully. Use
// this view for progress and unlock computation.
func (c *Controller) Committed() answer.Answers { return c.committed.Clone() }

// Pending returns edits not yet written.
func (c *Controller) Pending() answer.Answers { return c.pending.Clone() }

// Visible returns the visibility-filtered question list.
func (c *Controller) Visible() []catalog.Question {
	return append([]catalog.Question(nil), c.visible...)
}

// Index returns the current position in the visible list.
func (c *Controller) Index() int { return c.index }

// Len returns the number of visible questions.
func (c *Controller) Len() int { return len(c.visible) }

// Direction returns the last navigation direction.
func (c *Controller) Direction() Direction { return c.direction }

// Done reports whether the completion callback has run.
func (c *Controller) Done() bool { return c.completed }

// IsLast reports whether the current question is the final visible one.
func (c *Controller) IsLast() bool { return c.index == len(c.visible)-1 }

// Current returns the current question.
func (c *Controller) Current() (catalog.Question, bool) {
	if len(c.visible) == 0 {
		return catalog.Question{}, false
	}
	return c.visible[c.index], true
}

// Value returns the displayed answer for the current question.
func (c *Controller) Value() answer.Value {
	q, ok := c.Current()
	if !ok {
		return answer.Null()
	}
	v, _ := c.Answers().Get(q.ID)
	return v
}

// Validation checks the displayed answer of the current question.
func (c *Controller) Validation() answer.ValidationResult {
	q, ok := c.Current()
	if !ok {
		return answer.ValidationResult{Valid: true}
	}
	return q.Validate(c.Value())
}

// Stage records a local edit for the current question without writing it.
func (c *Controller) Stage(v answer.Value) {
	q, ok := c.Current()
	if !ok {
		return
	}
	c.pending[q.ID] = v
}

// SetAnswer stages v and writes it through. A value that fails its
// constraints stays pending and the failing result is returned with a nil
// error. A write failure keeps the value pending and returns the error.
func (c *Controller) SetAnswer(ctx context.Context, v answer.Value) (answer.ValidationResult, error) {
	q, ok := c.Current()
	if !ok {
		return answer.ValidationResult{}, ErrNoQuestion
	}
	c.pending[q.ID] = v
	return c.commit(ctx, q)
}

func (c *Controller) commit(ctx context.Context, q catalog.Question) (answer.ValidationResult, error) {
	v, ok := c.pending[q.ID]
	if !ok {
		return answer.ValidationResult{Valid: true}, nil
	}
	// Clearing is always allowed; required-ness is enforced on navigation.
	res := catalog.IsAnswerComplete(v, q.Kind, q.Props, false)
	if !res.Valid {
		return res, nil
	}
	if c.writer != nil {
		if err := c.writer.WriteAnswer(ctx, q.ID, v); err != nil {
			return res, fmt.Errorf("save answer %s: %w", q.ID, err)
		}
	}
	c.committed[q.ID] = v
	delete(c.pending, q.ID)
	c.refresh(q.ID)
	return res, nil
}

// refresh recomputes the visible list, keeping anchorID current when it is
// still visible and clamping the index otherwise.
func (c *Controller) refresh(anchorID string) {
	c.visible = visibility.Filter(c.questions, c.Answers())
	if anchorID != "" {
		for i, q := range c.visible {
			if q.ID == anchorID {
				c.index = i
				return
			}
		}
	}
	c.index = clamp(c.index, len(c.visible))
}

func clamp(idx, n int) int {
	return min(max(idx, 0), max(0, n-1))
}

// SkipPolicy returns the effective policy of the current question.
func (c *Controller) SkipPolicy() catalog.SkipPolicy {
	q, ok := c.Current()
	if !ok {
		return catalog.SkipOptional
	}
	return q.EffectiveSkipPolicy()
}

// valid reports whether the displayed value is present and passes checks.
func (c *Controller) valid() bool {
	v := c.Value()
	return v.IsPresent() && c.Validation().Valid
}

// CanGoForward reports whether Forward would be allowed.
func (c *Controller) CanGoForward() bool {
	if len(c.visible) == 0 {
		return false
	}
	if c.SkipPolicy() == catalog.SkipRequired {
		return c.valid()
	}
	return c.Validation().Valid || !c.Value().IsPresent()
}

// CanSkip reports whether Skip would be allowed.
func (c *Controller) CanSkip() bool {
	switch c.SkipPolicy() {
	case catalog.SkipSkippable:
		return len(c.visible) > 0
	case catalog.SkipOptional:
		return len(c.visible) > 0 && !c.Value().IsPresent()
	default:
		return false
	}
}

// ButtonState describes the forward button for the current step.
func (c *Controller) ButtonState() ButtonState {
	q, ok := c.Current()
	if !ok {
		return ButtonState{Label: "Next", Variant: VariantPrimary, Disabled: true}
	}
	v := c.Value()
	orig, had := c.initial.Get(q.ID)
	returning := had && orig.IsPresent() && v.Equal(orig)
	return buttonState(q.EffectiveSkipPolicy(), c.valid(), c.IsLast(), returning)
}

// Forward commits any pending edit for the current question and advances.
// Passing the last step invokes the completion callback.
func (c *Controller) Forward(ctx context.Context) (Outcome, error) {
	q, ok := c.Current()
	if !ok || !c.CanGoForward() {
		return Blocked, nil
	}
	if _, staged := c.pending[q.ID]; staged {
		res, err := c.commit(ctx, q)
		if err != nil {
			return Blocked, err
		}
		if !res.Valid {
			return Blocked, nil
		}
		// The commit may have changed which questions are visible.
		if !c.CanGoForward() {
			return Blocked, nil
		}
	}
	return c.advance(ctx)
}

// Skip advances past an optional or skippable question without writing.
// Any staged edit for the question is discarded.
func (c *Controller) Skip(ctx context.Context) (Outcome, error) {
	q, ok := c.Current()
	if !ok || !c.CanSkip() {
		return Blocked, nil
	}
	if _, staged := c.pending[q.ID]; staged {
		delete(c.pending, q.ID)
		c.refresh(q.ID)
	}
	return c.advance(ctx)
}

func (c *Controller) advance(ctx context.Context) (Outcome, error) {
	c.direction = DirectionForward
	if !c.IsLast() {
		c.index++
		return Moved, nil
	}
	if c.onComplete != nil {
		if err := c.onComplete(ctx, c.Answers()); err != nil {
			return Blocked, fmt.Errorf("complete: %w", err)
		}
	}
	c.completed = true
	return Completed, nil
}

// Back moves to the previous visible question.
func (c *Controller) Back() Outcome {
	if c.index == 0 {
		return Blocked
	}
	c.index--
	c.direction = DirectionBackward
	return Moved
}
