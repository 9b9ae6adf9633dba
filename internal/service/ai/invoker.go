package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

var ErrEmptyResponse = errors.New("generation returned empty text")

// Generator is one generation backend. Each call is a single attempt.
type Generator interface {
	Generate(ctx context.Context, history []chat.Entry, prompt string) (string, error)
	Name() string
}

// GenerationError carries the backend's raw message and, when known, its
// numeric status code. Code is 0 when absent.
type GenerationError struct {
	Message string
	Code    int
	Err     error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Err }

// statusCoder is implemented by backend errors that know their HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Invoker wraps a Generator with a per-attempt deadline and the empty-text guard.
type Invoker struct {
	gen     Generator
	timeout time.Duration
}

// NewInvoker creates an invoker. gen may be nil when no backend is configured.
func NewInvoker(gen Generator, timeout time.Duration) *Invoker {
	return &Invoker{gen: gen, timeout: timeout}
}

// Ready reports whether a backend is wired.
func (i *Invoker) Ready() bool {
	return i != nil && i.gen != nil
}

// Backend names the wired backend.
func (i *Invoker) Backend() string {
	if !i.Ready() {
		return "none"
	}
	return i.gen.Name()
}

// Invoke runs one generation. Failures are always *GenerationError.
func (i *Invoker) Invoke(ctx context.Context, history []chat.Entry, prompt string) (string, error) {
	callCtx, cancel := i.withTimeout(ctx)
	defer cancel()

	text, err := i.gen.Generate(callCtx, history, prompt)
	if err != nil {
		return "", newGenerationError(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", newGenerationError(ErrEmptyResponse)
	}
	return text, nil
}

func (i *Invoker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || i.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, i.timeout)
}

func newGenerationError(err error) *GenerationError {
	ge := &GenerationError{Message: err.Error(), Err: err}
	var sc statusCoder
	if errors.As(err, &sc) {
		ge.Code = sc.StatusCode()
	}
	return ge
}
