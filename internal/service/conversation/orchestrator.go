package conversation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cqle/dba-virtual/backend/internal/analysis/failure"
	"github.com/cqle/dba-virtual/backend/internal/analysis/risk"
	"github.com/cqle/dba-virtual/backend/internal/logging"
	"github.com/cqle/dba-virtual/backend/internal/model/chat"
	"github.com/cqle/dba-virtual/backend/internal/service/ai"
	chatService "github.com/cqle/dba-virtual/backend/internal/service/chat"
	"github.com/cqle/dba-virtual/backend/internal/service/history"
	"github.com/cqle/dba-virtual/backend/internal/service/ratelimit"
)

var ErrMessageRequired = errors.New("message is required")

const deniedMessage = "Muitas requisições em pouco tempo. Aguarde alguns minutos antes de tentar novamente."

// Stage names the step a request stopped at.
type Stage string

const (
	StageAdmitting  Stage = "admitting"
	StageAssembling Stage = "assembling"
	StageInvoking   Stage = "invoking"
	StagePersisting Stage = "persisting"
	StageResponding Stage = "responding"
)

// Request is one inbound chat turn.
type Request struct {
	Message   string
	History   []chat.Turn
	SessionID string
	OwnerID   string
	ClientKey string
}

// Outcome is the terminal result of a request. Error is empty on success.
type Outcome struct {
	Status    int
	Result    string
	SessionID string
	Error     string
	Details   string
	Stage     Stage
}

// Succeeded reports whether generation produced a reply.
func (o Outcome) Succeeded() bool {
	return o.Error == ""
}

// Options tunes caller-visible diagnostics.
type Options struct {
	ExposeDetails bool
}

// Orchestrator runs admission, assembly, generation and best-effort persistence.
type Orchestrator struct {
	limiter   ratelimit.Limiter
	assembler *history.Assembler
	invoker   *ai.Invoker
	recorder  *chatService.Recorder
	opts      Options
}

// New wires the collaborators built once at process start.
func New(limiter ratelimit.Limiter, assembler *history.Assembler, invoker *ai.Invoker, recorder *chatService.Recorder, opts Options) *Orchestrator {
	if limiter == nil {
		limiter = ratelimit.Bypass{}
	}
	return &Orchestrator{
		limiter:   limiter,
		assembler: assembler,
		invoker:   invoker,
		recorder:  recorder,
		opts:      opts,
	}
}

// Validate rejects requests without a usable message.
func Validate(req Request) error {
	if strings.TrimSpace(req.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// Handle processes one request. It never returns an error: every failure is
// folded into the Outcome.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Outcome {
	logger := logging.Ctx(ctx).With().Str(logging.FieldOwner, req.OwnerID).Logger()

	if err := Validate(req); err != nil {
		return Outcome{Status: http.StatusBadRequest, Error: "O campo message é obrigatório.", Stage: StageAdmitting}
	}

	decision, err := o.limiter.Admit(ctx, req.ClientKey)
	if err != nil {
		logger.Warn().Err(err).Str("mode", o.limiter.Mode()).Msg("rate limiter unavailable, admitting request")
	} else if !decision.Allowed {
		logger.Info().Str(logging.FieldClientIP, req.ClientKey).Msg("request denied by rate limiter")
		return Outcome{Status: http.StatusTooManyRequests, Error: deniedMessage, Stage: StageAdmitting}
	}

	assembly := o.assembler.Assemble(req.History, req.Message)

	if !o.invoker.Ready() {
		logger.Error().Msg("generation backend not configured")
		return o.failed(failure.Unconfigured())
	}

	reply, err := o.invoker.Invoke(ctx, assembly.History, assembly.Prompt)
	if err != nil {
		raw, code := err.Error(), 0
		var genErr *ai.GenerationError
		if errors.As(err, &genErr) {
			raw, code = genErr.Message, genErr.Code
		}
		classified := failure.Classify(raw, code)
		logger.Error().
			Err(err).
			Int("code", code).
			Str(logging.FieldKind, string(classified.Kind)).
			Str(logging.FieldBackend, o.invoker.Backend()).
			Msg("generation failed")
		return o.failed(classified)
	}

	logRisk(logger, risk.Assess(req.Message, reply))

	out := Outcome{Status: http.StatusOK, Result: reply, SessionID: req.SessionID, Stage: StageResponding}
	if o.recorder == nil {
		return out
	}

	rec := o.recorder.Record(ctx, chatService.Exchange{
		SessionID:   req.SessionID,
		OwnerID:     req.OwnerID,
		UserMessage: req.Message,
		Reply:       reply,
	})
	if rec.Err != nil {
		logger.Error().Err(rec.Err).Str(logging.FieldSessionID, rec.SessionID).Msg("failed to persist exchange")
	}
	if rec.SessionID != "" {
		out.SessionID = rec.SessionID
	}
	return out
}

func (o *Orchestrator) failed(d failure.Decision) Outcome {
	out := Outcome{Status: d.StatusCode, Error: d.Message, Stage: StageInvoking}
	if o.opts.ExposeDetails {
		out.Details = string(d.Kind)
	}
	return out
}

func logRisk(logger zerolog.Logger, a risk.Assessment) {
	switch {
	case a.Unwarned():
		logger.Warn().Strs("statements", a.Statements).Msg("destructive request answered without danger marker")
	case a.Warned:
		logger.Info().Str("level", string(a.Level)).Msg("reply carries destructive statement warning")
	case a.Level != risk.None:
		logger.Debug().Str("level", string(a.Level)).Strs("statements", a.Statements).Msg("request touches data-changing statements")
	}
}
