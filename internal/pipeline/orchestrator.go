// Package pipeline drives the call -> validate -> repair cycle and owns the
// session-scoped state of one interactive conversion.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/examtools/examconv/internal/llm"
	"github.com/examtools/examconv/internal/question"
	"github.com/examtools/examconv/internal/signal"
)

// MaxRepairAttempts bounds the automatic repair loop. Each attempt re-invokes
// the model seeded with the previous output and its validation errors.
const MaxRepairAttempts = 2

// Caller is the model gateway dependency.
type Caller interface {
	Call(ctx context.Context, systemPrompt, userPrompt, model string) (map[string]any, string, error)
}

// Orchestrator runs the parse state machine to completion.
type Orchestrator struct {
	caller     Caller
	log        *slog.Logger
	maxRepairs int
}

func NewOrchestrator(caller Caller, log *slog.Logger, maxRepairs int) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if maxRepairs < 0 {
		maxRepairs = MaxRepairAttempts
	}
	return &Orchestrator{caller: caller, log: log, maxRepairs: maxRepairs}
}

// Outcome is the terminal state of one parse. A non-empty Errors list is not
// fatal; it blocks export until the errors clear. RawOutputs holds one entry
// per model attempt, in order, for diagnostics.
type Outcome struct {
	Parsed     map[string]any
	Errors     []string
	RawOutputs []string
}

// Parse builds prompts once from the signals, invokes the model, normalizes
// the returned question fields before validation, and repairs up to the
// attempt ceiling. Gateway failures propagate and abort the round.
func (o *Orchestrator) Parse(ctx context.Context, signals []signal.DocumentSignal, category, model string) (*Outcome, error) {
	systemPrompt := llm.BuildSystemPrompt()
	userPrompt := llm.BuildUserPrompt(signals, category)

	parsed, rawText, err := o.caller.Call(ctx, systemPrompt, userPrompt, model)
	if err != nil {
		return nil, err
	}
	question.NormalizeRawQuestions(parsed)
	rawOutputs := []string{rawText}

	errors := question.Validate(parsed)
	attempts := 0
	for len(errors) > 0 && attempts < o.maxRepairs {
		attempts++
		o.log.Info("parse.repair", "attempt", attempts, "errors", len(errors))

		repairPrompt := llm.BuildRepairPrompt(parsed, errors)
		parsed, rawText, err = o.caller.Call(ctx, systemPrompt, repairPrompt, model)
		if err != nil {
			return nil, err
		}
		question.NormalizeRawQuestions(parsed)
		rawOutputs = append(rawOutputs, rawText)
		errors = question.Validate(parsed)
	}

	o.log.Info("parse.done", "attempts", attempts+1, "errors", len(errors))
	return &Outcome{Parsed: parsed, Errors: errors, RawOutputs: rawOutputs}, nil
}
