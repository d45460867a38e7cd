package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examtools/examconv/internal/llm"
	"github.com/examtools/examconv/internal/signal"
)

// fakeCaller replays a scripted sequence of model replies and records the
// prompts it was asked with.
type fakeCaller struct {
	replies []callReply
	calls   int
	prompts []string
}

type callReply struct {
	parsed map[string]any
	raw    string
	err    error
}

func (f *fakeCaller) Call(ctx context.Context, systemPrompt, userPrompt, model string) (map[string]any, string, error) {
	f.prompts = append(f.prompts, userPrompt)
	if f.calls >= len(f.replies) {
		panic("fakeCaller: unscripted call")
	}
	r := f.replies[f.calls]
	f.calls++
	return r.parsed, r.raw, r.err
}

func validParsed() map[string]any {
	return map[string]any{
		"category": "History",
		"questions": []any{map[string]any{
			"number":                 1,
			"title":                  "When?",
			"options":                []any{"a", "b", "c", "d"},
			"correct_index":          0,
			"detected_answer_method": "inferred",
			"warnings":               []any{},
			"source_refs":            []any{},
		}},
	}
}

func testSignals() []signal.DocumentSignal {
	return []signal.DocumentSignal{{
		SourceFilename: "exam.txt",
		ContentType:    signal.ContentTXT,
		Units:          []signal.TextUnit{{Index: 0, Text: "Q1: When?"}},
	}}
}

func TestParse_FirstAttemptValid(t *testing.T) {
	caller := &fakeCaller{replies: []callReply{
		{parsed: validParsed(), raw: `{"ok":1}`},
	}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	outcome, err := o.Parse(context.Background(), testSignals(), "History", "gpt-5-mini")
	require.NoError(t, err)

	assert.Empty(t, outcome.Errors)
	assert.Equal(t, 1, caller.calls)
	assert.Equal(t, []string{`{"ok":1}`}, outcome.RawOutputs)
	assert.Contains(t, caller.prompts[0], "Category: History")
}

func TestParse_RepairsInvalidOutput(t *testing.T) {
	invalid := map[string]any{"category": "History", "questions": []any{}}
	caller := &fakeCaller{replies: []callReply{
		{parsed: invalid, raw: "attempt-1"},
		{parsed: validParsed(), raw: "attempt-2"},
	}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	outcome, err := o.Parse(context.Background(), testSignals(), "History", "m")
	require.NoError(t, err)

	assert.Empty(t, outcome.Errors)
	assert.Equal(t, 2, caller.calls)
	assert.Equal(t, []string{"attempt-1", "attempt-2"}, outcome.RawOutputs)
	// The second call carries the validator's findings back to the model.
	assert.Contains(t, caller.prompts[1], "did not pass validation")
	assert.Contains(t, caller.prompts[1], "questions must be a non-empty array.")
}

func TestParse_RepairCeilingNotFatal(t *testing.T) {
	invalid := func() map[string]any {
		return map[string]any{"category": "x", "questions": []any{}}
	}
	caller := &fakeCaller{replies: []callReply{
		{parsed: invalid(), raw: "r1"},
		{parsed: invalid(), raw: "r2"},
		{parsed: invalid(), raw: "r3"},
	}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	outcome, err := o.Parse(context.Background(), testSignals(), "x", "m")
	require.NoError(t, err)

	// Initial call plus two repairs, then the loop gives up with errors kept.
	assert.Equal(t, 3, caller.calls)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "questions must be a non-empty array.", outcome.Errors[0])
	assert.Equal(t, []string{"r1", "r2", "r3"}, outcome.RawOutputs)
}

func TestParse_GatewayErrorPropagates(t *testing.T) {
	caller := &fakeCaller{replies: []callReply{
		{err: &llm.InvocationError{Message: "connection refused"}},
	}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	_, err := o.Parse(context.Background(), testSignals(), "x", "m")
	var invErr *llm.InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestParse_GatewayErrorDuringRepair(t *testing.T) {
	caller := &fakeCaller{replies: []callReply{
		{parsed: map[string]any{"category": "x", "questions": []any{}}, raw: "r1"},
		{err: &llm.InvocationError{Message: "timeout"}},
	}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	_, err := o.Parse(context.Background(), testSignals(), "x", "m")
	require.Error(t, err)
	assert.Equal(t, 2, caller.calls)
}

func TestParse_NormalizesBeforeValidation(t *testing.T) {
	// Prefixed titles and options would fail nothing structurally, but the
	// normalization must land before rows are derived downstream.
	parsed := validParsed()
	q := parsed["questions"].([]any)[0].(map[string]any)
	q["title"] = "Q1: When?"
	q["options"] = []any{"A. a", "B. b", "C. c", "D. d"}

	caller := &fakeCaller{replies: []callReply{{parsed: parsed, raw: "r"}}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	outcome, err := o.Parse(context.Background(), testSignals(), "x", "m")
	require.NoError(t, err)

	got := outcome.Parsed["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, "When?", got["title"])
	assert.Equal(t, []any{"a", "b", "c", "d"}, got["options"])
}

func TestParse_ZeroRepairBudget(t *testing.T) {
	caller := &fakeCaller{replies: []callReply{
		{parsed: map[string]any{"category": "x", "questions": []any{}}, raw: "r1"},
	}}
	o := NewOrchestrator(caller, nil, 0)

	outcome, err := o.Parse(context.Background(), testSignals(), "x", "m")
	require.NoError(t, err)
	assert.Equal(t, 1, caller.calls)
	assert.NotEmpty(t, outcome.Errors)
}

func TestParse_PromptEmbedsSignal(t *testing.T) {
	caller := &fakeCaller{replies: []callReply{{parsed: validParsed(), raw: "r"}}}
	o := NewOrchestrator(caller, nil, MaxRepairAttempts)

	_, err := o.Parse(context.Background(), testSignals(), "History", "m")
	require.NoError(t, err)
	require.Len(t, caller.prompts, 1)
	assert.True(t, strings.Contains(caller.prompts[0], "Q1: When?"))
}
