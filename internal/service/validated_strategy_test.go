package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperlens/internal/csvexport"
	"paperlens/internal/domain"
	"paperlens/internal/pacing"
	"paperlens/internal/port"
	"paperlens/internal/prompt"
	"paperlens/internal/service"
	"paperlens/internal/workspace"
	"paperlens/mocks"
)

type validatedFixture struct {
	layout   workspace.Layout
	llm      *mocks.MockLLMClient
	pacer    *mocks.MockPacer
	out      domain.OutputPair
	doc      domain.SourceDocument
	strategy *service.ValidatedStrategy
}

func newValidatedFixture(t *testing.T, validation bool) *validatedFixture {
	t.Helper()
	f := &validatedFixture{
		layout: testLayout(t),
		llm:    new(mocks.MockLLMClient),
		pacer:  new(mocks.MockPacer),
		out:    testOutputs(t, "GeminiOutput"),
	}
	f.doc = textDoc(f.layout, "paper")
	writeFile(t, f.doc.TextPath, "paper body")

	cfg := service.ValidatedConfig{
		SystemPrompt:      writePrompt(t, "system_prompt.txt", "SYS"),
		ValidationPrompt:  writePrompt(t, "validation_prompt.txt", "VAL"),
		Output:            f.out,
		IncludeThoughts:   true,
		ValidationEnabled: validation,
	}
	f.strategy = service.NewValidatedStrategy(f.llm, csvexport.NewSink(), prompt.NewFileStore(false), f.pacer, f.layout, cfg)
	return f
}

func (f *validatedFixture) expectInitial(reply string, err error) {
	input := port.GenerateInput{Prompt: prompt.BuildPaperPrompt("SYS", "paper body"), IncludeThoughts: true}
	if err != nil {
		f.llm.On("Generate", mock.Anything, input).Return(nil, err).Once()
		return
	}
	f.llm.On("Generate", mock.Anything, input).Return(&port.GenerateOutput{Text: reply}, nil).Once()
}

func (f *validatedFixture) expectValidation(initial, reply string, err error) {
	input := port.GenerateInput{Prompt: prompt.BuildValidationPrompt("VAL", "paper body", initial)}
	if err != nil {
		f.llm.On("Generate", mock.Anything, input).Return(nil, err).Once()
		return
	}
	f.llm.On("Generate", mock.Anything, input).Return(&port.GenerateOutput{Text: reply}, nil).Once()
}

func TestValidatedStrategy_Process_ValidatedReplySupersedes(t *testing.T) {
	f := newValidatedFixture(t, true)
	f.expectInitial("preliminary assessment", nil)
	f.expectValidation("preliminary assessment", "Final answer:\n"+testRecord, nil)
	f.pacer.On("Wait", mock.Anything).Return(nil).Once()

	outcome := f.strategy.Process(context.Background(), f.doc)

	assert.True(t, outcome.Archived)
	require.Len(t, outcome.Steps, 2)
	assert.Equal(t, domain.StepValidation, outcome.Steps[0].Step)
	assert.NoError(t, outcome.Steps[0].Err)
	assert.Equal(t, domain.RowFormatted, outcome.Steps[1].Row)

	recs, err := csvexport.ReadFormatted(f.out.Formatted)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, testRecord, recs[0].Line)

	assert.False(t, workspace.Exists(f.doc.TextPath))
	assert.True(t, workspace.Exists(filepath.Join(f.layout.ProcessedTexts, "paper.txt")))

	f.llm.AssertExpectations(t)
	f.pacer.AssertExpectations(t)
}

func TestValidatedStrategy_Process_FailedValidationKeepsInitial(t *testing.T) {
	f := newValidatedFixture(t, true)
	f.expectInitial("The paper looks sound.", nil)
	f.expectValidation("The paper looks sound.", "", errors.New("503 overloaded"))
	f.pacer.On("Wait", mock.Anything).Return(nil)

	outcome := f.strategy.Process(context.Background(), f.doc)

	assert.True(t, outcome.Archived)
	require.Len(t, outcome.Steps, 2)
	assert.Error(t, outcome.Steps[0].Err)
	assert.Equal(t, domain.RowUnformatted, outcome.Steps[1].Row)

	rows, err := csvexport.ReadUnformatted(f.out.Unformatted)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.FallbackRecord{Filename: "paper.txt", Raw: "The paper looks sound."}, rows[0])
}

func TestValidatedStrategy_Process_EmptyValidationKeepsInitial(t *testing.T) {
	f := newValidatedFixture(t, true)
	f.expectInitial(testRecord, nil)
	f.expectValidation(testRecord, "   ", nil)
	f.pacer.On("Wait", mock.Anything).Return(nil)

	outcome := f.strategy.Process(context.Background(), f.doc)

	assert.True(t, outcome.Archived)
	assert.ErrorIs(t, outcome.Steps[0].Err, domain.ErrNoReply)

	recs, err := csvexport.ReadFormatted(f.out.Formatted)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, testRecord, recs[0].Line)
}

func TestValidatedStrategy_Process_InitialFailureWritesNothing(t *testing.T) {
	f := newValidatedFixture(t, true)
	f.expectInitial("", errors.New("connection reset"))

	outcome := f.strategy.Process(context.Background(), f.doc)

	assert.False(t, outcome.Archived)
	require.Len(t, outcome.Steps, 1)
	assert.Error(t, outcome.Steps[0].Err)
	assert.True(t, workspace.Exists(f.doc.TextPath))
	assert.False(t, workspace.Exists(f.out.Formatted))
	assert.False(t, workspace.Exists(f.out.Unformatted))

	f.pacer.AssertNotCalled(t, "Wait", mock.Anything)
	f.llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestValidatedStrategy_Process_EmptyInitialWritesNothing(t *testing.T) {
	f := newValidatedFixture(t, true)
	f.expectInitial("", nil)

	outcome := f.strategy.Process(context.Background(), f.doc)

	assert.False(t, outcome.Archived)
	assert.ErrorIs(t, outcome.Steps[0].Err, domain.ErrNoReply)
	assert.True(t, workspace.Exists(f.doc.TextPath))
	assert.False(t, workspace.Exists(f.out.Unformatted))
}

func TestValidatedStrategy_Process_ValidationDisabled(t *testing.T) {
	f := newValidatedFixture(t, false)
	f.expectInitial(testRecord, nil)

	outcome := f.strategy.Process(context.Background(), f.doc)

	assert.True(t, outcome.Archived)
	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, domain.RowFormatted, outcome.Steps[0].Row)
	f.pacer.AssertNotCalled(t, "Wait", mock.Anything)
	f.llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestValidatedStrategy_Process_MissingSystemPrompt(t *testing.T) {
	layout := testLayout(t)
	llm := new(mocks.MockLLMClient)
	doc := textDoc(layout, "paper")
	writeFile(t, doc.TextPath, "paper body")

	strategy := service.NewValidatedStrategy(llm, csvexport.NewSink(), prompt.NewFileStore(false), new(mocks.MockPacer), layout,
		service.ValidatedConfig{
			SystemPrompt: filepath.Join(t.TempDir(), "missing.txt"),
			Output:       testOutputs(t, "GeminiOutput"),
		})

	outcome := strategy.Process(context.Background(), doc)

	assert.False(t, outcome.Archived)
	assert.ErrorIs(t, outcome.Steps[0].Err, domain.ErrPromptUnavailable)
	assert.True(t, workspace.Exists(doc.TextPath))
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestValidatedStrategy_Metadata(t *testing.T) {
	f := newValidatedFixture(t, true)

	assert.Equal(t, domain.StrategyValidated, f.strategy.Name())
	assert.True(t, f.strategy.ArchivesPDFOnConversion())
	assert.NoError(t, f.strategy.Prepare(context.Background()))
}

func TestValidatedStrategy_Process_ReadsPromptsAtPointOfUse(t *testing.T) {
	layout := testLayout(t)
	llm := new(mocks.MockLLMClient)
	prompts := new(mocks.MockPromptStore)
	pacer := new(mocks.MockPacer)
	out := testOutputs(t, "GeminiOutput")

	strategy := service.NewValidatedStrategy(llm, csvexport.NewSink(), prompts, pacer, layout, service.ValidatedConfig{
		SystemPrompt:      "system_prompt.txt",
		ValidationPrompt:  "validation_prompt.txt",
		Output:            out,
		ValidationEnabled: true,
	})

	prompts.On("Load", "system_prompt.txt").Return("SYS", nil).Twice()
	prompts.On("Load", "validation_prompt.txt").Return("VAL", nil).Twice()
	pacer.On("Wait", mock.Anything).Return(nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return(&port.GenerateOutput{Text: testRecord}, nil)

	for _, stem := range []string{"a", "b"} {
		doc := textDoc(layout, stem)
		writeFile(t, doc.TextPath, stem+" body")
		outcome := strategy.Process(context.Background(), doc)
		assert.True(t, outcome.Archived)
	}

	recs, err := csvexport.ReadFormatted(out.Formatted)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	prompts.AssertExpectations(t)
	llm.AssertNumberOfCalls(t, "Generate", 4)
}

func TestValidatedStrategy_Process_LimiterSpacesValidation(t *testing.T) {
	layout := testLayout(t)
	llm := new(mocks.MockLLMClient)
	doc := textDoc(layout, "paper")
	writeFile(t, doc.TextPath, "paper body")
	interval := 200 * time.Millisecond

	strategy := service.NewValidatedStrategy(llm, csvexport.NewSink(), prompt.NewFileStore(false), pacing.NewLimiter(interval), layout,
		service.ValidatedConfig{
			SystemPrompt:      writePrompt(t, "system_prompt.txt", "SYS"),
			ValidationPrompt:  writePrompt(t, "validation_prompt.txt", "VAL"),
			Output:            testOutputs(t, "GeminiOutput"),
			ValidationEnabled: true,
		})

	var calls []time.Time
	llm.On("Generate", mock.Anything, mock.Anything).
		Run(func(_ mock.Arguments) { calls = append(calls, time.Now()) }).
		Return(&port.GenerateOutput{Text: testRecord}, nil)

	outcome := strategy.Process(context.Background(), doc)

	assert.True(t, outcome.Archived)
	require.Len(t, calls, 2)
	assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), interval*3/4)
}
