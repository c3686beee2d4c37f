package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"symptom-checker-be/internal/model"
	"symptom-checker-be/internal/repository/unitofwork"
	"symptom-checker-be/pkg/database"
	"symptom-checker-be/pkg/events"
	"symptom-checker-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	sufficientReply = `{
  "symptoms": ["fever", "cough"],
  "diagnosis": [{"condition": "Influenza", "likelihood": "high", "reasoning": "Fever with cough."}],
  "recommendations": ["Rest", "Drink fluids"],
  "report": "Symptoms are consistent with influenza.",
  "conversation": [
    {"role": "user", "content": "I have a fever and a cough"},
    {"role": "ai", "content": "This looks like the flu."}
  ],
  "sessionTitle": "Fever and cough"
}`

	ambiguousReply = `{
  "symptoms": null,
  "diagnosis": null,
  "recommendations": null,
  "report": null,
  "conversation": [{"role": "ai", "content": "Can you describe what you are feeling?"}],
  "sessionTitle": "Feeling unwell"
}`

	followUpReply = `{
  "symptoms": ["fever", "cough", "headache"],
  "diagnosis": [
    {"condition": "Influenza", "likelihood": "High", "reasoning": "Fever, cough and headache."},
    {"condition": "Common cold", "likelihood": "Low", "reasoning": "Less likely with high fever."}
  ],
  "recommendations": ["Please consult a doctor if the fever lasts more than three days", "Rest"],
  "report": "Influenza remains the most likely cause.",
  "conversation": [{"role": "ai", "content": "Headache is common with the flu."}],
  "sessionTitle": "Something else"
}`
)

type llmStep struct {
	reply string
	err   error
}

// scriptedLLM answers Chat calls from a fixed script and records each call.
type scriptedLLM struct {
	mu      sync.Mutex
	steps   []llmStep
	calls   [][]llm.Message
	options []*llm.Options
	onCall  func()
	blockOn bool
}

func newScriptedLLM(steps ...llmStep) *scriptedLLM {
	return &scriptedLLM{steps: steps}
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]llm.Message(nil), messages...))
	s.options = append(s.options, llm.ApplyOptions(llm.Options{}, opts...))
	if s.onCall != nil {
		s.onCall()
	}
	if s.blockOn {
		s.mu.Unlock()
		<-ctx.Done()
		return "", ctx.Err()
	}
	defer s.mu.Unlock()

	if len(s.steps) == 0 {
		return "", fmt.Errorf("unexpected call %d", len(s.calls))
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.reply, step.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	db, err := database.NewSqliteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return unitofwork.NewRepositoryFactory(db)
}
