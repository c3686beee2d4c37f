package diagnosis

import (
	"testing"
	"time"

	"symptom-checker-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priorSession() *entity.Session {
	return &entity.Session{
		Id:     "65a1b2c3d4e5f60718293a4b",
		UserId: "user-1",
		Analysis: &entity.Analysis{
			Symptoms:        []string{"Cough"},
			Diagnosis:       []entity.DiagnosisEntry{{Condition: "Bronchitis", Likelihood: entity.LikelihoodMedium}},
			Recommendations: []string{entity.ConsultDisclaimerText},
			Report:          "Possibly bronchitis.",
		},
		Conversation: []entity.Turn{
			{Role: entity.TurnRoleUser, Content: "I cough a lot"},
			{Role: entity.TurnRoleAI, Content: "Could be bronchitis."},
		},
		Title:     "Persistent cough",
		Version:   3,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMerge_NewSession(t *testing.T) {
	res := &Result{Reply: "What symptoms do you have?", Title: ""}

	next := Merge(nil, "user-9", "I don't feel well today at all honestly", res)

	assert.Equal(t, "user-9", next.UserId)
	assert.Nil(t, next.Analysis)
	require.Len(t, next.Conversation, 2)
	assert.Equal(t, entity.TurnRoleUser, next.Conversation[0].Role)
	assert.Equal(t, "I don't feel well today at all honestly", next.Conversation[0].Content)
	assert.Equal(t, entity.TurnRoleAI, next.Conversation[1].Role)
	assert.Equal(t, "I don't feel well today at", next.Title)
}

func TestMerge_CarriesAnalysisForward(t *testing.T) {
	prior := priorSession()

	next := Merge(prior, "ignored", "and?", &Result{Reply: "How long has it lasted?", Title: "Other"})

	assert.Equal(t, prior.Analysis, next.Analysis)
	assert.Len(t, next.Conversation, 4)
	assert.Equal(t, "Persistent cough", next.Title)
	assert.Equal(t, "user-1", next.UserId)
	assert.Equal(t, int64(3), next.Version)
	// prior untouched
	assert.Len(t, prior.Conversation, 2)
}

func TestMerge_ReplacesAnalysisTogether(t *testing.T) {
	prior := priorSession()
	replacement := &entity.Analysis{
		Symptoms:        []string{"Cough", "Chills"},
		Diagnosis:       []entity.DiagnosisEntry{{Condition: "Pneumonia", Likelihood: entity.LikelihoodHigh}},
		Recommendations: []string{entity.ConsultDisclaimerText, "Rest"},
		Report:          "Likely pneumonia.",
	}

	next := Merge(prior, "user-1", "it's worse now, I also have chills", &Result{Analysis: replacement, Reply: "Worse."})

	require.NotNil(t, next.Analysis)
	assert.Equal(t, *replacement, *next.Analysis)
	assert.Equal(t, "Bronchitis", prior.Analysis.Diagnosis[0].Condition)
	assert.Len(t, next.Conversation, len(prior.Conversation)+2)
}

func TestTitleFromMessage(t *testing.T) {
	assert.Equal(t, entity.DefaultSessionTitle, TitleFromMessage("   "))
	assert.Equal(t, "sore throat", TitleFromMessage("  sore   throat "))
}
