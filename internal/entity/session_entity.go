package entity

import "time"

type TurnRole string

const (
	TurnRoleUser TurnRole = "user"
	TurnRoleAI   TurnRole = "ai"
)

type Likelihood string

const (
	LikelihoodHigh   Likelihood = "High"
	LikelihoodMedium Likelihood = "Medium"
	LikelihoodLow    Likelihood = "Low"
)

const (
	MaxDiagnosisEntries   = 2
	MaxRecommendations    = 4
	DefaultSessionTitle   = "New consultation"
	ConsultDisclaimerText = "IMPORTANT: This AI analysis is not a substitute for professional medical advice. Please consult a healthcare provider."
)

type Turn struct {
	Role    TurnRole
	Content string
}

type DiagnosisEntry struct {
	Condition  string
	Likelihood Likelihood
	Reasoning  string
}

// Analysis is the four-field result of a sufficient message. The fields are
// always replaced together.
type Analysis struct {
	Symptoms        []string
	Diagnosis       []DiagnosisEntry
	Recommendations []string
	Report          string
}

// Session is an owner-scoped diagnostic conversation. Id is a 24-char hex
// ObjectID; it is empty for guest sessions, which are never stored.
type Session struct {
	Id           string
	UserId       string
	Analysis     *Analysis // nil until the first sufficient message
	Conversation []Turn
	Title        string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Session) IsPersisted() bool {
	return s.Id != ""
}

// Clone returns a deep copy so stores never share slices with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Conversation = append([]Turn(nil), s.Conversation...)
	if s.Analysis != nil {
		a := *s.Analysis
		a.Symptoms = append([]string{}, s.Analysis.Symptoms...)
		a.Diagnosis = append([]DiagnosisEntry{}, s.Analysis.Diagnosis...)
		a.Recommendations = append([]string{}, s.Analysis.Recommendations...)
		c.Analysis = &a
	}
	return &c
}

// SessionSummary is the History Listing projection.
type SessionSummary struct {
	Id        string
	Title     string
	CreatedAt time.Time
}
