package mapper

import (
	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(d *model.SessionDocument) *entity.Session {
	if d == nil {
		return nil
	}

	s := &entity.Session{
		UserId:       d.UserId,
		Conversation: make([]entity.Turn, 0, len(d.Conversation)),
		Title:        d.SessionTitle,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if !d.Id.IsZero() {
		s.Id = d.Id.Hex()
	}
	for _, t := range d.Conversation {
		s.Conversation = append(s.Conversation, entity.Turn{
			Role:    entity.TurnRole(t.Role),
			Content: t.Content,
		})
	}

	if d.Report != nil {
		a := &entity.Analysis{
			Symptoms:        append([]string{}, d.Symptoms...),
			Diagnosis:       make([]entity.DiagnosisEntry, 0, len(d.Diagnosis)),
			Recommendations: append([]string{}, d.Recommendations...),
			Report:          *d.Report,
		}
		for _, dg := range d.Diagnosis {
			a.Diagnosis = append(a.Diagnosis, entity.DiagnosisEntry{
				Condition:  dg.Condition,
				Likelihood: entity.Likelihood(dg.Likelihood),
				Reasoning:  dg.Reasoning,
			})
		}
		s.Analysis = a
	}

	return s
}

// ToDocument maps an entity to its stored shape. An invalid or empty Id
// yields a zero ObjectID, which the insert path replaces.
func (m *SessionMapper) ToDocument(s *entity.Session) *model.SessionDocument {
	if s == nil {
		return nil
	}

	d := &model.SessionDocument{
		UserId:       s.UserId,
		Conversation: make([]model.TurnDocument, 0, len(s.Conversation)),
		SessionTitle: s.Title,
		Version:      s.Version,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(s.Id); err == nil {
		d.Id = oid
	}
	for _, t := range s.Conversation {
		d.Conversation = append(d.Conversation, model.TurnDocument{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}

	if s.Analysis != nil {
		report := s.Analysis.Report
		d.Report = &report
		d.Symptoms = append([]string{}, s.Analysis.Symptoms...)
		d.Recommendations = append([]string{}, s.Analysis.Recommendations...)
		d.Diagnosis = make([]model.DiagnosisDocument, 0, len(s.Analysis.Diagnosis))
		for _, dg := range s.Analysis.Diagnosis {
			d.Diagnosis = append(d.Diagnosis, model.DiagnosisDocument{
				Condition:  dg.Condition,
				Likelihood: string(dg.Likelihood),
				Reasoning:  dg.Reasoning,
			})
		}
	}

	return d
}

func (m *SessionMapper) SummaryToEntity(d *model.SessionSummaryDocument) *entity.SessionSummary {
	if d == nil {
		return nil
	}
	return &entity.SessionSummary{
		Id:        d.Id.Hex(),
		Title:     d.SessionTitle,
		CreatedAt: d.CreatedAt,
	}
}
