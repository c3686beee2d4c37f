package mapper

import (
	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/entity"
)

func (m *SessionMapper) ToResponse(s *entity.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}

	res := &dto.SessionResponse{
		Id:           s.Id,
		UserId:       s.UserId,
		Conversation: make([]dto.TurnResponse, 0, len(s.Conversation)),
		SessionTitle: s.Title,
		Version:      s.Version,
	}
	if s.IsPersisted() {
		createdAt, updatedAt := s.CreatedAt, s.UpdatedAt
		res.CreatedAt = &createdAt
		res.UpdatedAt = &updatedAt
	}
	for _, t := range s.Conversation {
		res.Conversation = append(res.Conversation, dto.TurnResponse{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}

	if a := s.Analysis; a != nil {
		report := a.Report
		res.Report = &report
		res.Symptoms = append([]string{}, a.Symptoms...)
		res.Recommendations = append([]string{}, a.Recommendations...)
		res.Diagnosis = make([]dto.DiagnosisResponse, 0, len(a.Diagnosis))
		for _, d := range a.Diagnosis {
			res.Diagnosis = append(res.Diagnosis, dto.DiagnosisResponse{
				Condition:  d.Condition,
				Likelihood: string(d.Likelihood),
				Reasoning:  d.Reasoning,
			})
		}
	}

	return res
}

func (m *SessionMapper) ToHistoryItems(summaries []*entity.SessionSummary) []dto.HistoryItem {
	items := make([]dto.HistoryItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, dto.HistoryItem{
			Id:    s.Id,
			Title: s.Title,
			Date:  s.CreatedAt,
		})
	}
	return items
}
