package diagnosis

import (
	"encoding/json"
	"fmt"
	"strings"

	"symptom-checker-be/internal/constant"
	"symptom-checker-be/internal/entity"
	"symptom-checker-be/pkg/llm"
)

type priorState struct {
	Symptoms        []string       `json:"symptoms"`
	Diagnosis       []rawDiagnosis `json:"diagnosis"`
	Recommendations []string       `json:"recommendations"`
	Report          string         `json:"report"`
}

// BuildPrompt embeds the prior analysis, the tail of the conversation and the
// new message into the diagnosis template.
func BuildPrompt(prior *entity.Session, userMessage string) (string, error) {
	state := "null"
	recent := "(none)"

	if prior != nil {
		if prior.Analysis != nil {
			ps := priorState{
				Symptoms:        prior.Analysis.Symptoms,
				Recommendations: prior.Analysis.Recommendations,
				Report:          prior.Analysis.Report,
			}
			for _, d := range prior.Analysis.Diagnosis {
				ps.Diagnosis = append(ps.Diagnosis, rawDiagnosis{
					Condition:  d.Condition,
					Likelihood: string(d.Likelihood),
					Reasoning:  d.Reasoning,
				})
			}
			b, err := json.MarshalIndent(ps, "", "  ")
			if err != nil {
				return "", fmt.Errorf("marshal prior state: %w", err)
			}
			state = string(b)
		}
		if lines := recentTurns(prior.Conversation, constant.DiagnosisRecentTurnLimit); lines != "" {
			recent = lines
		}
	}

	return fmt.Sprintf(constant.DiagnosisPrompt, state, recent, userMessage), nil
}

// CorrectionHistory extends a failed exchange with a re-prompt naming the
// parse error.
func CorrectionHistory(history []llm.Message, rawReply string, parseErr error) []llm.Message {
	next := make([]llm.Message, 0, len(history)+2)
	next = append(next, history...)
	next = append(next,
		llm.Message{Role: llm.RoleAssistant, Content: rawReply},
		llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(constant.DiagnosisFormatCorrectionPrompt, parseErr.Error())},
	)
	return next
}

func recentTurns(turns []entity.Turn, limit int) string {
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString(string(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
