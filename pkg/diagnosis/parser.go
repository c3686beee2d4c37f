package diagnosis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"symptom-checker-be/internal/entity"
)

// ErrMalformed is the root of every parse failure.
var ErrMalformed = errors.New("malformed analysis response")

type rawDiagnosis struct {
	Condition  string `json:"condition"`
	Likelihood string `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

type rawTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Pointers distinguish null (carry forward) from an empty list.
type rawResult struct {
	Symptoms        *[]string       `json:"symptoms"`
	Diagnosis       *[]rawDiagnosis `json:"diagnosis"`
	Recommendations *[]string       `json:"recommendations"`
	Report          *string         `json:"report"`
	Conversation    []rawTurn       `json:"conversation"`
	SessionTitle    string          `json:"sessionTitle"`
}

// Result is one validated upstream answer.
type Result struct {
	Analysis *entity.Analysis // nil means carry the prior analysis forward
	Reply    string
	Title    string
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// ExtractJSON returns the substring between the first '{' and the last '}'.
func ExtractJSON(text string) (string, error) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return "", malformed("no JSON object found")
	}
	return text[first : last+1], nil
}

// Parse validates raw model output against the result schema and normalizes it.
func Parse(text string) (*Result, error) {
	body, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()

	var raw rawResult
	if err := dec.Decode(&raw); err != nil {
		return nil, malformed("decode: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed("trailing data after JSON object")
	}

	analysis, err := normalizeAnalysis(&raw)
	if err != nil {
		return nil, err
	}

	reply, err := aiReply(raw.Conversation)
	if err != nil {
		return nil, err
	}

	return &Result{
		Analysis: analysis,
		Reply:    reply,
		Title:    strings.TrimSpace(raw.SessionTitle),
	}, nil
}

func normalizeAnalysis(raw *rawResult) (*entity.Analysis, error) {
	present := 0
	for _, set := range []bool{raw.Symptoms != nil, raw.Diagnosis != nil, raw.Recommendations != nil, raw.Report != nil} {
		if set {
			present++
		}
	}
	switch present {
	case 0:
		return nil, nil
	case 4:
	default:
		return nil, malformed("symptoms, diagnosis, recommendations and report must be set together (%d of 4 present)", present)
	}

	report := strings.TrimSpace(*raw.Report)
	if report == "" {
		return nil, malformed("report is empty")
	}

	diagnosis := make([]entity.DiagnosisEntry, 0, entity.MaxDiagnosisEntries)
	for i, d := range *raw.Diagnosis {
		condition := strings.TrimSpace(d.Condition)
		if condition == "" {
			return nil, malformed("diagnosis[%d].condition is empty", i)
		}
		likelihood, ok := ParseLikelihood(d.Likelihood)
		if !ok {
			return nil, malformed("diagnosis[%d].likelihood %q is not High, Medium or Low", i, d.Likelihood)
		}
		diagnosis = append(diagnosis, entity.DiagnosisEntry{
			Condition:  condition,
			Likelihood: likelihood,
			Reasoning:  strings.TrimSpace(d.Reasoning),
		})
	}
	if len(diagnosis) == 0 {
		return nil, malformed("diagnosis is empty")
	}
	if len(diagnosis) > entity.MaxDiagnosisEntries {
		diagnosis = diagnosis[:entity.MaxDiagnosisEntries]
	}

	return &entity.Analysis{
		Symptoms:        compact(*raw.Symptoms),
		Diagnosis:       diagnosis,
		Recommendations: normalizeRecommendations(*raw.Recommendations),
		Report:          report,
	}, nil
}

// ParseLikelihood matches High/Medium/Low case-insensitively.
func ParseLikelihood(s string) (entity.Likelihood, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return entity.LikelihoodHigh, true
	case "medium":
		return entity.LikelihoodMedium, true
	case "low":
		return entity.LikelihoodLow, true
	}
	return "", false
}

func normalizeRecommendations(in []string) []string {
	recs := compact(in)
	if len(recs) == 0 || !IsDisclaimer(recs[0]) {
		recs = append([]string{entity.ConsultDisclaimerText}, recs...)
	}
	if len(recs) > entity.MaxRecommendations {
		recs = recs[:entity.MaxRecommendations]
	}
	return recs
}

// IsDisclaimer reports whether s tells the reader to see a professional.
func IsDisclaimer(s string) bool {
	l := strings.ToLower(s)
	if !strings.Contains(l, "consult") {
		return false
	}
	for _, who := range []string{"professional", "doctor", "physician", "healthcare", "medical"} {
		if strings.Contains(l, who) {
			return true
		}
	}
	return false
}

func aiReply(turns []rawTurn) (string, error) {
	reply := ""
	for i, t := range turns {
		switch strings.ToLower(strings.TrimSpace(t.Role)) {
		case "user":
		case "ai", "assistant", "model":
			reply = strings.TrimSpace(t.Content)
		default:
			return "", malformed("conversation[%d].role %q is not user or ai", i, t.Role)
		}
	}
	if reply == "" {
		return "", malformed("conversation has no ai turn")
	}
	return reply, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
