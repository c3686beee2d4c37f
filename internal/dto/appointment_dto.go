package dto

import "time"

type AnalyzeRequest struct {
	UserInput string `json:"userInput" validate:"required,max=4000"`
	SessionId string `json:"sessionId"`
}

type TurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DiagnosisResponse struct {
	Condition  string `json:"condition"`
	Likelihood string `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

// SessionResponse is the full session record. The four analysis fields are
// null until the first sufficient message; guests get no _id or timestamps.
type SessionResponse struct {
	Id              string              `json:"_id,omitempty"`
	UserId          string              `json:"userId,omitempty"`
	Symptoms        []string            `json:"symptoms"`
	Diagnosis       []DiagnosisResponse `json:"diagnosis"`
	Recommendations []string            `json:"recommendations"`
	Report          *string             `json:"report"`
	Conversation    []TurnResponse      `json:"conversation"`
	SessionTitle    string              `json:"sessionTitle"`
	Version         int64               `json:"version,omitempty"`
	CreatedAt       *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time          `json:"updatedAt,omitempty"`
}

type HistoryItem struct {
	Id    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}
