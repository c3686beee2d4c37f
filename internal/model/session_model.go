package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const SessionCollection = "sessions"

type TurnDocument struct {
	Role    string `bson:"role"`
	Content string `bson:"content"`
}

type DiagnosisDocument struct {
	Condition  string `bson:"condition"`
	Likelihood string `bson:"likelihood"`
	Reasoning  string `bson:"reasoning"`
}

// SessionDocument is the stored shape of a session. The analysis fields are
// null until the first sufficient message; Report doubles as the marker.
type SessionDocument struct {
	Id              primitive.ObjectID  `bson:"_id,omitempty"`
	UserId          string              `bson:"userId"`
	Symptoms        []string            `bson:"symptoms"`
	Diagnosis       []DiagnosisDocument `bson:"diagnosis"`
	Recommendations []string            `bson:"recommendations"`
	Report          *string             `bson:"report"`
	Conversation    []TurnDocument      `bson:"conversation"`
	SessionTitle    string              `bson:"sessionTitle"`
	Version         int64               `bson:"version"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
}

// SessionSummaryDocument is decoded from a projection of SessionDocument.
type SessionSummaryDocument struct {
	Id           primitive.ObjectID `bson:"_id"`
	SessionTitle string             `bson:"sessionTitle"`
	CreatedAt    time.Time          `bson:"createdAt"`
}
