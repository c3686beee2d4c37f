package diagnosis

import (
	"strings"

	"symptom-checker-be/internal/entity"
)

const titleWordLimit = 6

// Merge applies one validated result to the prior session and returns the
// next state. prior is not modified. A nil prior starts a new session for
// ownerId.
func Merge(prior *entity.Session, ownerId, userMessage string, res *Result) *entity.Session {
	var next *entity.Session
	if prior != nil {
		next = prior.Clone()
	} else {
		next = &entity.Session{UserId: ownerId}
	}

	if res.Analysis != nil {
		a := *res.Analysis
		next.Analysis = &a
	}

	next.Conversation = append(next.Conversation,
		entity.Turn{Role: entity.TurnRoleUser, Content: userMessage},
		entity.Turn{Role: entity.TurnRoleAI, Content: res.Reply},
	)

	if strings.TrimSpace(next.Title) == "" {
		next.Title = res.Title
	}
	if next.Title == "" {
		next.Title = TitleFromMessage(userMessage)
	}

	return next
}

// TitleFromMessage takes the first few words of msg.
func TitleFromMessage(msg string) string {
	words := strings.Fields(msg)
	if len(words) == 0 {
		return entity.DefaultSessionTitle
	}
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	return strings.Join(words, " ")
}
