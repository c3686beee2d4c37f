package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newSession(owner, title string) *entity.Session {
	return &entity.Session{
		UserId: owner,
		Conversation: []entity.Turn{
			{Role: entity.TurnRoleUser, Content: "hello"},
			{Role: entity.TurnRoleAI, Content: "what hurts?"},
		},
		Title: title,
	}
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	clock := &tickingClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository().WithClock(clock.Now)

	s := newSession("u1", "Headache")
	require.NoError(t, repo.Create(ctx, s))

	assert.Len(t, s.Id, 24)
	assert.Equal(t, int64(1), s.Version)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	found, err := repo.FindById(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, s, found)

	// returned copies are detached from the store
	found.Conversation[0].Content = "changed"
	again, _ := repo.FindById(ctx, s.Id)
	assert.Equal(t, "hello", again.Conversation[0].Content)

	missing, err := repo.FindById(ctx, "000000000000000000000000")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository_UpdateCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	clock := &tickingClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository().WithClock(clock.Now)

	s := newSession("u1", "Headache")
	require.NoError(t, repo.Create(ctx, s))
	createdAt := s.CreatedAt

	first, _ := repo.FindById(ctx, s.Id)
	second, _ := repo.FindById(ctx, s.Id)

	first.Conversation = append(first.Conversation, entity.Turn{Role: entity.TurnRoleUser, Content: "a"}, entity.Turn{Role: entity.TurnRoleAI, Content: "b"})
	first.UserId = "someone-else"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)
	assert.Equal(t, "u1", first.UserId)
	assert.Equal(t, createdAt, first.CreatedAt)
	assert.True(t, first.UpdatedAt.After(createdAt))

	second.Title = "lost"
	err := repo.Update(ctx, second)
	assert.ErrorIs(t, err, contract.ErrSessionVersionConflict)

	stored, _ := repo.FindById(ctx, s.Id)
	assert.Equal(t, "Headache", stored.Title)
	assert.Len(t, stored.Conversation, 4)

	ghost := newSession("u1", "x")
	ghost.Id = "65a1b2c3d4e5f60718293a4b"
	assert.ErrorIs(t, repo.Update(ctx, ghost), contract.ErrSessionNotFound)
}

func TestSessionRepository_ListByUserId(t *testing.T) {
	ctx := context.Background()
	clock := &tickingClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository().WithClock(clock.Now)

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, newSession("u1", title)))
	}
	require.NoError(t, repo.Create(ctx, newSession("u2", "other")))

	list, err := repo.ListByUserId(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)

	empty, err := repo.ListByUserId(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessionRepository_ListByUserIdTieBreak(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := NewSessionRepository().WithClock(func() time.Time { return fixed })

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		s := newSession("u1", title)
		require.NoError(t, repo.Create(ctx, s))
		ids = append(ids, s.Id)
	}

	list, err := repo.ListByUserId(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].Id, list[1].Id, list[2].Id})
}
