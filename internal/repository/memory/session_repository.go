package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionRepository is a process-local Session Store for development and tests.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
		now:   time.Now,
	}
}

// WithClock swaps the time source. Tests only.
func (r *SessionRepository) WithClock(now func() time.Time) *SessionRepository {
	r.now = now
	return r
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *SessionRepository) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	stored := session.Clone()
	stored.Id = primitive.NewObjectID().Hex()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.cache.Set(stored.Id, stored, cache.NoExpiration)
	*session = *stored.Clone()
	return nil
}

func (r *SessionRepository) FindById(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(id); found {
		return x.(*entity.Session).Clone(), nil
	}
	return nil, nil
}

func (r *SessionRepository) Update(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(session.Id)
	if !found {
		return contract.ErrSessionNotFound
	}
	current := x.(*entity.Session)
	if current.Version != session.Version {
		return contract.ErrSessionVersionConflict
	}

	stored := session.Clone()
	stored.UserId = current.UserId
	stored.CreatedAt = current.CreatedAt
	stored.Version = current.Version + 1
	stored.UpdatedAt = r.timestamp()

	r.cache.Set(stored.Id, stored, cache.NoExpiration)
	*session = *stored.Clone()
	return nil
}

func (r *SessionRepository) ListByUserId(_ context.Context, userId string) ([]*entity.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owned []*entity.Session
	for _, item := range r.cache.Items() {
		s := item.Object.(*entity.Session)
		if s.UserId == userId {
			owned = append(owned, s)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			// ObjectIDs grow with creation order
			return owned[i].Id > owned[j].Id
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	summaries := make([]*entity.SessionSummary, 0, len(owned))
	for _, s := range owned {
		summaries = append(summaries, &entity.SessionSummary{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
		})
	}
	return summaries, nil
}
