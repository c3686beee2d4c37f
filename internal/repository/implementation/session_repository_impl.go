package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/mapper"
	"symptom-checker-be/internal/model"
	"symptom-checker-be/internal/repository/contract"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepositoryImpl struct {
	collection *mongo.Collection
	mapper     *mapper.SessionMapper
	now        func() time.Time
}

func NewSessionRepository(db *mongo.Database) contract.SessionRepository {
	return &SessionRepositoryImpl{
		collection: db.Collection(model.SessionCollection),
		mapper:     mapper.NewSessionMapper(),
		now:        time.Now,
	}
}

// EnsureSessionIndexes creates the owner listing index. Safe to call on every start.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(model.SessionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("userId_createdAt_id"),
	})
	return err
}

// timestamp truncates to the millisecond precision BSON dates keep, so the
// returned entity matches what a later read decodes.
func (r *SessionRepositoryImpl) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	now := r.timestamp()
	doc := r.mapper.ToDocument(session)
	doc.Id = primitive.NewObjectID()
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	*session = *r.mapper.ToEntity(doc)
	return nil
}

func (r *SessionRepositoryImpl) FindById(ctx context.Context, id string) (*entity.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc model.SessionDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	return r.mapper.ToEntity(&doc), nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.Session) error {
	oid, err := primitive.ObjectIDFromHex(session.Id)
	if err != nil {
		return contract.ErrSessionNotFound
	}

	doc := r.mapper.ToDocument(session)
	filter := bson.M{"_id": oid, "version": session.Version}
	update := bson.M{
		"$set": bson.M{
			"symptoms":        doc.Symptoms,
			"diagnosis":       doc.Diagnosis,
			"recommendations": doc.Recommendations,
			"report":          doc.Report,
			"conversation":    doc.Conversation,
			"sessionTitle":    doc.SessionTitle,
			"updatedAt":       r.timestamp(),
		},
		"$inc": bson.M{"version": 1},
	}

	var updated model.SessionDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		*session = *r.mapper.ToEntity(&updated)
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("update session: %w", err)
	}

	// No match: either the id is gone or another writer got there first.
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("count session: %w", err)
	}
	if count == 0 {
		return contract.ErrSessionNotFound
	}
	return contract.ErrSessionVersionConflict
}

func (r *SessionRepositoryImpl) ListByUserId(ctx context.Context, userId string) ([]*entity.SessionSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "sessionTitle": 1, "createdAt": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userId}, opts)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*model.SessionSummaryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	summaries := make([]*entity.SessionSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, r.mapper.SummaryToEntity(d))
	}
	return summaries, nil
}
