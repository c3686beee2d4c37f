package implementation

import (
	"context"
	"errors"

	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/mapper"
	"symptom-checker-be/internal/model"
	"symptom-checker-be/internal/repository/contract"
	"symptom-checker-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(modelUser).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var modelUser model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelUser), nil
}

func (r *UserRepositoryImpl) ResetDailyUsage(ctx context.Context, id uuid.UUID, day string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND daily_usage_day <> ?", id, day).
		UpdateColumns(map[string]interface{}{
			"daily_usage":     0,
			"daily_usage_day": day,
		}).Error
}

func (r *UserRepositoryImpl) TryIncrementDailyUsage(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id)
	// Limit < 0 means unlimited
	if limit >= 0 {
		query = query.Where("daily_usage < ?", limit)
	}

	res := query.UpdateColumn("daily_usage", gorm.Expr("daily_usage + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepositoryImpl) DecrementDailyUsage(ctx context.Context, id uuid.UUID, day string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND daily_usage > 0 AND daily_usage_day = ?", id, day).
		UpdateColumn("daily_usage", gorm.Expr("daily_usage - ?", 1)).Error
}
