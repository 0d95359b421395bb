package implementation

import (
	"context"

	"store-locator-be/internal/entity"
	"store-locator-be/internal/mapper"
	"store-locator-be/internal/model"
	"store-locator-be/internal/repository/contract"
	"store-locator-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InteractionLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewInteractionLogRepository(db *gorm.DB) contract.InteractionLogRepository {
	return &InteractionLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *InteractionLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InteractionLogRepositoryImpl) Create(ctx context.Context, log *entity.InteractionLog) error {
	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *InteractionLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InteractionLog, error) {
	var models []*model.InteractionLog
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.InteractionLog{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*entity.InteractionLog, 0, len(models))
	for _, m := range models {
		result = append(result, r.mapper.ToEntity(m))
	}
	return result, nil
}

func (r *InteractionLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.InteractionLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
