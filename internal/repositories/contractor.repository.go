package repositories

import (
	"context"
	"errors"
	"time"

	"rigbook/internal/database"
	"rigbook/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ACTIVE_CONTRACTORS_CACHE_KEY    = "contractors"
	ACTIVE_CONTRACTORS_CACHE_HASH   = "active"
	ACTIVE_CONTRACTORS_CACHE_EXPIRY = 15 * time.Minute
)

type ContractorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contractor, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Contractor, error)
	GetActive(ctx context.Context) ([]*models.Contractor, error)
	Create(ctx context.Context, contractor *models.Contractor) error
}

type contractorRepository struct {
	db    database.DB
	cache database.CacheClient
	log   logger.Logger
}

func NewContractorRepository(db database.DB) ContractorRepository {
	return &contractorRepository{
		db:    db,
		cache: db.Cache.General,
		log:   logger.New("contractorRepository"),
	}
}

func (r *contractorRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Contractor, error) {
	log := r.log.Function("GetByID").TraceFromContext(ctx)

	var contractor models.Contractor
	if err := r.db.SQLWithContext(ctx).Where("id = ?", id).First(&contractor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get contractor", err, "id", id)
	}

	return &contractor, nil
}

func (r *contractorRepository) GetByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) ([]*models.Contractor, error) {
	log := r.log.Function("GetByIDs").TraceFromContext(ctx)

	if len(ids) == 0 {
		return nil, nil
	}

	var contractors []*models.Contractor
	if err := r.db.SQLWithContext(ctx).
		Where("id IN ?", ids).
		Find(&contractors).Error; err != nil {
		return nil, log.Err("failed to get contractors", err, "count", len(ids))
	}

	return contractors, nil
}

func (r *contractorRepository) GetActive(ctx context.Context) ([]*models.Contractor, error) {
	log := r.log.Function("GetActive").TraceFromContext(ctx)

	var cached []*models.Contractor
	found, err := database.NewCacheBuilder(r.cache, ACTIVE_CONTRACTORS_CACHE_KEY).
		WithContext(ctx).
		WithHash(ACTIVE_CONTRACTORS_CACHE_HASH).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get active contractors from cache", "error", err)
	}

	if found {
		return cached, nil
	}

	var contractors []*models.Contractor
	if err := r.db.SQLWithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&contractors).Error; err != nil {
		return nil, log.Err("failed to get active contractors", err)
	}

	err = database.NewCacheBuilder(r.cache, ACTIVE_CONTRACTORS_CACHE_KEY).
		WithContext(ctx).
		WithHash(ACTIVE_CONTRACTORS_CACHE_HASH).
		WithStruct(contractors).
		WithTTL(ACTIVE_CONTRACTORS_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to cache active contractors", "error", err)
	}

	return contractors, nil
}

func (r *contractorRepository) Create(ctx context.Context, contractor *models.Contractor) error {
	log := r.log.Function("Create").TraceFromContext(ctx)

	if err := r.db.SQLWithContext(ctx).Create(contractor).Error; err != nil {
		return log.Err("failed to create contractor", err, "email", contractor.Email)
	}

	r.clearActiveCache(ctx)

	log.Info("Contractor created", "id", contractor.ID, "name", contractor.Name)
	return nil
}

func (r *contractorRepository) clearActiveCache(ctx context.Context) {
	log := r.log.Function("clearActiveCache").TraceFromContext(ctx)

	err := database.NewCacheBuilder(r.cache, ACTIVE_CONTRACTORS_CACHE_KEY).
		WithContext(ctx).
		WithHash(ACTIVE_CONTRACTORS_CACHE_HASH).
		Delete()
	if err != nil {
		log.Warn("failed to clear active contractor cache", "error", err)
	}
}
