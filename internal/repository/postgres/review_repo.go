package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *reviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) DeleteByListingID(ctx context.Context, listingID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Review{}, "listing_id = ?", listingID).Error
}
