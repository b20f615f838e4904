package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/query"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// GetByResetToken resolves a user whose reset token matches and has not
	// expired as of now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	// UpdatePassword swaps the credential hash and clears both reset fields
	// in a single update.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	// GetByID eagerly resolves the owner, reviews and each review's author.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search compiles the filter expression to a store query.
	Search(ctx context.Context, q query.Query) ([]*domain.Listing, error)
	// Suggest returns up to limit distinct values of field containing term.
	Suggest(ctx context.Context, field, term string, limit int) ([]string, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	DeleteByListingID(ctx context.Context, listingID uuid.UUID) error
}

type Repositories struct {
	User    UserRepository
	Listing ListingRepository
	Review  ReviewRepository
}
