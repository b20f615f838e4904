package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/query"
	"github.com/jcall/wanderstay/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrListingNotFound = &domain.Error{Kind: domain.KindNotFound, Message: "Listing not found!"}

const (
	suggestionLimit  = 10
	suggestionMinLen = 2
)

type ListingService struct {
	listingRepo repository.ListingRepository
	reviewRepo  repository.ReviewRepository
}

func NewListingService(listingRepo repository.ListingRepository, reviewRepo repository.ReviewRepository) *ListingService {
	return &ListingService{listingRepo: listingRepo, reviewRepo: reviewRepo}
}

// List runs the search/filter/sort pipeline over the listing index.
func (s *ListingService) List(ctx context.Context, params query.Params) ([]*domain.Listing, error) {
	listings, err := s.listingRepo.Search(ctx, query.Build(params))
	if err != nil {
		return nil, domain.StoreErr(err, "Something went wrong while searching listings.")
	}
	return listings, nil
}

// Get eagerly resolves owner, reviews and review authors.
func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, domain.StoreErr(err, "Something went wrong")
	}
	return listing, nil
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       int
	Location    string
	Country     string
	// Image is nil when no file was uploaded; the placeholder applies.
	Image *domain.Image
}

// Create attaches the authenticated principal as the immutable owner.
func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, input CreateListingInput) (*domain.Listing, error) {
	image := domain.DefaultImage
	if input.Image != nil {
		image = *input.Image
	}

	listing := &domain.Listing{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Image:       datatypes.NewJSONType(image),
		Price:       input.Price,
		Location:    input.Location,
		Country:     input.Country,
		OwnerID:     ownerID,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, domain.StoreErr(err, "Something went wrong")
	}
	return listing, nil
}

type UpdateListingInput struct {
	Title       string
	Description string
	Price       int
	Location    string
	Country     string
	// ImageURL is the plain-text image field from the edit form, used when
	// no new file is uploaded. Blank falls back to the placeholder.
	ImageURL string
	// Upload, when present, wins over ImageURL.
	Upload *domain.Image
}

func (s *ListingService) Update(ctx context.Context, id uuid.UUID, input UpdateListingInput) (*domain.Listing, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	listing.Title = input.Title
	listing.Description = input.Description
	listing.Price = input.Price
	listing.Location = input.Location
	listing.Country = input.Country

	switch {
	case input.Upload != nil:
		listing.Image = datatypes.NewJSONType(*input.Upload)
	case strings.TrimSpace(input.ImageURL) == "":
		listing.Image = datatypes.NewJSONType(domain.DefaultImage)
	default:
		listing.Image = datatypes.NewJSONType(domain.Image{URL: strings.TrimSpace(input.ImageURL)})
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, domain.StoreErr(err, "Something went wrong")
	}
	return listing, nil
}

// Delete removes the listing and its reviews. Deleting an already-deleted
// ID is a no-op; ownership is enforced upstream.
func (s *ListingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.reviewRepo.DeleteByListingID(ctx, id); err != nil {
		return domain.StoreErr(err, "Something went wrong")
	}
	if err := s.listingRepo.Delete(ctx, id); err != nil {
		return domain.StoreErr(err, "Something went wrong")
	}
	return nil
}

// Suggestions returns up to 10 distinct title or location values matching
// q; queries shorter than 2 characters yield nothing.
func (s *ListingService) Suggestions(ctx context.Context, q, suggestType string) ([]string, error) {
	q = strings.TrimSpace(q)
	if len(q) < suggestionMinLen {
		return []string{}, nil
	}

	field := query.FieldTitle
	if suggestType == "location" {
		field = query.FieldLocation
	}

	values, err := s.listingRepo.Suggest(ctx, field, q, suggestionLimit)
	if err != nil {
		return nil, domain.StoreErr(err, "Something went wrong")
	}
	return values, nil
}
