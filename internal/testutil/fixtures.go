package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder constructs test users with sensible defaults.
type UserBuilder struct {
	username string
	email    string
	password string
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: "testuser",
		email:    "testuser@example.com",
		password: "password123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build persists the user and returns it along with the raw password.
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// ListingBuilder constructs test listings.
type ListingBuilder struct {
	title       string
	description string
	price       int
	location    string
	country     string
	ownerID     uuid.UUID
	image       domain.Image
}

func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{
		title:       "cozy cottage",
		description: "a quiet place",
		price:       100,
		location:    "springfield",
		country:     "usa",
		image:       domain.DefaultImage,
	}
}

func (b *ListingBuilder) WithTitle(title string) *ListingBuilder {
	b.title = title
	return b
}

func (b *ListingBuilder) WithDescription(description string) *ListingBuilder {
	b.description = description
	return b
}

func (b *ListingBuilder) WithPrice(price int) *ListingBuilder {
	b.price = price
	return b
}

func (b *ListingBuilder) WithLocation(location string) *ListingBuilder {
	b.location = location
	return b
}

func (b *ListingBuilder) WithCountry(country string) *ListingBuilder {
	b.country = country
	return b
}

func (b *ListingBuilder) WithOwner(ownerID uuid.UUID) *ListingBuilder {
	b.ownerID = ownerID
	return b
}

func (b *ListingBuilder) Build(t *testing.T, db *gorm.DB) *domain.Listing {
	t.Helper()

	ownerID := b.ownerID
	if ownerID == uuid.Nil {
		owner, _ := NewUserBuilder().
			WithUsername("owner" + uuid.New().String()[:8]).
			WithEmail(uuid.New().String()[:8] + "@example.com").
			Build(t, db)
		ownerID = owner.ID
	}

	listing := &domain.Listing{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		Image:       datatypes.NewJSONType(b.image),
		Price:       b.price,
		Location:    b.location,
		Country:     b.country,
		OwnerID:     ownerID,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}

	return listing
}
