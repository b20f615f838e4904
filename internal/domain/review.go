package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ListingID uuid.UUID `json:"listingId" gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:uuid;not null"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}
