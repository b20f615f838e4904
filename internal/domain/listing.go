package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Image is always stored as an object, never a bare URL string.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// DefaultImage is attached to listings created or updated without an upload.
var DefaultImage = Image{
	URL:      "/public/img/default.jpg",
	Filename: "default",
}

type Listing struct {
	ID          uuid.UUID                 `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string                    `json:"title" gorm:"not null"`
	Description string                    `json:"description"`
	Image       datatypes.JSONType[Image] `json:"image"`
	Price       int                       `json:"price"`
	Location    string                    `json:"location"`
	Country     string                    `json:"country"`
	OwnerID     uuid.UUID                 `json:"ownerId" gorm:"type:uuid;not null"`
	Owner       *User                     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Reviews     []Review                  `json:"reviews" gorm:"foreignKey:ListingID"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}
