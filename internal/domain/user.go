package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Username             string     `json:"username" gorm:"uniqueIndex;not null"`
	Email                string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash         string     `json:"-" gorm:"not null"`
	ResetPasswordToken   *string    `json:"-" gorm:"index"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}
