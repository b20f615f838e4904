package service

import (
	"github.com/jcall/wanderstay/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Listing *ListingService
}

func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User),
		Listing: NewListingService(repos.Listing, repos.Review),
	}
}
