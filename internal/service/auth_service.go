package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = &domain.Error{Kind: domain.KindAuth, Message: "Invalid username or password!"}
	ErrEmailNotFound      = &domain.Error{Kind: domain.KindNotFound, Message: "No account with that email found."}
	ErrResetTokenInvalid  = &domain.Error{Kind: domain.KindValidation, Message: "Password reset token is invalid or has expired."}
)

const resetTokenTTL = time.Hour

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates the user with a salted credential hash. Uniqueness is
// enforced by the store; collisions surface as domain.ErrUsernameTaken or
// domain.ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies the local username/password strategy. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, domain.StoreErr(err, "Something went wrong")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UsernameExists checks availability. Format validation happens before
// this so malformed names never touch the store.
func (s *AuthService) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// StartPasswordReset issues a 160-bit random token with a one-hour expiry
// on the user record and returns it. Delivery is the caller's concern.
func (s *AuthService) StartPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrEmailNotFound
		}
		return "", domain.StoreErr(err, "Something went wrong")
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(resetTokenTTL)

	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", domain.StoreErr(err, "Something went wrong")
	}

	return token, nil
}

// UserForResetToken resolves an unexpired reset token.
func (s *AuthService) UserForResetToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.userRepo.GetByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenInvalid
		}
		return nil, domain.StoreErr(err, "Something went wrong")
	}
	return user, nil
}

// ResetPassword consumes the token: the credential hash is replaced and
// both reset fields cleared in the same update.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.UserForResetToken(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, string(hashed))
}
