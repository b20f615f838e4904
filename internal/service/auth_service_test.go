package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/repository/postgres"
	"github.com/jcall/wanderstay/internal/service"
	"github.com/jcall/wanderstay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	authService := service.NewAuthService(repos.User)
	ctx := context.Background()

	user, err := authService.Register(ctx, service.RegisterInput{
		Username: "newuser",
		Email:    "newuser@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.PasswordHash, "password must never be stored in plaintext")

	got, err := authService.Authenticate(ctx, "newuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = authService.Authenticate(ctx, "newuser", "wrongpass1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = authService.Authenticate(ctx, "nosuchuser", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_DuplicateRegistration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	authService := service.NewAuthService(repos.User)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithUsername("existing").
		WithEmail("existing@example.com").
		Build(t, db)

	tests := []struct {
		name    string
		input   service.RegisterInput
		wantErr error
	}{
		{
			name: "username collision",
			input: service.RegisterInput{
				Username: "existing",
				Email:    "other@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrUsernameTaken,
		},
		{
			name: "email collision",
			input: service.RegisterInput{
				Username: "otheruser",
				Email:    "existing@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Register(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_UsernameExists(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	authService := service.NewAuthService(repos.User)
	ctx := context.Background()

	testutil.NewUserBuilder().WithUsername("taken").Build(t, db)

	exists, err := authService.UsernameExists(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = authService.UsernameExists(ctx, "free")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	authService := service.NewAuthService(repos.User)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("resetme").
		WithEmail("resetme@example.com").
		Build(t, db)

	_, err := authService.StartPasswordReset(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, service.ErrEmailNotFound)

	token, err := authService.StartPasswordReset(ctx, "resetme@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 40, "token should be 20 random bytes hex-encoded")

	resolved, err := authService.UserForResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, authService.ResetPassword(ctx, token, "newsecret1"))

	// New credential works, old one does not.
	_, err = authService.Authenticate(ctx, "resetme", "newsecret1")
	require.NoError(t, err)
	_, err = authService.Authenticate(ctx, "resetme", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Consumed exactly once: the token is cleared with the password change.
	_, err = authService.UserForResetToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
	err = authService.ResetPassword(ctx, token, "again1234")
	assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
}

func TestAuthService_ExpiredResetTokenRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db)
	authService := service.NewAuthService(repos.User)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("expired").
		WithEmail("expired@example.com").
		Build(t, db)

	token := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"reset_password_token":   token,
			"reset_password_expires": past,
		}).Error)

	_, err := authService.UserForResetToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantMsg  string
	}{
		{"valid", "gooduser1", "good@example.com", "password123", ""},
		{"missing fields", "", "good@example.com", "password123", "All fields are required!"},
		{"short username", "ab", "good@example.com", "password123", "Username must be 3-20 characters long and contain only letters and numbers!"},
		{"symbol username", "bad_user", "good@example.com", "password123", "Username must be 3-20 characters long and contain only letters and numbers!"},
		{"long username", "abcdefghijklmnopqrstu", "good@example.com", "password123", "Username must be 3-20 characters long and contain only letters and numbers!"},
		{"bad email", "gooduser1", "not-an-email", "password123", "Please enter a valid email address!"},
		{"short password", "gooduser1", "good@example.com", "pass1", "Password must be at least 8 characters long and contain both letters and numbers!"},
		{"password without digits", "gooduser1", "good@example.com", "passwords", "Password must be at least 8 characters long and contain both letters and numbers!"},
		{"password without letters", "gooduser1", "good@example.com", "12345678", "Password must be at least 8 characters long and contain both letters and numbers!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateSignup(tt.username, tt.email, tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, domain.MessageOf(err))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", service.SanitizeInput(`  <script>alert("1")</script> `))
	assert.Equal(t, "plain", service.SanitizeInput("plain"))
}
