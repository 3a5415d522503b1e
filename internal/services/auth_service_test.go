package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"arthemis/internal/logger"
	"arthemis/internal/models"
	"arthemis/internal/repositories"
	"arthemis/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo repositories.UserRepository, events services.EventPublisher) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour, "http://localhost:3000/resetpassword", events, logger.Nop())
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	authService := newAuthService(repositories.NewMemoryUserRepository(), nil)

	user, token, err := authService.Register(ctx, services.RegisterInput{
		Username: " painter ",
		Email:    "Painter@Example.com",
		Password: "password123",
		Role:     models.RoleArtist,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "painter", user.Username)
	assert.Equal(t, "painter@example.com", user.Email)
	assert.Equal(t, models.RoleArtist, user.Role)
	assert.Equal(t, models.DefaultAvatar, user.Avatar)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "artist", claims["role"])

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, _, err := authService.Register(ctx, services.RegisterInput{Username: "painter", Email: "other@example.com", Password: "password123"})
		assert.True(t, errors.Is(err, services.ErrConflict))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, _, err := authService.Register(ctx, services.RegisterInput{Username: "other", Email: "painter@example.com", Password: "password123"})
		assert.True(t, errors.Is(err, services.ErrConflict))
	})

	t.Run("AdminNotSelfAssignable", func(t *testing.T) {
		_, _, err := authService.Register(ctx, services.RegisterInput{Username: "boss", Email: "boss@example.com", Password: "password123", Role: models.RoleAdmin})
		assert.Equal(t, services.KindValidation, services.KindOf(err))
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, _, err := authService.Register(ctx, services.RegisterInput{Username: "short", Email: "short@example.com", Password: "123"})
		assert.Equal(t, services.KindValidation, services.KindOf(err))
	})

	t.Run("DefaultRole", func(t *testing.T) {
		u, _, err := authService.Register(ctx, services.RegisterInput{Username: "viewer", Email: "viewer@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, u.Role)
	})
}

func TestAuthService_Register_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(errors.New("connection reset")).Once()

	_, _, err := authService.Register(context.Background(), services.RegisterInput{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	})
	assert.Equal(t, services.KindInternal, services.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	authService := newAuthService(repositories.NewMemoryUserRepository(), nil)
	registered, _, err := authService.Register(ctx, services.RegisterInput{Username: "testuser", Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)

	user, token, err := authService.Login(ctx, "TEST@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = authService.Login(ctx, "test@example.com", "wrongpassword")
	assert.Equal(t, services.KindUnauthenticated, services.KindOf(err))
	assert.EqualError(t, err, "Invalid credentials")

	_, _, err = authService.Login(ctx, "nobody@example.com", "password123")
	assert.Equal(t, services.KindUnauthenticated, services.KindOf(err))

	_, _, err = authService.Login(ctx, "", "")
	assert.Equal(t, services.KindValidation, services.KindOf(err))
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(repositories.NewMemoryUserRepository(), nil)
	user := &models.User{ID: "user-1", Username: "testuser", Role: models.RoleUser}

	token, err := authService.SignToken(user)
	require.NoError(t, err)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	// Token signed with another secret
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forgedString, err := forged.SignedString([]byte("another_secret"))
	require.NoError(t, err)
	_, err = authService.ValidateToken(forgedString)
	assert.Error(t, err)

	// Expired token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = authService.ValidateToken(expiredString)
	assert.Error(t, err)
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()
	authService := newAuthService(repo, nil)
	user, token, err := authService.Register(ctx, services.RegisterInput{Username: "testuser", Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)

	got, err := authService.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = authService.Authenticate(ctx, "not-a-token")
	assert.Equal(t, services.KindUnauthenticated, services.KindOf(err))

	ghost, err := authService.SignToken(&models.User{ID: "deleted-user"})
	require.NoError(t, err)
	_, err = authService.Authenticate(ctx, ghost)
	assert.Equal(t, services.KindUnauthenticated, services.KindOf(err))
}

func TestAuthService_UpdateDetailsAndPassword(t *testing.T) {
	ctx := context.Background()
	authService := newAuthService(repositories.NewMemoryUserRepository(), nil)
	user, _, err := authService.Register(ctx, services.RegisterInput{Username: "testuser", Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	_, _, err = authService.Register(ctx, services.RegisterInput{Username: "taken", Email: "taken@example.com", Password: "password123"})
	require.NoError(t, err)

	bio := "Landscape painter"
	updated, err := authService.UpdateDetails(ctx, user.ID, services.DetailsInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	taken := "taken"
	_, err = authService.UpdateDetails(ctx, user.ID, services.DetailsInput{Username: &taken})
	assert.True(t, errors.Is(err, services.ErrConflict))

	_, err = authService.UpdatePassword(ctx, user.ID, "wrong", "newpassword")
	assert.EqualError(t, err, "Password is incorrect")

	token, err := authService.UpdatePassword(ctx, user.ID, "password123", "newpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = authService.Login(ctx, "test@example.com", "newpassword")
	assert.NoError(t, err)
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	events := new(MockEventPublisher)
	authService := newAuthService(repositories.NewMemoryUserRepository(), events)
	user, _, err := authService.Register(ctx, services.RegisterInput{Username: "testuser", Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)

	var published services.Event
	events.On("Publish", mock.Anything, services.EventPasswordResetRequest, mock.AnythingOfType("services.Event")).
		Run(func(args mock.Arguments) { published = args.Get(2).(services.Event) }).
		Return(nil).Once()

	token, err := authService.ForgotPassword(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 40)
	events.AssertExpectations(t)
	assert.True(t, strings.HasSuffix(published.Data["resetUrl"].(string), "/"+token))

	_, err = authService.ForgotPassword(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, services.ErrNotFound))

	_, _, err = authService.ResetPassword(ctx, "bogus", "newpassword")
	assert.EqualError(t, err, "Invalid token")

	reset, signed, err := authService.ResetPassword(ctx, token, "newpassword")
	require.NoError(t, err)
	assert.Equal(t, user.ID, reset.ID)
	assert.NotEmpty(t, signed)

	_, _, err = authService.Login(ctx, "test@example.com", "newpassword")
	assert.NoError(t, err)

	// The token is single use.
	_, _, err = authService.ResetPassword(ctx, token, "anotherpassword")
	assert.EqualError(t, err, "Invalid token")
}
