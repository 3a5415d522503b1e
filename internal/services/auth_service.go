package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"arthemis/internal/models"
	"arthemis/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 10 * time.Minute

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Username string      `json:"username" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=user artist"`
}

// DetailsInput holds the profile fields a user may change.
type DetailsInput struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	events     EventPublisher
	log        *zap.SugaredLogger
	validate   *validator.Validate
	jwtSecret  []byte
	tokenDurat time.Duration
	resetURL   string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDuration time.Duration, resetURL string, events EventPublisher, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		events:     events,
		log:        log,
		validate:   NewValidator(),
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
		resetURL:   resetURL,
	}
}

// TokenDuration is the lifetime of issued tokens.
func (s *AuthService) TokenDuration() time.Duration {
	return s.tokenDurat
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func duplicateErr(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return &Error{Kind: KindConflict, Message: "Username or email already in use", Err: err}
	}
	return internal(err)
}

// Register creates an account and returns it with a signed token. Admin
// accounts can not be self-registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(&in); err != nil {
		return nil, "", validationError(err)
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, "", newError(KindConflict, "Username '%s' already taken", in.Username)
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, "", newError(KindConflict, "Email '%s' already registered", in.Email)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", internal(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Role:     in.Role,
		Avatar:   models.DefaultAvatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", duplicateErr(err)
	}

	token, err := s.SignToken(user)
	if err != nil {
		return nil, "", internal(err)
	}
	return user, token, nil
}

// Login authenticates by email and password and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", newError(KindValidation, "Please provide an email and password")
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", newError(KindUnauthenticated, "Invalid credentials")
		}
		return nil, "", internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", newError(KindUnauthenticated, "Invalid credentials")
	}

	token, err := s.SignToken(user)
	if err != nil {
		return nil, "", internal(err)
	}
	return user, token, nil
}

// SignToken issues a JWT for user.
func (s *AuthService) SignToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Authenticate resolves a token to the current state of its user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "Not authorized to access this route", Err: err}
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, newError(KindUnauthenticated, "Not authorized to access this route")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &Error{Kind: KindUnauthenticated, Message: "Not authorized to access this route", Err: err}
		}
		return nil, internal(err)
	}
	return user, nil
}

// Me returns the account of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, fmt.Sprintf("User not found with id of %s", userID))
	}
	return user, nil
}

// UpdateDetails changes the profile fields of userID.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, in DetailsInput) (*models.User, error) {
	if err := s.validate.Struct(&in); err != nil {
		return nil, validationError(err)
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, duplicateErr(err)
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one and
// returns a fresh token.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) (string, error) {
	if len(next) < 6 {
		return "", newError(KindValidation, "Please enter a password with 6 or more characters")
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return "", newError(KindUnauthenticated, "Password is incorrect")
	}
	if user.Password, err = hashPassword(next); err != nil {
		return "", internal(err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", internal(err)
	}
	token, err := s.SignToken(user)
	if err != nil {
		return "", internal(err)
	}
	return token, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword issues a reset token valid for ten minutes and publishes the
// reset link for delivery. The raw token is returned to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", lookupErr(err, "There is no user with that email")
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", internal(fmt.Errorf("failed to generate reset token: %w", err))
	}
	token := hex.EncodeToString(raw)
	expire := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = hashResetToken(token)
	user.ResetPasswordExpire = &expire
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", internal(err)
	}

	publishEvent(ctx, s.events, s.log, EventPasswordResetRequest, map[string]interface{}{
		"userId":   user.ID,
		"email":    user.Email,
		"resetUrl": s.resetURL + "/" + token,
	})
	return token, nil
}

// ResetPassword sets a new password for the holder of an unexpired reset
// token and returns a fresh login token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*models.User, string, error) {
	if len(password) < 6 {
		return nil, "", newError(KindValidation, "Please enter a password with 6 or more characters")
	}
	user, err := s.userRepo.GetByResetToken(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", newError(KindValidation, "Invalid token")
		}
		return nil, "", internal(err)
	}

	if user.Password, err = hashPassword(password); err != nil {
		return nil, "", internal(err)
	}
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, "", internal(err)
	}

	signed, err := s.SignToken(user)
	if err != nil {
		return nil, "", internal(err)
	}
	return user, signed, nil
}
