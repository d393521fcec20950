package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/models"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Invalid email or password"

	EventUserRegistered = "user.registered"

	// bcrypt refuses inputs longer than this.
	bcryptMaxInput = 72
)

type IUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, password string) error
}

type ITokenService interface {
	Generate(userID string) (string, error)
}

// AccountService registers users and logs them in.
type AccountService struct {
	userRepo     IUserRepository
	tokenService ITokenService
	events       aws_pkg.SNSPublisher
	eventsTopic  string
	logger       *zap.Logger
	now          func() time.Time
}

func NewAccountService(ur IUserRepository, ts ITokenService, events aws_pkg.SNSPublisher, eventsTopic string, logger *zap.Logger) *AccountService {
	return &AccountService{
		userRepo:     ur,
		tokenService: ts,
		events:       events,
		eventsTopic:  eventsTopic,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates the user with a zeroed cart and returns a session token.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (string, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return "", apperrors.Conflict(MsgEmailInUse, nil)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.Internal("Failed to look up user", err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return "", apperrors.Internal("Failed to hash password", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		CartData: models.NewCart(),
		Date:     s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost the race against a concurrent signup for the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return "", apperrors.Conflict(MsgEmailInUse, err)
		}
		return "", apperrors.Internal("Failed to create account", err)
	}

	token, err := s.tokenService.Generate(user.ID.Hex())
	if err != nil {
		return "", apperrors.Internal("Failed to generate token", err)
	}

	s.publishRegistered(ctx, user)
	return token, nil
}

// Login returns a token when the credentials match. Unknown email and wrong
// password produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.Unauthorized(MsgInvalidCredentials, nil)
	}
	if err != nil {
		return "", apperrors.Internal("Failed to look up user", err)
	}

	if !s.checkPassword(ctx, user, password) {
		return "", apperrors.Unauthorized(MsgInvalidCredentials, nil)
	}

	token, err := s.tokenService.Generate(user.ID.Hex())
	if err != nil {
		return "", apperrors.Internal("Failed to generate token", err)
	}
	return token, nil
}

// checkPassword accepts bcrypt hashes and, for accounts created before
// hashing was introduced, the stored plaintext. A successful plaintext match
// rewrites the record with a hash.
func (s *AccountService) checkPassword(ctx context.Context, user *models.User, password string) bool {
	if _, err := bcrypt.Cost([]byte(user.Password)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(user.Password), bcryptInput(password)) == nil
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return false
	}

	hashed, err := hashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePassword(ctx, user.ID.Hex(), hashed)
	}
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Failed to upgrade legacy password", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
	return true
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// bcryptInput passes short passwords through unchanged and digests long ones
// down to a fixed 44-byte string, so every stored hash stays comparable.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (s *AccountService) publishRegistered(ctx context.Context, user *models.User) {
	if s.events == nil || s.eventsTopic == "" {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event_type": EventUserRegistered,
		"user_id":    user.ID.Hex(),
		"email":      user.Email,
		"name":       user.Name,
		"created_at": user.Date,
	})
	if err != nil {
		return
	}
	if err := s.events.Publish(ctx, s.eventsTopic, EventUserRegistered, payload); err != nil {
		logger.FromContext(ctx, s.logger).Warn("Failed to publish user event", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
}
