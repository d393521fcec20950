package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks for Dependencies ---

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, password string) error {
	args := m.Called(ctx, id, password)
	return args.Error(0)
}

type MockTokenService struct{ mock.Mock }

func (m *MockTokenService) Generate(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, topicArn, eventType string, message []byte) error {
	args := m.Called(ctx, topicArn, eventType, message)
	return args.Error(0)
}

// --- Tests ---

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		events := new(MockPublisher)
		svc := NewAccountService(repo, tokens, events, "arn:topic", zap.NewNop())

		var created *models.User
		repo.On("FindByEmail", ctx, "a@x.com").Return(nil, repository.ErrNotFound).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.User)
		}).Return(nil).Once()
		tokens.On("Generate", mock.AnythingOfType("string")).Return("T", nil).Once()
		events.On("Publish", ctx, "arn:topic", EventUserRegistered, mock.Anything).Return(nil).Once()

		token, err := svc.Register(ctx, "A", "a@x.com", "p")

		require.NoError(t, err)
		assert.Equal(t, "T", token)
		require.NotNil(t, created)
		assert.Len(t, created.CartData, models.CartSlots)
		assert.NotEqual(t, "p", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("p")))
		tokens.AssertCalled(t, "Generate", created.ID.Hex())
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("Email Already Used", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		svc := NewAccountService(repo, tokens, nil, "", zap.NewNop())

		repo.On("FindByEmail", ctx, "a@x.com").Return(&models.User{Email: "a@x.com"}, nil).Once()

		_, err := svc.Register(ctx, "Other", "a@x.com", "different")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, MsgEmailInUse, apperrors.As(err).Message)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate On Insert", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		svc := NewAccountService(repo, tokens, nil, "", zap.NewNop())

		repo.On("FindByEmail", ctx, "a@x.com").Return(nil, repository.ErrNotFound).Once()
		repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate).Once()

		_, err := svc.Register(ctx, "A", "a@x.com", "p")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Password Longer Than Bcrypt Limit", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		svc := NewAccountService(repo, tokens, nil, "", zap.NewNop())
		long := strings.Repeat("x", 80)

		var created *models.User
		repo.On("FindByEmail", ctx, "long@x.com").Return(nil, repository.ErrNotFound).Once()
		repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.User)
		}).Return(nil).Once()
		tokens.On("Generate", mock.Anything).Return("T", nil).Twice()

		_, err := svc.Register(ctx, "L", "long@x.com", long)
		require.NoError(t, err)
		require.NotNil(t, created)

		repo.On("FindByEmail", ctx, "long@x.com").Return(created, nil)

		_, err = svc.Login(ctx, "long@x.com", long)
		require.NoError(t, err)

		// only the full password matches, not its first 72 bytes
		_, err = svc.Login(ctx, "long@x.com", long[:72])
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		_, err = svc.Login(ctx, "long@x.com", long[:79]+"y")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Publish Failure Is Not Fatal", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		events := new(MockPublisher)
		svc := NewAccountService(repo, tokens, events, "arn:topic", zap.NewNop())

		repo.On("FindByEmail", ctx, "b@x.com").Return(nil, repository.ErrNotFound).Once()
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()
		tokens.On("Generate", mock.Anything).Return("T2", nil).Once()
		events.On("Publish", ctx, "arn:topic", EventUserRegistered, mock.Anything).Return(errors.New("sns down")).Once()

		token, err := svc.Register(ctx, "B", "b@x.com", "p")
		require.NoError(t, err)
		assert.Equal(t, "T2", token)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("p"), bcrypt.MinCost)
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@x.com", Password: string(hashed)}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		svc := NewAccountService(repo, tokens, nil, "", zap.NewNop())

		repo.On("FindByEmail", ctx, "a@x.com").Return(user, nil).Once()
		tokens.On("Generate", user.ID.Hex()).Return("T", nil).Once()

		token, err := svc.Login(ctx, "a@x.com", "p")
		require.NoError(t, err)
		assert.Equal(t, "T", token)
	})

	t.Run("User Not Found", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAccountService(repo, new(MockTokenService), nil, "", zap.NewNop())
		repo.On("FindByEmail", ctx, "nobody@x.com").Return(nil, repository.ErrNotFound).Once()

		_, err := svc.Login(ctx, "nobody@x.com", "p")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Equal(t, MsgInvalidCredentials, apperrors.As(err).Message)
	})

	t.Run("Incorrect Password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAccountService(repo, new(MockTokenService), nil, "", zap.NewNop())
		repo.On("FindByEmail", ctx, "a@x.com").Return(user, nil).Once()

		_, err := svc.Login(ctx, "a@x.com", "wrong")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Equal(t, MsgInvalidCredentials, apperrors.As(err).Message)
	})

	t.Run("Legacy Plaintext Upgraded", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenService)
		svc := NewAccountService(repo, tokens, nil, "", zap.NewNop())
		legacy := &models.User{ID: primitive.NewObjectID(), Email: "old@x.com", Password: "hunter2"}

		repo.On("FindByEmail", ctx, "old@x.com").Return(legacy, nil).Once()
		repo.On("UpdatePassword", ctx, legacy.ID.Hex(), mock.MatchedBy(func(h string) bool {
			return bcrypt.CompareHashAndPassword([]byte(h), []byte("hunter2")) == nil
		})).Return(nil).Once()
		tokens.On("Generate", legacy.ID.Hex()).Return("T", nil).Once()

		_, err := svc.Login(ctx, "old@x.com", "hunter2")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Legacy Plaintext Mismatch", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAccountService(repo, new(MockTokenService), nil, "", zap.NewNop())
		legacy := &models.User{ID: primitive.NewObjectID(), Email: "old@x.com", Password: "hunter2"}
		repo.On("FindByEmail", ctx, "old@x.com").Return(legacy, nil).Once()

		_, err := svc.Login(ctx, "old@x.com", "hunter3")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}
