package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/repository"
)

type fakeCartRepo struct {
	carts map[string]models.Cart
}

func newFakeCartRepo(userIDs ...string) *fakeCartRepo {
	f := &fakeCartRepo{carts: map[string]models.Cart{}}
	for _, id := range userIDs {
		f.carts[id] = models.NewCart()
	}
	return f
}

func (f *fakeCartRepo) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cart, nil
}

func (f *fakeCartRepo) IncrementCartItem(ctx context.Context, userID string, key models.ItemKey) error {
	cart, ok := f.carts[userID]
	if !ok {
		return repository.ErrNotFound
	}
	cart[string(key)]++
	return nil
}

func (f *fakeCartRepo) DecrementCartItem(ctx context.Context, userID string, key models.ItemKey) error {
	cart, ok := f.carts[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if cart[string(key)] > 0 {
		cart[string(key)]--
	}
	return nil
}

func TestCartAddThenRemoveRestoresSlot(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakeCartRepo("u1"))

	require.NoError(t, svc.AddItem(ctx, "u1", "5"))
	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, cart["5"])

	require.NoError(t, svc.RemoveItem(ctx, "u1", "5"))
	cart, _ = svc.GetCart(ctx, "u1")
	assert.Equal(t, 0, cart["5"])
}

func TestCartRemoveAtZeroStaysZero(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakeCartRepo("u1"))

	require.NoError(t, svc.RemoveItem(ctx, "u1", "7"))
	cart, _ := svc.GetCart(ctx, "u1")
	assert.Equal(t, 0, cart["7"])
}

func TestCartOutOfRangeKeyExtendsMap(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakeCartRepo("u1"))

	require.NoError(t, svc.AddItem(ctx, "u1", "450"))
	cart, _ := svc.GetCart(ctx, "u1")
	assert.Equal(t, 1, cart["450"])
	assert.Len(t, cart, models.CartSlots+1)
}

func TestCartErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakeCartRepo("u1"))

	_, err := svc.GetCart(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, MsgUserNotFound, apperrors.As(err).Message)

	assert.ErrorIs(t, svc.AddItem(ctx, "ghost", "1"), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.AddItem(ctx, "u1", "$set"), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.RemoveItem(ctx, "u1", "a.b"), apperrors.ErrValidation)
}
