package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront/models"
	"go.uber.org/zap"
)

func newMiniredisCache(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client, time.Minute, zap.NewNop()), mr
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cm, _ := newMiniredisCache(t)

	_, version, ok := cm.GetProductList(ctx)
	require.False(t, ok)
	assert.Equal(t, int64(0), version)

	cm.setProductList(ctx, version, []models.Product{{ID: 1, Name: "Shirt"}})

	products, _, ok := cm.GetProductList(ctx)
	require.True(t, ok)
	require.Len(t, products, 1)
	assert.Equal(t, "Shirt", products[0].Name)
}

func TestCacheListReadBeforeInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	cm, _ := newMiniredisCache(t)

	// A reader misses and loads the catalog from the store...
	_, version, ok := cm.GetProductList(ctx)
	require.False(t, ok)
	stale := []models.Product{{ID: 1, Name: "old"}}

	// ...a write lands and invalidates before the reader fills the cache.
	cm.Invalidate(ctx)
	cm.setProductList(ctx, version, stale)

	_, _, ok = cm.GetProductList(ctx)
	assert.False(t, ok)
}

func TestAllProductsDoesNotServeRemovedProduct(t *testing.T) {
	cm, mr := newMiniredisCache(t)

	catalog := []models.Product{{ID: 1, Name: "Tee"}, {ID: 2, Name: "Cap"}}
	svc := &fakeProductService{
		listFn: func(ctx context.Context) ([]models.Product, error) {
			return append([]models.Product{}, catalog...), nil
		},
		removeFn: func(ctx context.Context, id int64) (*models.Product, error) {
			for i, p := range catalog {
				if p.ID == id {
					catalog = append(catalog[:i], catalog[i+1:]...)
					return &p, nil
				}
			}
			return nil, nil
		},
	}
	pc := NewProductController(svc, cm, nil, zap.NewNop())
	r := gin.New()
	r.GET("/allproducts", pc.AllProducts)
	r.POST("/removeproduct", pc.RemoveProduct)

	get := func() string {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/allproducts", nil))
		return w.Body.String()
	}

	assert.Contains(t, get(), `"Tee"`)
	assert.Eventually(t, func() bool { return len(mr.Keys()) > 0 }, time.Second, 10*time.Millisecond)

	w := postJSON(r, "/removeproduct", `{"id":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, get(), `"Tee"`)
}
