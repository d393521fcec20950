package services

import (
	"context"
	"errors"
	"time"

	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/repository"
)

type IProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	MaxID(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	DeleteByID(ctx context.Context, id int64) (*models.Product, error)
}

// maxCreateAttempts bounds the retries when a concurrent add takes the same id.
const maxCreateAttempts = 5

type ProductCreateRequest struct {
	Name     string
	Image    string
	Category string
	NewPrice float64
	OldPrice float64
}

type ProductService struct {
	productRepo IProductRepository
	now         func() time.Time
}

func NewProductService(pr IProductRepository) *ProductService {
	return &ProductService{
		productRepo: pr,
		now:         time.Now,
	}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch products", err)
	}
	return products, nil
}

// CreateProduct stores the product under id = highest stored id + 1 (1 for an
// empty catalog). The unique index on id turns a concurrent add that picked the
// same id into ErrDuplicate, and the id is recomputed.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateRequest) (*models.Product, error) {
	product := &models.Product{
		Name:      req.Name,
		Image:     req.Image,
		Category:  req.Category,
		NewPrice:  req.NewPrice,
		OldPrice:  req.OldPrice,
		Date:      s.now().UTC(),
		Available: true,
	}

	var err error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		var maxID int64
		maxID, err = s.productRepo.MaxID(ctx)
		if err != nil {
			return nil, apperrors.Internal("Failed to read product ids", err)
		}
		product.ID = maxID + 1

		err = s.productRepo.Create(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Internal("Failed to create product", err)
		}
	}
	return nil, apperrors.Conflict("Product id already taken", err)
}

// RemoveProduct deletes the product with the given id. It returns nil, nil
// when nothing matched.
func (s *ProductService) RemoveProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.productRepo.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to remove product", err)
	}
	return product, nil
}
