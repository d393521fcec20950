package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/models"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services"
	"go.uber.org/zap"
)

type ProductServiceAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error)
	RemoveProduct(ctx context.Context, id int64) (*models.Product, error)
}

type ProductController struct {
	service ProductServiceAPI
	cache   *CacheManager
	metrics *aws_pkg.MetricsClient
	logger  *zap.Logger
}

func NewProductController(service ProductServiceAPI, cache *CacheManager, metrics *aws_pkg.MetricsClient, logger *zap.Logger) *ProductController {
	return &ProductController{
		service: service,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// AddProduct handles POST /addproduct.
func (pc *ProductController) AddProduct(c *gin.Context) {
	var req models.NewProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": bindingMessage(err)})
		return
	}

	product, err := pc.service.CreateProduct(c.Request.Context(), services.ProductCreateRequest{
		Name:     req.Name,
		Image:    req.Image,
		Category: req.Category,
		NewPrice: *req.NewPrice,
		OldPrice: *req.OldPrice,
	})
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	countAsync(pc.metrics, aws_pkg.MetricProductsCreated)
	pc.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))

	c.JSON(http.StatusOK, gin.H{"success": true, "name": product.Name})
}

// RemoveProduct handles POST /removeproduct. It succeeds whether or not a
// product with the id existed.
func (pc *ProductController) RemoveProduct(c *gin.Context) {
	var req models.RemoveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": bindingMessage(err)})
		return
	}

	removed, err := pc.service.RemoveProduct(c.Request.Context(), *req.ID)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	name := req.Name
	if removed != nil {
		name = removed.Name
		pc.cache.Invalidate(c.Request.Context())
		countAsync(pc.metrics, aws_pkg.MetricProductsRemoved)
		pc.logger.Info("Product removed", zap.Int64("product_id", removed.ID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "name": name})
}

// AllProducts handles GET /allproducts.
func (pc *ProductController) AllProducts(c *gin.Context) {
	products, version, ok := pc.cache.GetProductList(c.Request.Context())
	if ok {
		c.JSON(http.StatusOK, products)
		return
	}

	products, err := pc.service.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	pc.cache.SetProductListAsync(version, products)
	c.JSON(http.StatusOK, products)
}
