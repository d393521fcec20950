package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/models"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"go.uber.org/zap"
)

const (
	MsgAddedToCart     = "Added to cart"
	MsgRemovedFromCart = "Removed from cart"
)

type CartServiceAPI interface {
	GetCart(ctx context.Context, userID string) (models.Cart, error)
	AddItem(ctx context.Context, userID string, key models.ItemKey) error
	RemoveItem(ctx context.Context, userID string, key models.ItemKey) error
}

type CartController struct {
	service CartServiceAPI
	metrics *aws_pkg.MetricsClient
	logger  *zap.Logger
}

func NewCartController(service CartServiceAPI, metrics *aws_pkg.MetricsClient, logger *zap.Logger) *CartController {
	return &CartController{service: service, metrics: metrics, logger: logger}
}

func (cc *CartController) AddToCart(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": "Invalid itemId"})
		return
	}

	if err := cc.service.AddItem(c.Request.Context(), middleware.UserID(c), *req.ItemID); err != nil {
		cc.cartError(c, err)
		return
	}

	countAsync(cc.metrics, aws_pkg.MetricCartItemsAdded)
	c.String(http.StatusOK, MsgAddedToCart)
}

func (cc *CartController) RemoveFromCart(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": "Invalid itemId"})
		return
	}

	if err := cc.service.RemoveItem(c.Request.Context(), middleware.UserID(c), *req.ItemID); err != nil {
		cc.cartError(c, err)
		return
	}

	countAsync(cc.metrics, aws_pkg.MetricCartItemsRemoved)
	c.String(http.StatusOK, MsgRemovedFromCart)
}

func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.service.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		cc.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// cartError answers a vanished user with 404 {message}, the shape cart
// clients already parse.
func (cc *CartController) cartError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": apperrors.As(err).Message})
		return
	}
	respondError(c, cc.logger, err)
}
