package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/models"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services"
	"go.uber.org/zap"
)

type AccountServiceAPI interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthController struct {
	service AccountServiceAPI
	metrics *aws_pkg.MetricsClient
	logger  *zap.Logger
}

func NewAuthController(service AccountServiceAPI, metrics *aws_pkg.MetricsClient, logger *zap.Logger) *AuthController {
	return &AuthController{service: service, metrics: metrics, logger: logger}
}

// Signup handles POST /signup. A taken email is a 400 with the conflict
// message so existing storefront clients keep working.
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": bindingMessage(err)})
		return
	}

	token, err := ac.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": apperrors.As(err).Message})
		return
	}
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	countAsync(ac.metrics, aws_pkg.MetricUsersRegistered)
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// Login handles POST /login. Bad credentials answer 200 with success=false.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	// a body without usable credentials fails like a wrong password
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "errors": services.MsgInvalidCredentials})
		return
	}

	token, err := ac.service.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusOK, gin.H{"success": false, "errors": apperrors.As(err).Message})
		return
	}
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}
