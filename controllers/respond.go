package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yashrajoria/storefront/apperrors"
	"github.com/yashrajoria/storefront/logger"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"go.uber.org/zap"
)

const ServiceName = "storefront"

// respondError writes err as {success:false, errors:<message>} with the
// status carried by the *apperrors.Error. Causes of 5xx are logged, never sent.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	appErr := apperrors.As(err)
	if appErr.Code >= 500 {
		logger.FromContext(c, log).Error(appErr.Message, zap.Error(appErr.Err))
	}
	_ = c.Error(err)
	c.JSON(appErr.Code, gin.H{"success": false, "errors": appErr.Message})
}

// bindingMessage turns a binding error into a short client-facing message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "Invalid " + fe.Field() + ": failed " + fe.Tag()
	}
	return "Invalid request body"
}

// countAsync records a business counter without holding up the response.
func countAsync(m *aws_pkg.MetricsClient, metric string) {
	if !m.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.RecordCount(ctx, metric, map[string]string{"Service": ServiceName})
	}()
}
