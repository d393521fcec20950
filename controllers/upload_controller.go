package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/models"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services"
	"go.uber.org/zap"
)

type UploadController struct {
	uploader services.ImageUploader
	metrics  *aws_pkg.MetricsClient
	logger   *zap.Logger
}

func NewUploadController(uploader services.ImageUploader, metrics *aws_pkg.MetricsClient, logger *zap.Logger) *UploadController {
	return &UploadController{uploader: uploader, metrics: metrics, logger: logger}
}

// Upload handles POST /upload. Any failure, including a missing payload,
// is reported as a 500 with the same message; the host decides what is a
// valid image.
func (uc *UploadController) Upload(c *gin.Context) {
	var req models.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.FromContext(c, uc.logger).Warn("Upload request without image", zap.Error(err))
		uc.fail(c)
		return
	}

	url, err := uc.uploader.Upload(c.Request.Context(), req.Image)
	if err != nil {
		logger.FromContext(c, uc.logger).Error("Image upload error", zap.Error(err))
		uc.fail(c)
		return
	}

	countAsync(uc.metrics, aws_pkg.MetricImagesUploaded)
	c.JSON(http.StatusOK, gin.H{"success": true, "image_url": url})
}

func (uc *UploadController) fail(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": services.MsgImageUploadFailed})
}
