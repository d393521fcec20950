package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
)

const metricsPublishTimeout = 5 * time.Second

type requestRecorder interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

// MetricsMiddleware publishes a CloudWatch sample per request.
func MetricsMiddleware(metrics *awspkg.MetricsClient, serviceName string) gin.HandlerFunc {
	return recordRequests(metrics, serviceName)
}

func recordRequests(rec requestRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rec.IsEnabled() {
			c.Next()
			return
		}

		began := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s := requestSample{
			status:  c.Writer.Status(),
			elapsed: time.Since(began),
		}
		s.dims = map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  statusClass(s.status),
		}
		go s.publish(rec)
	}
}

type requestSample struct {
	status  int
	elapsed time.Duration
	dims    map[string]string
}

func (s requestSample) counters() []string {
	switch {
	case s.status >= 500:
		return []string{awspkg.MetricHTTPRequests, awspkg.MetricHTTPErrors, awspkg.MetricHTTP5xx}
	case s.status >= 400:
		return []string{awspkg.MetricHTTPRequests, awspkg.MetricHTTPErrors, awspkg.MetricHTTP4xx}
	}
	return []string{awspkg.MetricHTTPRequests}
}

// publish runs detached from the request, so it gets its own deadline.
func (s requestSample) publish(rec requestRecorder) {
	ctx, cancel := context.WithTimeout(context.Background(), metricsPublishTimeout)
	defer cancel()

	for _, name := range s.counters() {
		_ = rec.RecordCount(ctx, name, s.dims)
	}
	_ = rec.RecordLatency(ctx, awspkg.MetricHTTPLatency, s.elapsed, s.dims)
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", code/100)
}
