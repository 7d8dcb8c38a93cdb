package gateway

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID propagates an incoming request id or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestIDFrom returns the request id assigned by RequestID.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger emits one structured log line per request, levelled by
// status class.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id":  RequestIDFrom(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"ip":          c.ClientIP(),
		})
		switch {
		case status >= 500:
			entry.Error("http_request")
		case status >= 400:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
	}
}

var (
	instrumentOnce sync.Once
	requestCount   *prometheus.CounterVec
	responseTime   prometheus.Histogram
	responseSize   prometheus.Histogram
	requestSize    prometheus.Histogram
)

// Instrumentation records request counts and latency/size histograms.
func Instrumentation() gin.HandlerFunc {
	instrumentOnce.Do(func() {
		requestCount = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "request",
			Name:      "requests_count",
			Help:      "Number of requests per each endpoint",
		}, []string{"code", "method", "handler", "host", "url"})

		responseTime = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "response",
			Name:      "response_time_hist",
			Help:      "portal response duration",
		})

		responseSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "response",
			Name:      "size_histogram",
			Help:      "portal response size",
		})

		requestSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "request",
			Name:      "size_hist",
			Help:      "Request size instrumenter",
		})

		colls := []prometheus.Collector{requestCount, responseTime, responseSize, requestSize}
		for _, v := range colls {
			if err := prometheus.Register(v); err != nil {
				panic(err)
			}
		}
	})
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start)) * 1e-6 // to millisecond

		status := strconv.Itoa(c.Writer.Status())
		requestCount.WithLabelValues(status, c.Request.Method, c.HandlerName(), c.Request.Host, c.Request.URL.Path).Inc()
		responseTime.Observe(duration)
		responseSize.Observe(float64(c.Writer.Size()))
		requestSize.Observe(float64(c.Request.ContentLength))
	}
}

const languageKey = "lang"

// Language resolves the reader's language from the lang cookie, falling back
// to Accept-Language. Only en and ru are served.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, err := c.Cookie("lang")
		if err != nil || (lang != "en" && lang != "ru") {
			lang = "en"
			if strings.HasPrefix(strings.ToLower(c.GetHeader("Accept-Language")), "ru") {
				lang = "ru"
			}
		}
		c.Set(languageKey, lang)
		c.Next()
	}
}

// LanguageFrom returns the language tag resolved by Language.
func LanguageFrom(c *gin.Context) string {
	if lang := c.GetString(languageKey); lang != "" {
		return lang
	}
	return "en"
}
