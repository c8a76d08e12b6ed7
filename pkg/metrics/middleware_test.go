package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		route    string
		rawPath  string
		expected string
	}{
		{name: "route template wins", route: "/auctions/:id/", rawPath: "/auctions/42/", expected: "/auctions/:id/"},
		{name: "unmatched path", route: "", rawPath: "/does/not/exist", expected: "unmatched"},
		{name: "empty path", route: "", rawPath: "", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(tt.route, tt.rawPath))
		})
	}
}

func TestGinPrometheusMiddleware_CountsByRouteTemplate(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/auctions/:id/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	counter := HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/auctions/:id/", "200")
	before := testutil.ToFloat64(counter)

	// Act
	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auctions/"+id+"/", nil))
	}

	// Assert
	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestGinPrometheusMiddleware_SkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-health-test"))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	counter := HttpRequestsTotal.WithLabelValues("metrics-health-test", http.MethodGet, "/health", "200")
	assert.Equal(t, float64(0), testutil.ToFloat64(counter))
}

func TestDbTimer_RecordsErrors(t *testing.T) {
	counter := DbErrors.WithLabelValues("metrics-db-test", string(DbOpInsert))
	before := testutil.ToFloat64(counter)

	NewDbTimer("metrics-db-test", DbOpInsert, "bids").ObserveDuration(nil)
	NewDbTimer("metrics-db-test", DbOpInsert, "bids").ObserveDuration(errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
