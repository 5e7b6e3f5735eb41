package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/shared/server/middleware"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Options configures the HTTP router. RateRules is optional; nil disables
// throttling, which keeps handler tests free to hammer endpoints.
type Options struct {
	Env             string
	CORSAllowOrigin []string
	RateRules       map[string]middleware.RateRule
	Registrars      []RouteRegistrar
}

// DefaultRateRules throttles the expensive paths. Uploads write blobs and
// schedule extraction work; QA fans out a keyword search per question.
func DefaultRateRules() map[string]middleware.RateRule {
	return map[string]middleware.RateRule{
		"upload":  {PerSecond: 1, Burst: 10},
		"qa":      {PerSecond: 5, Burst: 20},
		"default": {PerSecond: 20, Burst: 60},
	}
}

func rateGroup(c *gin.Context) string {
	switch {
	case c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/documents/upload"):
		return "upload"
	case strings.Contains(c.FullPath(), "/qa/"):
		return "qa"
	default:
		return "default"
	}
}

// NewRouter builds the gin engine with the standard middleware chain and all
// feature routes mounted under /api/v1.
func NewRouter(opts Options) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(opts.CORSAllowOrigin))
	r.Use(middleware.Principal())
	if len(opts.RateRules) > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitOptions{
			Rules:    opts.RateRules,
			GroupFor: rateGroup,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	for _, reg := range opts.Registrars {
		reg.RegisterRoutes(api)
	}
	return r
}
