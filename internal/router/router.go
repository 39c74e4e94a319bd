package router

import (
	"net/http"
	"time"

	"allergyguard/internal/auth"
	"allergyguard/internal/family"
	"allergyguard/internal/meals"
	"allergyguard/internal/middleware"
	"allergyguard/internal/ocr"
	"allergyguard/internal/scan"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Deps holds every handler the API serves. Labels may be nil when object
// storage is not configured.
type Deps struct {
	Log         *zap.Logger
	Tokens      middleware.TokenValidator
	CORSOrigins []string

	Auth   *auth.Handler
	Family *family.Handler
	Scan   *scan.Handler
	Labels *ocr.Handler
	Meals  *meals.Handler
}

func New(d Deps) *gin.Engine {
	r := gin.New()

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Log),
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ───────────────────────── AUTH ─────────────────────────
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.GET("/me", middleware.AuthMiddleware(d.Tokens), d.Auth.Me)
	}

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(d.Tokens))

	// ───────────────────────── FAMILY ─────────────────────────
	familyGroup := protected.Group("/family")
	{
		familyGroup.GET("", d.Family.List)
		familyGroup.POST("", d.Family.Add)
		familyGroup.DELETE("", d.Family.Delete)
		familyGroup.PUT("/members/:id", d.Family.Update)
		familyGroup.DELETE("/members/:id", d.Family.Delete)
	}

	// ───────────────────────── SCANNER ─────────────────────────
	protected.POST("/analyze", d.Scan.Analyze)
	protected.GET("/analyze", d.Scan.MethodNotAllowed)

	scans := protected.Group("/scans")
	{
		scans.GET("", d.Scan.History)
		scans.GET("/:id", d.Scan.Get)
		scans.DELETE("/:id", d.Scan.Delete)
	}

	// ───────────────────────── LABEL OCR ─────────────────────────
	if d.Labels != nil {
		labels := scans.Group("/labels")
		{
			labels.POST("", d.Labels.Upload)
			labels.GET("/:id", d.Labels.Status)
			labels.POST("/:id/retry", d.Labels.Retry)
		}
	}

	// ───────────────────────── MEALS ─────────────────────────
	plans := protected.Group("/meal-plans")
	{
		plans.GET("", d.Meals.Week)
		plans.POST("/meals", d.Meals.Create)
		plans.PUT("/meals/:id", d.Meals.Update)
		plans.DELETE("/meals/:id", d.Meals.Delete)
	}
	protected.POST("/meal-suggestions", d.Meals.Suggest)

	return r
}
