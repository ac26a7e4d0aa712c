package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/handlers"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	cfg      *config.Config
}

func NewRoutes(provider *handlers.Provider, cfg *config.Config) *Routes {
	return &Routes{handlers: provider, cfg: cfg}
}

// Register attaches the media routes under /v1 and under the /api prefix older clients use.
func (r *Routes) Register(router gin.IRouter) {
	uploadLimit := middlewares.RateLimitMiddleware(r.cfg.UploadRateLimit, r.cfg.UploadRateBurst)
	for _, prefix := range []string{"/v1", "/api"} {
		r.registerMedia(router.Group(prefix), uploadLimit)
	}
}

func (r *Routes) registerMedia(group *gin.RouterGroup, uploadLimit gin.HandlerFunc) {
	media := r.handlers.Media
	group.POST("/media/upload", uploadLimit, media.Upload)
	group.POST("/media", uploadLimit, media.UploadLegacy)
	group.GET("/media/mine", media.ListMine)
	group.GET("/media/post/:post_id", media.GetByPostID)
	group.POST("/media/batch", media.Batch)
	group.POST("/media/presign", media.Presign)
	group.DELETE("/media/post/:post_id", media.DeleteByPostID)
	group.DELETE("/media/:id", media.DeleteByID)
}
