package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/avdeevm/ai-gallery/internal/api/handlers/analysis"
	"github.com/avdeevm/ai-gallery/internal/api/handlers/gallery"
	"github.com/avdeevm/ai-gallery/internal/api/handlers/search"
	"github.com/avdeevm/ai-gallery/internal/api/handlers/signedurl"
	"github.com/avdeevm/ai-gallery/internal/api/handlers/upload"
	"github.com/avdeevm/ai-gallery/internal/middleware"
)

func Setup(
	uh *upload.Handler,
	ah *analysis.Handler,
	sh *search.Handler,
	suh *signedurl.Handler,
	gh *gallery.Handler,
) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/upload", uh.Upload)         // uploading a batch of images
	api.GET("/upload/status", uh.Status)   // batch progress for the UI
	api.POST("/analyze", ah.Analyze)       // (re-)analyzing an image
	api.POST("/search", sh.Search)         // free-text metadata search
	api.POST("/signed-url", suh.Sign)      // time-limited download URLs
	api.GET("/gallery", gh.Snapshot)       // current gallery view
	api.GET("/previews/:name", gh.Preview) // transient preview bytes
	api.POST("/gallery/clear", gh.Clear)   // session-end cleanup

	return r
}
