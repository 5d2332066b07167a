package gateway

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/vispana/apppackage-client/apppackage"
	"github.com/vispana/apppackage-client/common/api"
)

type Config struct {
	Endpoint          string   // http endpoint
	DefaultConfigHost string   // config host used when a request carries none
	OriginsAllowed    []string // CORS origins, all origins if empty
}

// Routes returns the route factory of the application package API.
func Routes(service *apppackage.Service, defaultConfigHost string) api.RouteFactory {
	controller := NewRestController(service, defaultConfigHost)

	return func(router *gin.Engine) {
		appPackageApi := router.Group("/api/apppackage")
		appPackageApi.GET("/tree", api.Wrap(controller.getTree, translateError))
		appPackageApi.GET("/file", api.Wrap(controller.getFile, translateError))
		appPackageApi.GET("/download", controller.downloadArchive)
		appPackageApi.GET("/components", api.Wrap(controller.getComponents, translateError))
		appPackageApi.GET("/overview", api.Wrap(controller.getOverview, translateError))
	}
}

// MustServe serves the application package API until ctx is done.
func MustServe(ctx context.Context, service *apppackage.Service, config Config) {
	api.MustServe(ctx, config.Endpoint, Routes(service, config.DefaultConfigHost), api.RouterOption{
		OriginsAllowed: config.OriginsAllowed,
		ExposedHeaders: []string{"Content-Disposition"},
	})
}
