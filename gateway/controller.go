package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/apppackage"
	"github.com/vispana/apppackage-client/common/api"
)

const archiveFileName = "vespa-app-package.zip"

type hostQuery struct {
	ConfigHost string `form:"config_host" json:"config_host"`
}

type fileQuery struct {
	ConfigHost string `form:"config_host" json:"config_host"`
	FilePath   string `form:"file_path" json:"file_path" binding:"required"`
}

type RestController struct {
	service           *apppackage.Service
	defaultConfigHost string // used when a request carries no config_host
}

func NewRestController(service *apppackage.Service, defaultConfigHost string) *RestController {
	return &RestController{
		service:           service,
		defaultConfigHost: defaultConfigHost,
	}
}

func (ctrl *RestController) configHost(query hostQuery) (string, error) {
	if len(query.ConfigHost) > 0 {
		return query.ConfigHost, nil
	}

	if len(ctrl.defaultConfigHost) > 0 {
		return ctrl.defaultConfigHost, nil
	}

	return "", ErrConfigHostRequired
}

func (ctrl *RestController) bindConfigHost(c *gin.Context) (string, error) {
	var input hostQuery
	if err := c.ShouldBindQuery(&input); err != nil {
		return "", err
	}
	return ctrl.configHost(input)
}

func (ctrl *RestController) getTree(c *gin.Context) (interface{}, error) {
	host, err := ctrl.bindConfigHost(c)
	if err != nil {
		return nil, err
	}

	return ctrl.service.Tree(c, host)
}

func (ctrl *RestController) getFile(c *gin.Context) (interface{}, error) {
	var input fileQuery
	if err := c.ShouldBindQuery(&input); err != nil {
		return nil, err
	}

	host, err := ctrl.configHost(hostQuery{input.ConfigHost})
	if err != nil {
		return nil, err
	}

	return ctrl.service.File(c, host, input.FilePath)
}

func (ctrl *RestController) getComponents(c *gin.Context) (interface{}, error) {
	host, err := ctrl.bindConfigHost(c)
	if err != nil {
		return nil, err
	}

	return ctrl.service.Components(c, host)
}

func (ctrl *RestController) getOverview(c *gin.Context) (interface{}, error) {
	host, err := ctrl.bindConfigHost(c)
	if err != nil {
		return nil, err
	}

	return ctrl.service.Overview(c, host)
}

// downloadArchive streams the ZIP archive of the application package as an attachment. The
// response is chunked since the archive size is unknown until it is finalized.
func (ctrl *RestController) downloadArchive(c *gin.Context) {
	host, err := ctrl.bindConfigHost(c)
	if err != nil {
		api.Abort(c, err)
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", `attachment; filename="`+archiveFileName+`"`)

	if err = ctrl.service.Download(c, host, c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
		}

		logrus.WithError(err).WithField("configHost", host).Error("Failed to download application package")
		api.Abort(c, err, translateError)
	}
}
