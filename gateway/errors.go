package gateway

import (
	"github.com/pkg/errors"
	"github.com/vispana/apppackage-client/apppackage"
	"github.com/vispana/apppackage-client/common/api"
)

var (
	ErrConfigHostRequired  = api.NewBusinessError(101, "Config host is required")
	ErrInvalidConfigHost   = api.NewBusinessError(102, "Invalid config host")
	ErrApplicationNotFound = api.NewBusinessError(103, "Application not found")
)

// translateError maps the locator failures to business errors.
func translateError(err error) *api.BusinessError {
	switch {
	case errors.Is(err, apppackage.ErrInvalidConfigHost):
		return ErrInvalidConfigHost.WithData(err.Error())
	case errors.Is(err, apppackage.ErrApplicationNotFound):
		return ErrApplicationNotFound.WithData(err.Error())
	default:
		return nil
	}
}
