package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const httpStatusCodeInternalError = 600

// Controller handles a request and returns either the response data or an error.
type Controller func(c *gin.Context) (interface{}, error)

// ErrorTranslator maps domain errors to business errors. It returns nil for unknown errors.
type ErrorTranslator func(err error) *BusinessError

// Wrap adapts a controller to a gin handler that replies with the BusinessError envelope.
func Wrap(controller Controller, translators ...ErrorTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := controller(c)
		if err != nil {
			reply(c, translate(err, translators))
		} else if result == nil {
			c.JSON(http.StatusOK, ErrNil)
		} else {
			c.JSON(http.StatusOK, ErrNil.WithData(result))
		}
	}
}

func translate(err error, translators []ErrorTranslator) error {
	for _, translator := range translators {
		if be := translator(err); be != nil {
			return be
		}
	}
	return err
}

func reply(c *gin.Context, err error) {
	var be *BusinessError
	var ve validator.ValidationErrors

	switch {
	case errors.As(err, &be):
		// custom business error
		c.JSON(http.StatusOK, be)
	case errors.As(err, &ve):
		// binding error
		c.JSON(http.StatusOK, ErrValidation.WithData(ve.Error()))
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Failed to handle request")
		c.JSON(httpStatusCodeInternalError, ErrInternal.WithData(err.Error()))
	}
}

// Abort replies with the envelope of err unless the response has been started already, in which
// case the connection is left to fail on the client side.
func Abort(c *gin.Context, err error, translators ...ErrorTranslator) {
	if c.Writer.Written() {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Warn("Response aborted after it was started")
		c.Abort()
		return
	}

	reply(c, translate(err, translators))
	c.Abort()
}
