package apppackage

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/common/urlpath"
	"github.com/vispana/apppackage-client/remote"
)

const (
	DefaultConfigPort = "19071"

	applicationsPath = "/application/v2/tenant/default/application/"
	instancePath     = "/environment/prod/region/default/instance/default"
	contentPath      = "/content/"
)

var (
	ErrApplicationNotFound = errors.New("no application deployed on config host")
	ErrInvalidConfigHost   = errors.New("invalid config host")
)

// NormalizeConfigHost turns a bare config host into a base URL, defaulting to http and the
// config server port.
func NormalizeConfigHost(configHost string) (string, error) {
	host := strings.TrimSuffix(strings.TrimSpace(configHost), "/")
	if len(host) == 0 {
		return "", errors.WithMessage(ErrInvalidConfigHost, "empty host")
	}

	if !urlpath.IsAbsoluteURL(host) {
		host = "http://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return "", errors.WithMessagef(ErrInvalidConfigHost, "%s: %v", configHost, err)
	}

	if len(u.Hostname()) == 0 {
		return "", errors.WithMessagef(ErrInvalidConfigHost, "%s: missing host name", configHost)
	}

	if len(u.Port()) == 0 {
		u.Host = u.Host + ":" + DefaultConfigPort
	}

	return u.String(), nil
}

// ContentURL returns the listing URL of the application package content.
func ContentURL(appURL string) string {
	return strings.TrimSuffix(appURL, "/") + contentPath
}

// Locator resolves the URL of the application deployed on a config server.
type Locator struct {
	getter remote.Getter
	logger *logrus.Logger
}

// NewLocator creates a locator querying the config server through getter.
func NewLocator(getter remote.Getter, opt ...common.LogOption) *Locator {
	return &Locator{
		getter: getter,
		logger: common.NewLogger(opt...),
	}
}

// ApplicationURL returns the URL of the default instance of the first application deployed on
// configHost.
func (locator *Locator) ApplicationURL(ctx context.Context, configHost string) (string, error) {
	host, err := NormalizeConfigHost(configHost)
	if err != nil {
		return "", err
	}

	listURL := host + applicationsPath
	apps := remote.List(ctx, locator.getter, listURL)
	if len(apps) == 0 {
		return "", errors.WithMessagef(ErrApplicationNotFound, "config host %s", host)
	}

	appURL := strings.TrimSuffix(urlpath.Resolve(listURL, apps[0]), "/")
	if !strings.Contains(appURL, "/environment/") {
		appURL += instancePath
	}

	locator.logger.WithFields(logrus.Fields{
		"configHost": host,
		"app":        appURL,
	}).Debug("Application located")

	return appURL, nil
}
