package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vispana/apppackage-client/apppackage"
	"github.com/vispana/apppackage-client/common/api"
	"github.com/vispana/apppackage-client/gateway"
	"github.com/vispana/apppackage-client/remote/remotetest"
)

const (
	listURL    = "http://cfg:19071/application/v2/tenant/default/application/"
	appURL     = listURL + "default/environment/prod/region/default/instance/default"
	contentURL = appURL + "/content/"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(defaultConfigHost string) *gin.Engine {
	getter := remotetest.NewGetter()
	getter.Listings[listURL] = []string{listURL + "default"}
	getter.Files[appURL] = []byte(`{"generation": 3}`)
	getter.Listings[contentURL] = []string{contentURL + "services.xml", contentURL + "models/"}
	getter.Listings[contentURL+"models/"] = []string{contentURL + "models/ranker.onnx"}
	getter.Files[contentURL+"services.xml"] = []byte("<services/>")
	getter.Files[contentURL+"models/ranker.onnx"] = []byte{0x08, 0x01}

	service := apppackage.NewService(getter)
	return api.NewRouter(gateway.Routes(service, defaultConfigHost))
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) api.BusinessError {
	body := api.BusinessError{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTree(t *testing.T) {
	w := get(newRouter(""), "/api/apppackage/tree?config_host=cfg")
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Root struct {
			Name     string                     `json:"name"`
			Path     string                     `json:"path"`
			Children map[string]json.RawMessage `json:"children"`
		} `json:"root"`
		TotalFiles       int `json:"totalFiles"`
		TotalDirectories int `json:"totalDirectories"`
	}
	body := decode(t, w, &summary)

	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "content", summary.Root.Name)
	assert.Equal(t, "/", summary.Root.Path)
	assert.Len(t, summary.Root.Children, 2)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.TotalDirectories)
}

func TestFile(t *testing.T) {
	router := newRouter("cfg")

	var file apppackage.FileContent
	body := decode(t, get(router, "/api/apppackage/file?file_path=services.xml"), &file)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, contentURL+"services.xml", file.URL)
	assert.Equal(t, "<services/>", file.Content)

	body = decode(t, get(router, "/api/apppackage/file?file_path=models/ranker.onnx"), &file)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, apppackage.BinaryFileContent, file.Content)

	body = decode(t, get(router, "/api/apppackage/file"), nil)
	assert.Equal(t, api.ErrValidation.Code, body.Code)
}

func TestOverview(t *testing.T) {
	var overview apppackage.PackageOverview
	body := decode(t, get(newRouter("cfg"), "/api/apppackage/overview"), &overview)

	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "3", overview.Generation)
	assert.Equal(t, "<services/>", overview.ServicesContent)
	assert.Equal(t, "ranker.onnx", overview.ModelsContent)
}

func TestComponentsWithoutArchive(t *testing.T) {
	var fs struct {
		ComponentArchiveName string          `json:"componentArchiveName"`
		Root                 json.RawMessage `json:"root"`
		TotalFiles           int             `json:"totalFiles"`
	}
	body := decode(t, get(newRouter("cfg"), "/api/apppackage/components"), &fs)

	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "", fs.ComponentArchiveName)
	assert.Equal(t, "null", string(fs.Root))
	assert.Equal(t, 0, fs.TotalFiles)
}

func TestConfigHostErrors(t *testing.T) {
	body := decode(t, get(newRouter(""), "/api/apppackage/tree"), nil)
	assert.Equal(t, gateway.ErrConfigHostRequired.Code, body.Code)

	body = decode(t, get(newRouter(""), "/api/apppackage/tree?config_host=other"), nil)
	assert.Equal(t, gateway.ErrApplicationNotFound.Code, body.Code)

	body = decode(t, get(newRouter(""), "/api/apppackage/overview?config_host=http://:1"), nil)
	assert.Equal(t, gateway.ErrInvalidConfigHost.Code, body.Code)
}

func TestDownload(t *testing.T) {
	w := get(newRouter("cfg"), "/api/apppackage/download")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="vespa-app-package.zip"`, w.Header().Get("Content-Disposition"))

	data := w.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(content)
	}

	assert.Len(t, contents, 3)
	assert.Equal(t, "<services/>", contents["services.xml"])
	assert.Equal(t, "", contents["models/"])
	assert.Equal(t, "\x08\x01", contents["models/ranker.onnx"])
}

func TestDownloadApplicationNotFound(t *testing.T) {
	w := get(newRouter(""), "/api/apppackage/download?config_host=other")

	assert.Empty(t, w.Header().Get("Content-Disposition"))
	body := decode(t, w, nil)
	assert.Equal(t, gateway.ErrApplicationNotFound.Code, body.Code)
}
