package apppackage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vispana/apppackage-client/apppackage"
	"github.com/vispana/apppackage-client/components"
	"github.com/vispana/apppackage-client/remote/remotetest"
)

const appURL = "http://cfg:19071/application/v2/tenant/default/application/default/environment/prod/region/default/instance/default"

func TestOverview(t *testing.T) {
	var jar bytes.Buffer
	w := zip.NewWriter(&jar)
	f, err := w.Create("com/example/Searcher.java")
	require.NoError(t, err)
	_, err = f.Write([]byte("class Searcher {}"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	getter := remotetest.NewGetter()
	getter.Files[appURL] = []byte(`{"generation": 42, "name": "default"}`)
	getter.Files[baseURL+"services.xml"] = []byte("<services/>")
	getter.Files[baseURL+"hosts.xml"] = []byte("<hosts/>")
	getter.Listings[baseURL+"models/"] = []string{baseURL + "models/ranker.onnx", baseURL + "models/bert/"}
	getter.Listings[baseURL+"components/"] = []string{baseURL + "components/app-deploy.jar"}
	getter.Files[baseURL+"components/app-deploy.jar"] = jar.Bytes()

	overview := apppackage.Overview(context.Background(), getter, components.NewBuilder(getter), appURL)

	assert.Equal(t, "42", overview.Generation)
	assert.Equal(t, "<services/>", overview.ServicesContent)
	assert.Equal(t, "<hosts/>", overview.HostsContent)
	assert.Equal(t, "ranker.onnx\nbert", overview.ModelsContent)
	require.NotNil(t, overview.ComponentsContent)
	assert.Equal(t, "app-deploy.jar", overview.ComponentsContent.ComponentArchiveName)
	assert.Equal(t, 1, overview.ComponentsContent.TotalFiles)

	data, err := json.Marshal(overview)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"appPackageGeneration":"42"`)
	assert.Contains(t, string(data), `"javaComponentsContent":{"componentArchiveName":"app-deploy.jar"`)
}

func TestOverviewMissingParts(t *testing.T) {
	getter := remotetest.NewGetter()

	overview := apppackage.Overview(context.Background(), getter, components.NewBuilder(getter), appURL)

	assert.Equal(t, "", overview.Generation)
	assert.Equal(t, "", overview.ServicesContent)
	assert.Equal(t, "", overview.HostsContent)
	assert.Equal(t, "", overview.ModelsContent)
	require.NotNil(t, overview.ComponentsContent)
	assert.Nil(t, overview.ComponentsContent.Root)
}
