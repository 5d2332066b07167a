package apppackage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vispana/apppackage-client/common/urlpath"
	"github.com/vispana/apppackage-client/components"
	"github.com/vispana/apppackage-client/fstree"
	"github.com/vispana/apppackage-client/remote"
)

// PackageOverview is the summary of a deployed application package.
type PackageOverview struct {
	Generation        string                    `json:"appPackageGeneration"`
	ServicesContent   string                    `json:"servicesContent"`
	HostsContent      string                    `json:"hostsContent"`
	ModelsContent     string                    `json:"modelsContent"`
	ComponentsContent *fstree.ArchiveFilesystem `json:"javaComponentsContent"`
}

type applicationInfo struct {
	Generation json.Number `json:"generation"`
}

// Overview collects the generation, the services and hosts definitions, the model names and the
// components filesystem of the application at appURL. Missing parts are left empty.
func Overview(ctx context.Context, getter remote.Getter, builder *components.Builder, appURL string) *PackageOverview {
	contentURL := ContentURL(appURL)
	info := remote.GetWithDefault(ctx, getter, appURL, applicationInfo{})

	return &PackageOverview{
		Generation:        info.Generation.String(),
		ServicesContent:   remote.Text(ctx, getter, contentURL+"services.xml", ""),
		HostsContent:      remote.Text(ctx, getter, contentURL+"hosts.xml", ""),
		ModelsContent:     modelNames(remote.List(ctx, getter, contentURL+"models/")),
		ComponentsContent: builder.ComponentFilesystem(ctx, contentURL),
	}
}

// modelNames joins the last segment of each models directory entry with new lines.
func modelNames(entries []string) string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, urlpath.ExtractName(entry))
	}
	return strings.Join(names, "\n")
}
