package apiman

import (
	"fmt"
	"net/url"

	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// layout holds the dialect differences between server versions.
type layout struct {
	apis          string // path segment for APIs
	publishAction string
	publicField   string // version config flag for public access
}

func layoutFor(v remote.ServerVersion) layout {
	if v == remote.ServerV11x {
		return layout{apis: "services", publishAction: "publishService", publicField: "publicService"}
	}
	return layout{apis: "apis", publishAction: "publishAPI", publicField: "publicAPI"}
}

func (l layout) gateways() string {
	return "/gateways"
}

func (l layout) gateway(name string) string {
	return "/gateways/" + url.PathEscape(name)
}

func (l layout) plugins() string {
	return "/plugins"
}

func (l layout) orgs() string {
	return "/organizations"
}

func (l layout) org(org string) string {
	return "/organizations/" + url.PathEscape(org)
}

func (l layout) apisOf(org string) string {
	return l.org(org) + "/" + l.apis
}

func (l layout) api(org, api string) string {
	return l.apisOf(org) + "/" + url.PathEscape(api)
}

func (l layout) versions(org, api string) string {
	return l.api(org, api) + "/versions"
}

func (l layout) version(org, api, version string) string {
	return l.versions(org, api) + "/" + url.PathEscape(version)
}

func (l layout) policies(org, api, version string) string {
	return l.version(org, api, version) + "/policies"
}

func (l layout) policy(org, api, version string, id int64) string {
	return fmt.Sprintf("%s/%d", l.policies(org, api, version), id)
}

func (l layout) actions() string {
	return "/actions"
}
