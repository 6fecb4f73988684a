// Package fakeapiman is an in-memory stand-in for the apiman management API.
//
// It serves the subset of endpoints apimanctl talks to, in either server
// dialect, behind HTTP basic auth:
//
//	GET|POST        /gateways, /gateways/{name} (GET|PUT)
//	GET|POST        /plugins
//	POST            /organizations, /organizations/{org} (GET|PUT)
//	POST            /organizations/{org}/{apis|services}, .../{api} (GET|PUT)
//	POST            .../{api}/versions, .../versions/{version} (GET|PUT)
//	GET|POST        .../versions/{version}/policies, .../policies/{id} (PUT)
//	POST            /actions
//
// Errors are written as apiman error beans. Every request is recorded and
// failures can be injected per method and path, which lets tests exercise
// retries and partial failures:
//
//	srv := fakeapiman.New(fakeapiman.WithVersion(remote.ServerV11x))
//	ts := httptest.NewServer(srv.Handler())
//	srv.Fail(http.MethodPost, "/organizations", http.StatusInternalServerError, 1)
package fakeapiman
