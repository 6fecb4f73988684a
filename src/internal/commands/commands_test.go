package commands

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maksimkurb/apimanctl/src/internal/config"
	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/testutil/fakeapiman"
)

const document = `
properties:
  backend: http://orders:9000
system:
  gateways:
    - name: gw1
      config: {endpoint: "${gateway.endpoint:http://gw1:8080/api}"}
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1.0"
          gateway: gw1
          published: true
          endpoint: {url: "${backend}"}
          policies:
            - {type: RateLimitingPolicy, config: {limit: 10}}
`

func init() {
	log.DisableLogs()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func newFakeServer(t *testing.T) (*fakeapiman.Server, *AppContext, *bytes.Buffer) {
	t.Helper()
	srv := fakeapiman.New(fakeapiman.WithCredentials(config.DefaultUsername, config.DefaultPassword))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	settings := config.DefaultSettings()
	settings.Server.Address = ts.URL + fakeapiman.BasePath
	settings.Server.MaxRetries = 0

	var out bytes.Buffer
	return srv, &AppContext{Settings: settings, Stdout: &out}, &out
}

func run(cmd Runner, args []string, ctx *AppContext) error {
	if err := cmd.Init(args, ctx); err != nil {
		return err
	}
	return cmd.Run()
}

func TestApply_Success(t *testing.T) {
	srv, ctx, out := newFakeServer(t)
	path := writeFile(t, "apis.yml", document)

	err := run(CreateApplyCommand(), []string{"-f", path, "-workers", "2"}, ctx)
	if code := ExitCode(err); code != ExitOK {
		t.Fatalf("Expected exit 0, got %d: %v", code, err)
	}

	v, ok := srv.Version("acme", "orders", "1.0")
	if !ok || v.Status != fakeapiman.StatusPublished {
		t.Errorf("Expected published version, got %+v", v)
	}
	if v.Config["endpoint"] != "http://orders:9000" {
		t.Errorf("Expected resolved endpoint, got %v", v.Config["endpoint"])
	}
	if !strings.Contains(out.String(), "6 applied, 0 failed, 0 skipped") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
}

func TestApply_PartialFailureExitCode(t *testing.T) {
	srv, ctx, out := newFakeServer(t)
	srv.Fail(http.MethodPost, "/organizations/acme/apis", http.StatusInternalServerError, -1)
	path := writeFile(t, "apis.yml", document)

	err := run(CreateApplyCommand(), []string{"-f", path}, ctx)
	if code := ExitCode(err); code != ExitApplyFailed {
		t.Fatalf("Expected exit %d, got %d: %v", ExitApplyFailed, code, err)
	}
	if _, ok := srv.Gateway("gw1"); !ok {
		t.Error("Expected independent gateway to be applied")
	}
	if !strings.Contains(out.String(), "2 applied, 1 failed, 3 skipped") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
}

func TestApply_FlagsOverrideSettings(t *testing.T) {
	srv, ctx, _ := newFakeServer(t)
	address := ctx.Settings.Server.Address
	ctx.Settings.Server.Address = "http://127.0.0.1:1/apiman"
	path := writeFile(t, "apis.yml", document)

	err := run(CreateApplyCommand(), []string{"-f", path, "-server", address, "-server-version", "v12x"}, ctx)
	if err != nil {
		t.Fatalf("Expected success with -server override, got %v", err)
	}
	if ctx.Settings.Server.Address != "http://127.0.0.1:1/apiman" {
		t.Error("Expected shared settings not to be modified")
	}
	if srv.CountRequests("", "") == 0 {
		t.Error("Expected requests to reach the overridden server")
	}
}

func TestApply_WrongCredentials(t *testing.T) {
	srv, ctx, _ := newFakeServer(t)
	path := writeFile(t, "apis.yml", document)

	err := run(CreateApplyCommand(), []string{"-f", path, "-server-password", "wrong"}, ctx)
	if code := ExitCode(err); code != ExitApplyFailed {
		t.Fatalf("Expected exit %d, got %d: %v", ExitApplyFailed, code, err)
	}
	if n := srv.CountRequests("", ""); n != 1 {
		t.Errorf("Expected the run to halt after the first 401, got %d requests", n)
	}
}

func TestApply_InitErrors(t *testing.T) {
	valid := writeFile(t, "apis.yml", document)
	invalid := writeFile(t, "bad.yml", "org:\n  apis: []\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing file flag", []string{}, ExitUsage},
		{"unknown flag", []string{"-nope"}, ExitUsage},
		{"bad server version", []string{"-f", valid, "-server-version", "v9"}, ExitUsage},
		{"bad workers", []string{"-f", valid, "-workers", "-1"}, ExitUsage},
		{"bad format", []string{"-f", valid, "-format", "xml"}, ExitUsage},
		{"invalid document", []string{"-f", invalid}, ExitInvalidDocs},
		{"missing document", []string{"-f", filepath.Join(t.TempDir(), "absent.yml")}, ExitInvalidDocs},
		{"bad property", []string{"-f", valid, "-P", "novalue"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ctx, _ := newFakeServer(t)
			err := CreateApplyCommand().Init(tt.args, ctx)
			if code := ExitCode(err); code != tt.code {
				t.Errorf("Expected exit %d, got %d: %v", tt.code, code, err)
			}
			if n := srv.CountRequests("", ""); n != 0 {
				t.Errorf("Expected no remote calls during Init, got %d", n)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	ctx := &AppContext{Stdout: &out}
	path := writeFile(t, "apis.yml", document)

	if err := run(CreateValidateCommand(), []string{"-f", path}, ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "1 gateway(s), 0 plugin(s), 1 api(s), 1 version(s), 1 policy(ies)") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestValidate_Unresolved(t *testing.T) {
	path := writeFile(t, "apis.yml", strings.Replace(document, "${backend}", "${missing.key}", 1))

	err := CreateValidateCommand().Init([]string{"-f", path}, &AppContext{})
	if !apperrors.HasCode(err, apperrors.ErrCodePlaceholder) {
		t.Fatalf("Expected PLACEHOLDER_ERROR, got %v", err)
	}
	if ExitCode(err) != ExitInvalidDocs {
		t.Errorf("Expected exit %d", ExitInvalidDocs)
	}
}

func TestPlaceholderPrecedence(t *testing.T) {
	path := writeFile(t, "apis.yml", document)
	propsFile := writeFile(t, "values.properties", "backend=http://from-file\ngateway.endpoint=http://gw-file\n")
	t.Setenv("BACKEND", "http://from-env")
	t.Setenv("GATEWAY_ENDPOINT", "http://gw-env")

	tests := []struct {
		name     string
		args     []string
		backend  string
		endpoint string
	}{
		{"env beats document", []string{"-f", path}, "http://from-env", "http://gw-env"},
		{"file beats env", []string{"-f", path, "-properties-file", propsFile}, "http://from-file", "http://gw-file"},
		{"flag beats file", []string{"-f", path, "-properties-file", propsFile, "-P", "backend=http://from-flag"}, "http://from-flag", "http://gw-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ctx := &AppContext{Stdout: &out}
			if err := run(CreateRenderCommand(), append(tt.args, "-output-format", "json"), ctx); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			decl, err := declaration.Load(out.Bytes(), declaration.FormatJSON, nil)
			if err != nil {
				t.Fatalf("Rendered output does not load: %v", err)
			}
			if got := decl.Org.Apis[0].Versions[0].Endpoint.URL; got != tt.backend {
				t.Errorf("backend = %q, want %q", got, tt.backend)
			}
			if got := decl.FindGateway("gw1").Config.Endpoint; got != tt.endpoint {
				t.Errorf("gateway endpoint = %q, want %q", got, tt.endpoint)
			}
		})
	}
}

func TestPropertiesFileFromSettings(t *testing.T) {
	path := writeFile(t, "apis.yml", document)
	settings := config.DefaultSettings()
	settings.Apply.PropertiesFile = writeFile(t, "values.properties", "backend=http://from-settings\n")

	var out bytes.Buffer
	ctx := &AppContext{Settings: settings, Stdout: &out}
	if err := run(CreateRenderCommand(), []string{"-f", path, "-output-format", "json"}, ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "http://from-settings") {
		t.Errorf("Expected value from settings properties file in:\n%s", out.String())
	}
}

func TestRender_DefaultsToInputFormat(t *testing.T) {
	var out bytes.Buffer
	path := writeFile(t, "apis.yml", document)

	if err := run(CreateRenderCommand(), []string{"-f", path}, &AppContext{Stdout: &out}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := declaration.Load(out.Bytes(), declaration.FormatYAML, nil); err != nil {
		t.Errorf("Expected YAML output, got error %v:\n%s", err, out.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{errors.New("flag provided but not defined"), ExitUsage},
		{apperrors.NewConfigError("bad settings", nil), ExitUsage},
		{apperrors.NewInternalError("boom", nil), ExitUsage},
		{apperrors.NewParseError("bad yaml", nil), ExitInvalidDocs},
		{apperrors.NewPlaceholderError("unresolved", nil), ExitInvalidDocs},
		{apperrors.NewValidationError("invalid", nil), ExitInvalidDocs},
		{apperrors.NewRemoteError("apply finished with failures", nil), ExitApplyFailed},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.code {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}

func TestPropertyFlag(t *testing.T) {
	var p propertyFlag
	if err := p.Set("a=1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := p.Set("b=x=y"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := p.Set("novalue"); err == nil {
		t.Error("Expected error for entry without '='")
	}
	if p.String() != "a=1,b=x=y" {
		t.Errorf("Unexpected value %q", p.String())
	}
}
