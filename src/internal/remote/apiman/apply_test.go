package apiman

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	"github.com/maksimkurb/apimanctl/src/internal/engine"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

const declarationYAML = `
system:
  gateways:
    - name: gw1
      config: {endpoint: "http://gw1:8080/api", username: apiman, password: secret}
  plugins:
    - {groupId: io.apiman.plugins, artifactId: transformation, version: "1.5"}
org:
  name: acme
  description: Acme Corp
  apis:
    - name: orders
      versions:
        - version: "1.0"
          gateway: gw1
          published: true
          endpoint:
            url: "http://orders:9000"
            public: true
            properties: {timeout: 30}
          policies:
            - {type: RateLimitingPolicy, config: {limit: 10}}
            - {type: CachingPolicy, config: {ttl: 60}}
            - {type: RateLimitingPolicy, config: {limit: 1000}}
`

func applyDeclaration(t *testing.T, c *Client, input string) *engine.Report {
	t.Helper()
	decl, err := declaration.Load([]byte(input), declaration.FormatYAML, nil)
	if err != nil {
		t.Fatalf("Failed to load declaration: %v", err)
	}
	eng, err := engine.New(c.Capabilities(), engine.Options{Workers: 4})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng.Apply(context.Background(), decl)
}

func TestApply_EndToEnd(t *testing.T) {
	for _, version := range []remote.ServerVersion{remote.ServerV11x, remote.ServerV12x} {
		t.Run(string(version), func(t *testing.T) {
			c, srv := newVersionedClient(t, version)

			report := applyDeclaration(t, c, declarationYAML)
			if err := report.Err(); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if counts := report.Counts(); counts[engine.OutcomeApplied] != 9 {
				t.Errorf("Expected 9 applied entities, got %v", counts)
			}

			if org, ok := srv.Org("acme"); !ok || org.Description != "Acme Corp" {
				t.Errorf("Unexpected org %+v", org)
			}
			if len(srv.Plugins()) != 1 {
				t.Errorf("Expected 1 plugin, got %d", len(srv.Plugins()))
			}

			v, ok := srv.Version("acme", "orders", "1.0")
			if !ok {
				t.Fatal("Expected version 1.0 to exist")
			}
			if v.Status != "Published" {
				t.Errorf("Expected published version, got %s", v.Status)
			}
			if v.Config[srv.PublicField()] != true {
				t.Errorf("Expected %s=true in %v", srv.PublicField(), v.Config)
			}
			if props, _ := v.Config["endpointProperties"].(map[string]any); props["timeout"] != "30" {
				t.Errorf("Expected endpoint properties, got %v", v.Config["endpointProperties"])
			}

			policies := srv.Policies("acme", "orders", "1.0")
			want := []string{"RateLimitingPolicy", "CachingPolicy", "RateLimitingPolicy"}
			if len(policies) != len(want) {
				t.Fatalf("Expected %d policies, got %d", len(want), len(policies))
			}
			for i, p := range policies {
				if p.PolicyDefinitionID != want[i] {
					t.Errorf("policy %d = %s, want %s", i, p.PolicyDefinitionID, want[i])
				}
			}
		})
	}
}

func TestApply_SecondRunUpdates(t *testing.T) {
	c, srv := newTestClient(t)

	if err := applyDeclaration(t, c, declarationYAML).Err(); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	posts := srv.CountRequests(http.MethodPost, "")

	report := applyDeclaration(t, c, declarationYAML)
	if err := report.Err(); err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if n := srv.CountRequests(http.MethodPost, ""); n != posts {
		t.Errorf("Expected no new POSTs on second run, got %d more", n-posts)
	}
	for _, e := range report.Entries {
		if e.Action == engine.ActionCreated {
			t.Errorf("%s %s was created again", e.Type, e.Key)
		}
	}
	if n := len(srv.Policies("acme", "orders", "1.0")); n != 3 {
		t.Errorf("Expected policies not to be duplicated, got %d", n)
	}
}

func TestApply_PublishedVersionIsLeftAlone(t *testing.T) {
	c, srv := newTestClient(t)

	if err := applyDeclaration(t, c, declarationYAML).Err(); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	before := srv.Policies("acme", "orders", "1.0")

	changed := strings.NewReplacer(
		`url: "http://orders:9000"`, `url: "http://orders:9100"`,
		"{limit: 10}", "{limit: 20}",
	).Replace(declarationYAML)
	report := applyDeclaration(t, c, changed)
	if err := report.Err(); err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}

	versionPath := "/organizations/acme/apis/orders/versions/1.0"
	for _, r := range srv.Requests() {
		if r.Method == http.MethodPut && strings.HasPrefix(r.Path, versionPath) {
			t.Errorf("Unexpected %s %s on a published version", r.Method, r.Path)
		}
	}
	if v, _ := srv.Version("acme", "orders", "1.0"); v.Config["endpoint"] != "http://orders:9000" {
		t.Errorf("Expected endpoint to stay http://orders:9000, got %v", v.Config["endpoint"])
	}
	after := srv.Policies("acme", "orders", "1.0")
	if len(after) != len(before) {
		t.Fatalf("Expected %d policies, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i].Configuration != before[i].Configuration {
			t.Errorf("policy %d changed from %s to %s", i, before[i].Configuration, after[i].Configuration)
		}
	}
}

func TestApply_PolicyConfigKeepsLargeIntegers(t *testing.T) {
	c, srv := newTestClient(t)
	input := `
system:
  gateways:
    - name: gw1
      config: {endpoint: "http://gw1:8080/api"}
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1.0"
          gateway: gw1
          endpoint: {url: "http://orders:9000"}
          policies:
            - {type: IPWhitelistPolicy, config: {id: 9007199254740993, ratio: 0.1}}
`
	decl, err := declaration.Load([]byte(input), declaration.FormatYAML, nil)
	if err != nil {
		t.Fatalf("Failed to load declaration: %v", err)
	}
	pol := &remote.Policy{DefinitionID: "IPWhitelistPolicy", Config: decl.Org.Apis[0].Versions[0].Policies[0].Config}
	cfg, err := encodePolicyConfig(pol)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg != `{"id":9007199254740993,"ratio":0.1}` {
		t.Errorf("Expected config to be passed through verbatim, got %s", cfg)
	}

	if err := applyDeclaration(t, c, input).Err(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	policies := srv.Policies("acme", "orders", "1.0")
	if len(policies) != 1 || policies[0].Configuration != cfg {
		t.Errorf("Expected server to receive %s, got %+v", cfg, policies)
	}
}

func TestApply_PolicyOrdinalsUpdateTheRightInstance(t *testing.T) {
	c, srv := newTestClient(t)
	unpublished := `
system:
  gateways:
    - name: gw1
      config: {endpoint: "http://gw1:8080/api"}
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "2.0"
          gateway: gw1
          endpoint: {url: "http://orders:9000"}
          policies:
            - {type: RateLimitingPolicy, config: {limit: 10}}
            - {type: RateLimitingPolicy, config: {limit: %d}}
`
	if err := applyDeclaration(t, c, fmt.Sprintf(unpublished, 100)).Err(); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	if err := applyDeclaration(t, c, fmt.Sprintf(unpublished, 200)).Err(); err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}

	policies := srv.Policies("acme", "orders", "2.0")
	if len(policies) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(policies))
	}
	var first, second map[string]any
	json.Unmarshal([]byte(policies[0].Configuration), &first)
	json.Unmarshal([]byte(policies[1].Configuration), &second)
	if first["limit"] != float64(10) || second["limit"] != float64(200) {
		t.Errorf("Expected limits 10 and 200, got %v and %v", first["limit"], second["limit"])
	}
}

func TestApply_MissingGatewayOnServer(t *testing.T) {
	c, _ := newTestClient(t)
	input := `
system:
  gateways:
    - name: shared
      existing: true
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1"
          gateway: shared
          endpoint: {url: "http://orders:9000"}
`
	report := applyDeclaration(t, c, input)
	if report.Err() == nil {
		t.Fatal("Expected apply to fail")
	}
	counts := report.Counts()
	if counts[engine.OutcomeFailed] != 1 || counts[engine.OutcomeSkipped] != 1 || counts[engine.OutcomeApplied] != 2 {
		t.Errorf("Unexpected outcome counts %v", counts)
	}
}
