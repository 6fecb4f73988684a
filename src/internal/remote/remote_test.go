package remote

import (
	"errors"
	"fmt"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   string
	}{
		{"gateway", &Gateway{Name: "gw1"}, "gw1"},
		{"plugin", &Plugin{GroupID: "g", ArtifactID: "a", Version: "1.0"}, "g:a:1.0"},
		{"plugin with classifier", &Plugin{GroupID: "g", ArtifactID: "a", Version: "1.0", PluginType: "war", Classifier: "x"}, "g:a:war:x:1.0"},
		{"org", &Org{Name: "acme"}, "acme"},
		{"api", &Api{Org: "acme", Name: "orders"}, "acme/orders"},
		{"version", &ApiVersion{Org: "acme", Api: "orders", Version: "1.0"}, "acme/orders/1.0"},
		{"policy", &Policy{Org: "acme", Api: "orders", Version: "1.0", DefinitionID: "RateLimitingPolicy", Ordinal: 2}, "acme/orders/1.0/RateLimitingPolicy#2"},
		{"publication", &Publication{Org: "acme", Api: "orders", Version: "1.0"}, "acme/orders/1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entity.Key().String(); got != tt.want {
				t.Errorf("Key().String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCapabilities_Missing(t *testing.T) {
	caps := Capabilities{TypeGateway: nil, TypeOrg: nil}
	if got := len(caps.Missing()); got != len(AllTypes) {
		t.Errorf("Expected nil capabilities to count as missing, got %d", got)
	}
}

func TestRemoteError(t *testing.T) {
	tests := []struct {
		name          string
		err           *RemoteError
		class         string
		unrecoverable bool
	}{
		{"transport", &RemoteError{Op: "GET /gateways/gw1", Cause: errors.New("connection refused")}, "transport", false},
		{"conflict", &RemoteError{Op: "POST /organizations", StatusCode: 409}, "4xx", false},
		{"unauthorized", &RemoteError{Op: "GET /system/status", StatusCode: 401}, "4xx", true},
		{"forbidden", &RemoteError{Op: "PUT /gateways/gw1", StatusCode: 403}, "4xx", true},
		{"server", &RemoteError{Op: "PUT /gateways/gw1", StatusCode: 503}, "5xx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Class(); got != tt.class {
				t.Errorf("Class() = %v, want %v", got, tt.class)
			}
			wrapped := fmt.Errorf("apply: %w", tt.err)
			if got := IsUnrecoverable(wrapped); got != tt.unrecoverable {
				t.Errorf("IsUnrecoverable() = %v, want %v", got, tt.unrecoverable)
			}
		})
	}

	err := &RemoteError{Op: "POST /organizations", StatusCode: 409, Message: "org exists"}
	if got := err.Error(); got != "POST /organizations: 409 Conflict: org exists" {
		t.Errorf("Error() = %q", got)
	}
	if !IsNotFound(&RemoteError{StatusCode: 404}) || IsNotFound(err) {
		t.Error("IsNotFound mismatch")
	}
}

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    ServerVersion
		wantErr bool
	}{
		{"", ServerV12x, false},
		{"v11x", ServerV11x, false},
		{"V12X", ServerV12x, false},
		{"v13x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseServerVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseServerVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseServerVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}
