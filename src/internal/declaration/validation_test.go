package declaration

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
)

func loadProblems(t *testing.T, input string) ValidationErrors {
	t.Helper()
	_, err := Load([]byte(input), FormatYAML, nil)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
		t.Fatalf("Expected VALIDATION_ERROR, got %v", err)
	}
	var problems ValidationErrors
	if !errors.As(err, &problems) {
		t.Fatalf("Expected ValidationErrors in chain, got %T", err)
	}
	return problems
}

func hasProblem(problems ValidationErrors, fieldPath, messagePart string) bool {
	for _, p := range problems {
		if p.FieldPath == fieldPath && strings.Contains(p.Message, messagePart) {
			return true
		}
	}
	return false
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	input := `
system:
  gateways:
    - name: gw1
      config:
        endpoint: http://gw:8080
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1.0"
          gateway: gw1
          endpoint:
            url: http://orders
        - version: "1.0"
          gateway: gw-missing
          endpoint:
            url: http://orders
`
	problems := loadProblems(t, input)

	if !hasProblem(problems, "org.apis[0].versions[1].version", "duplicate version label") {
		t.Errorf("Expected duplicate version label problem, got %v", problems)
	}
	if !hasProblem(problems, "org.apis[0].versions[1].gateway", "unknown gateway: gw-missing") {
		t.Errorf("Expected dangling gateway problem, got %v", problems)
	}
	if len(problems) != 2 {
		t.Errorf("Expected exactly 2 problems, got %d: %v", len(problems), problems)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		fieldPath string
		message   string
	}{
		{
			name:      "empty document sections",
			input:     "properties:\n  a: b\n",
			fieldPath: "",
			message:   "must contain 'system' or 'org'",
		},
		{
			name: "gateway without name",
			input: `
system:
  gateways:
    - config:
        endpoint: http://gw
`,
			fieldPath: "system.gateways[0].name",
			message:   "field is required",
		},
		{
			name: "gateway without config",
			input: `
system:
  gateways:
    - name: gw1
`,
			fieldPath: "system.gateways[0].config",
			message:   "existing",
		},
		{
			name: "gateway with bad endpoint",
			input: `
system:
  gateways:
    - name: gw1
      config:
        endpoint: not a url
`,
			fieldPath: "system.gateways[0].config.endpoint",
			message:   "valid URL",
		},
		{
			name: "duplicate gateway",
			input: `
system:
  gateways:
    - name: gw1
      existing: true
    - name: gw1
      existing: true
`,
			fieldPath: "system.gateways[1].name",
			message:   "duplicate gateway name",
		},
		{
			name: "unsupported gateway type",
			input: `
system:
  gateways:
    - name: gw1
      type: SOAP
      existing: true
`,
			fieldPath: "system.gateways[0].type",
			message:   "must be one of",
		},
		{
			name: "duplicate plugin",
			input: `
system:
  plugins:
    - {groupId: g, artifactId: a, version: "1"}
    - {groupId: g, artifactId: a, version: "1"}
`,
			fieldPath: "system.plugins[1]",
			message:   "duplicate plugin",
		},
		{
			name: "plugin without version",
			input: `
system:
  plugins:
    - {groupId: g, artifactId: a}
`,
			fieldPath: "system.plugins[0].version",
			message:   "field is required",
		},
		{
			name: "org without name",
			input: `
org:
  description: nameless
`,
			fieldPath: "org.name",
			message:   "field is required",
		},
		{
			name: "duplicate api",
			input: `
org:
  name: acme
  apis:
    - name: orders
    - name: orders
`,
			fieldPath: "org.apis[1].name",
			message:   "duplicate api name",
		},
		{
			name: "bad endpoint type",
			input: `
system:
  gateways: [{name: gw1, existing: true}]
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1"
          gateway: gw1
          endpoint: {url: "http://orders", type: grpc}
`,
			fieldPath: "org.apis[0].versions[0].endpoint.type",
			message:   "must be one of: rest soap",
		},
		{
			name: "missing endpoint",
			input: `
system:
  gateways: [{name: gw1, existing: true}]
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1"
          gateway: gw1
`,
			fieldPath: "org.apis[0].versions[0].endpoint",
			message:   "field is required",
		},
		{
			name: "policy without type",
			input: `
system:
  gateways: [{name: gw1, existing: true}]
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1"
          gateway: gw1
          endpoint: {url: "http://orders"}
          policies:
            - config: {a: 1}
`,
			fieldPath: "org.apis[0].versions[0].policies[0].type",
			message:   "field is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := loadProblems(t, tt.input)
			if !hasProblem(problems, tt.fieldPath, tt.message) {
				t.Errorf("Expected problem at %q containing %q, got %v", tt.fieldPath, tt.message, problems)
			}
		})
	}
}

func TestValidate_SharedReferences(t *testing.T) {
	input := `
shared:
  policies:
    a: {$ref: b}
    b: {$ref: a}
  endpoints:
    backend: {url: "http://orders"}
system:
  gateways: [{name: gw1, existing: true}]
org:
  name: acme
  apis:
    - name: orders
      versions:
        - version: "1"
          gateway: gw1
          endpoint: {$ref: nowhere}
          policies:
            - $ref: a
            - $ref: missing
`
	problems := loadProblems(t, input)

	if !hasProblem(problems, "org.apis[0].versions[0].endpoint", `unknown reference "nowhere"`) {
		t.Errorf("Expected dangling endpoint ref, got %v", problems)
	}
	if !hasProblem(problems, "org.apis[0].versions[0].policies[0]", "reference cycle in shared.policies: a -> b -> a") {
		t.Errorf("Expected cycle problem, got %v", problems)
	}
	if !hasProblem(problems, "org.apis[0].versions[0].policies[1]", `unknown reference "missing"`) {
		t.Errorf("Expected dangling policy ref, got %v", problems)
	}
	// follow-up problems at the broken sites are not repeated
	if len(problems) != 3 {
		t.Errorf("Expected 3 problems, got %d: %v", len(problems), problems)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	ve := ValidationErrors{
		{ItemName: "gw1", FieldPath: "system.gateways[0].config", Message: "field is required"},
		{FieldPath: "org.name", Message: "field is required"},
	}
	out := ve.Error()
	if !strings.Contains(out, "validation failed with 2 error(s)") {
		t.Errorf("Expected count header, got %q", out)
	}
	if !strings.Contains(out, "1. [gw1] system.gateways[0].config: field is required") {
		t.Errorf("Expected item-scoped line, got %q", out)
	}
	if !strings.Contains(out, "2. org.name: field is required") {
		t.Errorf("Expected plain line, got %q", out)
	}
	if (ValidationErrors{}).Error() != "no validation errors" {
		t.Error("Expected empty message")
	}
}
