package declaration

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single problem with context.
type ValidationError struct {
	ItemName  string // Entity the problem belongs to (e.g. "gw1", "orders/1.0")
	FieldPath string // Document path (e.g. "org.apis[0].versions[1].gateway")
	Message   string // Human-readable error message
}

// ValidationErrors is the ordered list of every problem found in a document.
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report document field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "required_if":
		return "field is required unless the gateway is marked existing"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// validateDeclaration checks the bound document. Problems under any of the
// suppressed path prefixes were already reported during expansion.
func validateDeclaration(d *Declaration, suppressed []string) ValidationErrors {
	var validationErrors ValidationErrors

	if d.System == nil && d.Org == nil {
		return ValidationErrors{{
			FieldPath: "",
			Message:   "declaration must contain 'system' or 'org' section",
		}}
	}

	validationErrors = append(validationErrors, validateGateways(d.Gateways())...)
	validationErrors = append(validationErrors, validatePlugins(d.Plugins())...)
	if d.Org != nil {
		validationErrors = append(validationErrors, validateOrg(d.Org, d)...)
	}

	if len(suppressed) == 0 {
		return validationErrors
	}
	filtered := validationErrors[:0]
	for _, ve := range validationErrors {
		if !underAny(ve.FieldPath, suppressed) {
			filtered = append(filtered, ve)
		}
	}
	return filtered
}

func validateGateways(gateways []*Gateway) ValidationErrors {
	var validationErrors ValidationErrors
	seenNames := make(map[string]bool)

	for i, gw := range gateways {
		path := indexPath("system.gateways", i)
		if gw == nil {
			validationErrors = append(validationErrors, ValidationError{FieldPath: path, Message: "gateway cannot be empty"})
			continue
		}
		itemName := gw.Name
		if itemName == "" {
			itemName = fmt.Sprintf("gateway[%d]", i)
		}

		if err := validate.Struct(gw); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, path, itemName)...)
		}

		if gw.Name != "" && seenNames[gw.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: path + ".name",
				Message:   fmt.Sprintf("duplicate gateway name: %s", gw.Name),
			})
		}
		seenNames[gw.Name] = true
	}

	return validationErrors
}

func validatePlugins(plugins []*Plugin) ValidationErrors {
	var validationErrors ValidationErrors
	seen := make(map[string]bool)

	for i, p := range plugins {
		path := indexPath("system.plugins", i)
		if p == nil {
			validationErrors = append(validationErrors, ValidationError{FieldPath: path, Message: "plugin cannot be empty"})
			continue
		}
		itemName := p.Coordinates()

		if err := validate.Struct(p); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, path, itemName)...)
			continue
		}

		if seen[itemName] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: path,
				Message:   fmt.Sprintf("duplicate plugin: %s", itemName),
			})
		}
		seen[itemName] = true
	}

	return validationErrors
}

func validateOrg(org *Org, d *Declaration) ValidationErrors {
	var validationErrors ValidationErrors

	if err := validate.Struct(org); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "org", org.Name)...)
	}

	seenAPIs := make(map[string]bool)
	for i, api := range org.Apis {
		path := indexPath("org.apis", i)
		if api == nil {
			validationErrors = append(validationErrors, ValidationError{FieldPath: path, Message: "api cannot be empty"})
			continue
		}
		itemName := api.Name
		if itemName == "" {
			itemName = fmt.Sprintf("api[%d]", i)
		}

		if err := validate.Struct(api); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, path, itemName)...)
		}

		if api.Name != "" && seenAPIs[api.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: path + ".name",
				Message:   fmt.Sprintf("duplicate api name: %s", api.Name),
			})
		}
		seenAPIs[api.Name] = true

		validationErrors = append(validationErrors, validateVersions(api, path, d)...)
	}

	return validationErrors
}

func validateVersions(api *Api, apiPath string, d *Declaration) ValidationErrors {
	var validationErrors ValidationErrors
	seenLabels := make(map[Text]bool)

	for j, v := range api.Versions {
		path := indexPath(apiPath+".versions", j)
		if v == nil {
			validationErrors = append(validationErrors, ValidationError{ItemName: api.Name, FieldPath: path, Message: "version cannot be empty"})
			continue
		}
		itemName := fmt.Sprintf("%s/%s", api.Name, v.Version)

		if err := validate.Struct(v); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, path, itemName)...)
		}

		if v.Version != "" && seenLabels[v.Version] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: path + ".version",
				Message:   fmt.Sprintf("duplicate version label: %s", v.Version),
			})
		}
		seenLabels[v.Version] = true

		if v.Gateway != "" && d.FindGateway(v.Gateway) == nil {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: path + ".gateway",
				Message:   fmt.Sprintf("unknown gateway: %s", v.Gateway),
			})
		}

		for k, p := range v.Policies {
			policyPath := indexPath(path+".policies", k)
			if p == nil {
				validationErrors = append(validationErrors, ValidationError{ItemName: itemName, FieldPath: policyPath, Message: "policy cannot be empty"})
				continue
			}
			if err := validate.Struct(p); err != nil {
				validationErrors = append(validationErrors, convertValidatorErrors(err, policyPath, itemName)...)
			}
		}
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			// Namespace is "Type.field.sub"; drop the Go type name
			fieldPath := fieldPrefix
			if _, rest, ok := strings.Cut(e.Namespace(), "."); ok && rest != "" {
				fieldPath = childPath(fieldPrefix, rest)
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func underAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}
