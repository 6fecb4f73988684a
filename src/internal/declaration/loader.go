package declaration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/hashing"
	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/placeholder"
	"github.com/maksimkurb/apimanctl/src/internal/utils"
)

// LoadFile reads path and loads it with Load.
func LoadFile(path string, format Format, sources placeholder.Sources) (*Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("failed to open declaration %s", path), err)
	}
	defer utils.CloseOrWarn(f, path)

	proxy := hashing.NewMD5ReaderProxy(f)
	data, err := io.ReadAll(proxy)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("failed to read declaration %s", path), err)
	}
	sum, _ := proxy.GetChecksum()
	log.Debugf("Read declaration %s (%d bytes, md5 %s)", path, len(data), sum)

	return Load(data, format, sources)
}

// Load parses, resolves, expands, binds and validates a document.
//
// sources are consulted before the document's own properties section.
// Errors carry one of the PARSE_ERROR, PLACEHOLDER_ERROR or VALIDATION_ERROR
// codes. Validation problems are returned together as ValidationErrors.
func Load(data []byte, format Format, sources placeholder.Sources) (*Declaration, error) {
	tree, err := parseTree(data, format)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("failed to parse %s document", format), err)
	}

	props, err := documentProperties(tree)
	if err != nil {
		return nil, apperrors.NewParseError("invalid properties section", err)
	}
	if len(props) > 0 {
		sources = sources.With(placeholder.NewMapSource(DocumentPropertiesSource, props))
	}

	if err := resolvePlaceholders(tree, placeholder.NewResolver(sources)); err != nil {
		return nil, apperrors.NewPlaceholderError("failed to resolve placeholders", err)
	}
	delete(tree, propertiesKey)

	problems, suppressed := expandShared(tree)

	decl, err := bind(tree)
	if err != nil {
		return nil, apperrors.NewParseError("document does not match the declaration schema", err)
	}
	applyDefaults(decl)

	problems = append(problems, validateDeclaration(decl, suppressed)...)
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("declaration is invalid", problems)
	}

	canonical, err := json.Marshal(decl)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode declaration", err)
	}
	decl.checksum = hashing.SumBytes(canonical)

	return decl, nil
}

func bind(tree map[string]any) (*Declaration, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var decl Declaration
	if err := dec.Decode(&decl); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, fmt.Errorf("%s: cannot use %s as %s", typeErr.Field, typeErr.Value, typeErr.Type)
		}
		return nil, err
	}
	return &decl, nil
}

func applyDefaults(d *Declaration) {
	for _, gw := range d.Gateways() {
		if gw != nil && gw.Type == "" {
			gw.Type = DefaultGatewayType
		}
	}
	for _, p := range d.Plugins() {
		if p != nil && p.Type == "" {
			p.Type = DefaultPluginType
		}
	}
	if d.Org == nil {
		return
	}
	for _, api := range d.Org.Apis {
		if api == nil {
			continue
		}
		for _, v := range api.Versions {
			if v != nil && v.Endpoint != nil && v.Endpoint.Type == "" {
				v.Endpoint.Type = DefaultEndpointType
			}
		}
	}
}
