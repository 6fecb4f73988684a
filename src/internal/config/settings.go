package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/utils"
)

const (
	DefaultAddress        = "http://localhost:8080/apiman"
	DefaultUsername       = "admin"
	DefaultPassword       = "admin123"
	DefaultServerVersion  = "v12x"
	DefaultTimeoutSeconds = 30
	DefaultMaxRetries     = 3
	DefaultWorkers        = 1
)

type Settings struct {
	Server ServerSettings `toml:"server"`
	Apply  ApplySettings  `toml:"apply"`
	Log    LogSettings    `toml:"log"`

	_absPath string
}

type ServerSettings struct {
	// Address is the management API root, including the context path.
	Address  string `toml:"address" env:"APIMAN_SERVER_ADDRESS" validate:"required,url"`
	Username string `toml:"username" env:"APIMAN_SERVER_USERNAME"`
	Password string `toml:"password" env:"APIMAN_SERVER_PASSWORD"`
	// Version selects the API dialect: v11x or v12x.
	Version        string `toml:"version" env:"APIMAN_SERVER_VERSION" validate:"required,oneof=v11x v12x"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"APIMAN_SERVER_TIMEOUT_SECONDS" validate:"gte=1"`
	// MaxRetries bounds retries of idempotent requests (0 = no retries).
	MaxRetries int `toml:"max_retries" env:"APIMAN_SERVER_MAX_RETRIES" validate:"gte=0,lte=10"`
}

type ApplySettings struct {
	// Workers bounds concurrent remote calls; 1 applies sequentially.
	Workers int `toml:"workers" env:"APIMAN_APPLY_WORKERS" validate:"gte=1,lte=64"`
	// PropertiesFile is used when no -properties-file flag is given. A relative
	// path is taken from the settings file directory.
	PropertiesFile string `toml:"properties_file" env:"APIMAN_APPLY_PROPERTIES_FILE"`
}

type LogSettings struct {
	Verbose bool `toml:"verbose" env:"APIMAN_LOG_VERBOSE"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Address:        DefaultAddress,
			Username:       DefaultUsername,
			Password:       DefaultPassword,
			Version:        DefaultServerVersion,
			TimeoutSeconds: DefaultTimeoutSeconds,
			MaxRetries:     DefaultMaxRetries,
		},
		Apply: ApplySettings{Workers: DefaultWorkers},
	}
}

// LoadSettings layers the TOML file at path (skipped when path is empty) and
// the environment over the defaults, then validates the result.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		if err := s.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(s); err != nil {
		return nil, apperrors.NewConfigError("failed to read environment", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) readFile(path string) error {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return apperrors.NewConfigError("failed to get absolute path", err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewConfigError(fmt.Sprintf("settings file not found: %s", absPath), nil)
		}
		return apperrors.NewConfigError("failed to read settings file", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return apperrors.NewConfigError(fmt.Sprintf("failed to parse settings file at line %d, column %d", row, col), err)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return apperrors.NewConfigError("unknown keys in settings file", errors.New(serr.String()))
		}
		return apperrors.NewConfigError("failed to parse settings file", err)
	}

	s._absPath = absPath
	s.Apply.PropertiesFile = utils.ResolvePath(s.Apply.PropertiesFile, filepath.Dir(absPath))
	log.Debugf("Settings file path: %s", absPath)
	return nil
}

// Path returns the absolute path of the loaded settings file, if any.
func (s *Settings) Path() string {
	return s._absPath
}

// Timeout returns the HTTP timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Server.TimeoutSeconds) * time.Second
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports all problems at once.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewConfigError("invalid settings", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, e := range verrs {
		path := e.Namespace()
		if idx := strings.Index(path, "."); idx != -1 {
			path = path[idx+1:]
		}
		problems = append(problems, fmt.Sprintf("%s: %s", path, validationMessage(e)))
	}
	return apperrors.NewConfigError("invalid settings", errors.New(strings.Join(problems, "; ")))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", e.Tag())
	}
}
