package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maksimkurb/apimanctl/src/internal/config"
	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/placeholder"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitInvalidDocs = 2
	ExitApplyFailed = 3
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
	Settings   *config.Settings
	// Context defaults to context.Background.
	Context context.Context
	// Stdout receives command output; defaults to os.Stdout.
	Stdout io.Writer
}

func (c *AppContext) context() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

func (c *AppContext) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *AppContext) settings() *config.Settings {
	if c.Settings == nil {
		return config.DefaultSettings()
	}
	return c.Settings
}

// ExitCode maps an error returned by Init or Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperrors.HasCode(err, apperrors.ErrCodeParse),
		apperrors.HasCode(err, apperrors.ErrCodePlaceholder),
		apperrors.HasCode(err, apperrors.ErrCodeValidation):
		return ExitInvalidDocs
	case apperrors.HasCode(err, apperrors.ErrCodeRemote),
		apperrors.HasCode(err, apperrors.ErrCodeDependencySkipped):
		return ExitApplyFailed
	default:
		return ExitUsage
	}
}

// propertyFlag collects repeatable -P key=value overrides in order.
type propertyFlag []string

func (p *propertyFlag) String() string {
	return strings.Join(*p, ",")
}

func (p *propertyFlag) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*p = append(*p, value)
	return nil
}

// documentFlags are shared by every command that reads a declaration.
type documentFlags struct {
	File           string
	Format         string
	Properties     propertyFlag
	PropertiesFile string
}

func (d *documentFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.File, "f", "", "Path to the declaration document (required)")
	fs.StringVar(&d.Format, "format", "", "Document format: json or yaml (default: from file extension)")
	fs.Var(&d.Properties, "P", "Placeholder override key=value (repeatable)")
	fs.StringVar(&d.PropertiesFile, "properties-file", "", "File with key=value placeholder values")
}

func (d *documentFlags) format() (declaration.Format, error) {
	if d.Format != "" {
		return declaration.ParseFormat(d.Format)
	}
	return declaration.FormatFromPath(d.File)
}

// sources orders placeholder lookups: -P, then the properties file, then the
// environment. Document properties are appended by the loader.
func (d *documentFlags) sources() (placeholder.Sources, error) {
	explicit, err := placeholder.ParseProperties(d.Properties)
	if err != nil {
		return nil, apperrors.NewPlaceholderError("invalid -P value", err)
	}
	sources := placeholder.Sources{placeholder.NewMapSource("command line", explicit)}

	if d.PropertiesFile != "" {
		fileProps, err := placeholder.LoadPropertiesFile(d.PropertiesFile)
		if err != nil {
			return nil, apperrors.NewPlaceholderError("failed to load properties file", err)
		}
		sources = append(sources, placeholder.NewMapSource(d.PropertiesFile, fileProps))
	}

	return append(sources, placeholder.NewEnvSource()), nil
}

// loadDeclarationOrFail loads and validates the document named by the flags.
// The settings properties file applies when the flag is not given.
func loadDeclarationOrFail(d *documentFlags, settings *config.Settings) (*declaration.Declaration, error) {
	if d.File == "" {
		return nil, apperrors.NewConfigError("-f is required", nil)
	}
	if d.PropertiesFile == "" {
		d.PropertiesFile = settings.Apply.PropertiesFile
	}
	format, err := d.format()
	if err != nil {
		return nil, apperrors.NewConfigError("unknown document format", err)
	}
	sources, err := d.sources()
	if err != nil {
		return nil, err
	}

	decl, err := declaration.LoadFile(d.File, format, sources)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded declaration %s (checksum %s)", d.File, decl.Checksum())
	return decl, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
