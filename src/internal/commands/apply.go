package commands

import (
	"flag"

	"github.com/maksimkurb/apimanctl/src/internal/config"
	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	"github.com/maksimkurb/apimanctl/src/internal/engine"
	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
	"github.com/maksimkurb/apimanctl/src/internal/remote/apiman"
)

func CreateApplyCommand() *ApplyCommand {
	gc := &ApplyCommand{
		fs: newFlagSet("apply"),
	}

	gc.doc.register(gc.fs)
	gc.fs.StringVar(&gc.Server, "server", "", "Management API address (overrides settings)")
	gc.fs.StringVar(&gc.Username, "server-username", "", "Management API username (overrides settings)")
	gc.fs.StringVar(&gc.Password, "server-password", "", "Management API password (overrides settings)")
	gc.fs.StringVar(&gc.ServerVersion, "server-version", "", "Management API version: v11x or v12x (overrides settings)")
	gc.fs.IntVar(&gc.Workers, "workers", 0, "Concurrent remote calls, 1 = sequential (overrides settings)")

	return gc
}

type ApplyCommand struct {
	fs       *flag.FlagSet
	doc      documentFlags
	ctx      *AppContext
	settings config.Settings
	decl     *declaration.Declaration
	version  remote.ServerVersion

	Server        string
	Username      string
	Password      string
	ServerVersion string
	Workers       int
}

func (g *ApplyCommand) Name() string {
	return g.fs.Name()
}

func (g *ApplyCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}
	g.ctx = ctx

	g.settings = *ctx.settings()
	g.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			g.settings.Server.Address = g.Server
		case "server-username":
			g.settings.Server.Username = g.Username
		case "server-password":
			g.settings.Server.Password = g.Password
		case "server-version":
			g.settings.Server.Version = g.ServerVersion
		case "workers":
			g.settings.Apply.Workers = g.Workers
		}
	})
	if err := g.settings.Validate(); err != nil {
		return err
	}

	version, err := remote.ParseServerVersion(g.settings.Server.Version)
	if err != nil {
		return apperrors.NewConfigError("invalid server version", err)
	}
	g.version = version

	if decl, err := loadDeclarationOrFail(&g.doc, &g.settings); err != nil {
		return err
	} else {
		g.decl = decl
	}

	return nil
}

func (g *ApplyCommand) Run() error {
	client := apiman.NewClient(apiman.Config{
		Address:    g.settings.Server.Address,
		Username:   g.settings.Server.Username,
		Password:   g.settings.Server.Password,
		Version:    g.version,
		Timeout:    g.settings.Timeout(),
		MaxRetries: uint(g.settings.Server.MaxRetries),
	})

	eng, err := engine.New(client.Capabilities(), engine.Options{
		Workers:      g.settings.Apply.Workers,
		OnTransition: logTransition,
	})
	if err != nil {
		return err
	}

	log.Infof("Applying %s to %s (%s, %d worker(s))", g.doc.File, g.settings.Server.Address, g.version, g.settings.Apply.Workers)
	report := eng.Apply(g.ctx.context(), g.decl)

	if err := report.Write(g.ctx.stdout()); err != nil {
		return apperrors.NewInternalError("failed to write report", err)
	}
	return report.Err()
}

func logTransition(t engine.Transition) {
	log.Logger().Debug().
		Uint64("seq", t.Seq).
		Str("type", string(t.Type)).
		Str("key", t.Key.String()).
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Msg("transition")
}
