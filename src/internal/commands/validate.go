package commands

import (
	"flag"
	"fmt"

	"github.com/maksimkurb/apimanctl/src/internal/declaration"
)

func CreateValidateCommand() *ValidateCommand {
	gc := &ValidateCommand{
		fs: newFlagSet("validate"),
	}
	gc.doc.register(gc.fs)
	return gc
}

// ValidateCommand loads a declaration and reports what it contains without
// contacting the server.
type ValidateCommand struct {
	fs   *flag.FlagSet
	doc  documentFlags
	ctx  *AppContext
	decl *declaration.Declaration
}

func (g *ValidateCommand) Name() string {
	return g.fs.Name()
}

func (g *ValidateCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}
	g.ctx = ctx

	decl, err := loadDeclarationOrFail(&g.doc, ctx.settings())
	if err != nil {
		return err
	}
	g.decl = decl
	return nil
}

func (g *ValidateCommand) Run() error {
	apis, versions, policies := 0, 0, 0
	if g.decl.Org != nil {
		apis = len(g.decl.Org.Apis)
		for _, api := range g.decl.Org.Apis {
			versions += len(api.Versions)
			for _, v := range api.Versions {
				policies += len(v.Policies)
			}
		}
	}

	_, err := fmt.Fprintf(g.ctx.stdout(),
		"%s is valid (checksum %s): %d gateway(s), %d plugin(s), %d api(s), %d version(s), %d policy(ies)\n",
		g.doc.File, g.decl.Checksum(), len(g.decl.Gateways()), len(g.decl.Plugins()), apis, versions, policies)
	return err
}
