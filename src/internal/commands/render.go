package commands

import (
	"flag"

	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
)

func CreateRenderCommand() *RenderCommand {
	gc := &RenderCommand{
		fs: newFlagSet("render"),
	}
	gc.doc.register(gc.fs)
	gc.fs.StringVar(&gc.OutputFormat, "output-format", "", "Output format: json or yaml (default: input format)")
	return gc
}

// RenderCommand prints the resolved declaration. The output loads back to
// the same declaration.
type RenderCommand struct {
	fs     *flag.FlagSet
	doc    documentFlags
	ctx    *AppContext
	decl   *declaration.Declaration
	format declaration.Format

	OutputFormat string
}

func (g *RenderCommand) Name() string {
	return g.fs.Name()
}

func (g *RenderCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}
	g.ctx = ctx

	decl, err := loadDeclarationOrFail(&g.doc, ctx.settings())
	if err != nil {
		return err
	}
	g.decl = decl

	if g.OutputFormat == "" {
		g.format, err = g.doc.format()
	} else {
		g.format, err = declaration.ParseFormat(g.OutputFormat)
	}
	if err != nil {
		return apperrors.NewConfigError("unknown output format", err)
	}
	return nil
}

func (g *RenderCommand) Run() error {
	data, err := declaration.Marshal(g.decl, g.format)
	if err != nil {
		return apperrors.NewInternalError("failed to render declaration", err)
	}
	_, err = g.ctx.stdout().Write(data)
	return err
}
