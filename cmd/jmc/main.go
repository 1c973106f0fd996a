package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/broady/jsonmodel/cmd/jmc/internal/check"
	"github.com/broady/jsonmodel/cmd/jmc/internal/compile"
	"github.com/broady/jsonmodel/internal/logging"
	"github.com/broady/jsonmodel/language"
)

type CLI struct {
	Verbose bool `help:"Log debug details of the compiler." short:"v"`

	Compile compile.Cmd `cmd:"" help:"Compile a schema into a validator."`
	Check   check.Cmd   `cmd:"" help:"Load and validate a schema without generating code."`
	Langs   LangsCmd    `cmd:"" help:"List the target languages."`
	Version VersionCmd  `cmd:"" help:"Print version information."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type LangsCmd struct{}

func (c *LangsCmd) Run() error {
	for _, name := range language.Names() {
		fmt.Println(name)
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("jmc"),
		kong.Description("JSON Model compiler: turns schemas into validator source code."),
		kong.UsageOnError(),
	)
	err := ctx.Run(logging.New(os.Stderr, cli.Verbose))
	ctx.FatalIfErrorf(err)
}
