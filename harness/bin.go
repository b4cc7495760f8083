package main

import (
	"fmt"
	. "github.com/ZenLiuCN/indirect"
	"github.com/ZenLiuCN/indirect/trace"
	"github.com/urfave/cli/v2"
	"log"
	"os"
	"runtime"
)

var (
	// objectLoader creates the go object loader, nil unless built with the goloader tag.
	objectLoader func(pkg string, debug bool) Loader
	commands     []*cli.Command
)

func main() {
	app := cli.NewApp()
	app.Usage = "indirect call demonstration"
	app.Name = "Harness"
	app.Description = "calls two local functions through a call table, then resolves and calls functions of a loaded module by name"
	app.Action = action
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "module", Aliases: []string{"m"}, Value: defaultModule(), Usage: "module to load"},
		&cli.StringSliceFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "symbols to resolve, default external_func1 and external_func2"},
		&cli.BoolFlag{Name: "strict", Usage: "treat missing symbols as errors (reported with --debug)"},
		&cli.BoolFlag{Name: "object", Aliases: []string{"o"}, Usage: "module is a go object file or archive instead of a shared object, needs the goloader build tag"},
		&cli.StringFlag{Name: "pkg", Aliases: []string{"k"}, Usage: "package path of the go object, default main"},
	}
	app.Commands = append([]*cli.Command{
		{
			Name:   "trace",
			Action: classify,
			Usage:  "classify recorded indirect branches as intra-module or inter-module calls",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "start", Value: "0x0", Usage: "start address of the analysed binary"},
			},
			Args: true,
		},
	}, commands...)
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("failure %s", err)
	}
}

func defaultModule() string {
	if runtime.GOOS == "darwin" {
		return "./libtest_module.dylib"
	}
	return "./libtest_module.so"
}

func action(ctx *cli.Context) error {
	d := ctx.Bool("debug")
	var l Loader
	if ctx.Bool("object") {
		if objectLoader == nil {
			return fmt.Errorf("object modules need a build with -tags goloader")
		}
		l = objectLoader(ctx.String("pkg"), d)
	} else {
		l = SharedLoader{Debug: d}
	}
	Demonstrate(os.Stdout, NewResolver(l, ctx.Bool("strict"), d), ctx.String("module"), ctx.StringSlice("symbol")...)
	return nil
}

func classify(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing trace files")
	}
	var start uint64
	if start, err = trace.ParseHex(ctx.String("start")); err != nil {
		return
	}
	for _, s := range ctx.Args().Slice() {
		var f *os.File
		if f, err = os.Open(s); err != nil {
			return
		}
		var t *trace.Trace
		t, err = trace.Parse(f)
		_ = f.Close()
		if err != nil {
			return
		}
		var calls []trace.Call
		if calls, err = t.Calls(start); err != nil {
			return
		}
		log.Printf("%s:", s)
		for _, c := range calls {
			fmt.Printf("\t%s\n", c)
		}
	}
	return
}
