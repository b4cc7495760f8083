//go:build goloader

package main

import (
	"fmt"
	. "github.com/ZenLiuCN/indirect"
	"github.com/ZenLiuCN/indirect/object"
	"github.com/urfave/cli/v2"
	"log"
)

func init() {
	objectLoader = func(pkg string, debug bool) Loader {
		return object.ObjectLoader{Pkg: pkg, Debug: debug}
	}
	commands = append(commands, &cli.Command{
		Name:   "inspect",
		Action: inspect,
		Usage:  "display symbols of go object files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pkg", Aliases: []string{"k"}, Usage: "package path or default main"},
		},
		Args: true,
	})
}

func inspect(ctx *cli.Context) (err error) {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing object files")
	}
	for _, s := range ctx.Args().Slice() {
		var v []string
		if v, err = object.Inspect(s, ctx.String("pkg")); err != nil {
			return
		}
		log.Printf("%s:", s)
		for _, n := range v {
			fmt.Printf("\t%s\n", n)
		}
	}
	return
}
