package main

import (
	"fmt"
	"os"

	"insights-client/utils"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

var modelCmd = &cli.Command{
	Name:  "model",
	Usage: "workbook document tooling",
	Subcommands: []*cli.Command{
		patchGenCmd,
	},
}

var patchGenCmd = &cli.Command{
	Name:  "patch-gen",
	Usage: "diff two workbook documents into a JSON patch",
	Flags: []cli.Flag{
		&cli.PathFlag{
			Name:     "origin",
			Usage:    "file holding the original document",
			Required: true,
		},
		&cli.PathFlag{
			Name:     "target",
			Usage:    "file holding the changed document",
			Required: true,
		},
	},
	Action: func(cctx *cli.Context) error {
		origin, err := os.ReadFile(cctx.Path("origin"))
		if err != nil {
			return xerrors.Errorf("read origin: %v", err)
		}
		target, err := os.ReadFile(cctx.Path("target"))
		if err != nil {
			return xerrors.Errorf("read target: %v", err)
		}

		patch, err := utils.GeneratePatch(string(origin), string(target))
		if err != nil {
			return err
		}

		console := color.New(color.FgMagenta, color.Bold)
		fmt.Print("  Patch     : ")
		console.Println(patch)
		return nil
	},
}
