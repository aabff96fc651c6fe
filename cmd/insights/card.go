package main

import (
	"fmt"

	insightsclient "insights-client/client"
	"insights-client/types"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

var cardCmd = &cli.Command{
	Name:  "card",
	Usage: "workbook card management",
	Subcommands: []*cli.Command{
		cardMapCmd,
		cardChartCmd,
	},
}

var cardMapCmd = &cli.Command{
	Name:      "map",
	Usage:     "add a map card for a feature layer dataset",
	ArgsUsage: "[itemId]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "dataset",
			Usage:    "internal name of the dataset to map",
			Required: true,
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		if cctx.NArg() != 1 {
			return xerrors.Errorf("must provide the workbook item id")
		}

		ic, err := getInsightsClient(cctx)
		if err != nil {
			return err
		}
		defer ic.Close()

		wb, err := insightsclient.OpenWorkbook(ctx, ic, cctx.Args().First())
		if err != nil {
			return err
		}

		if err = wb.AddMap(cctx.String("dataset")); err != nil {
			return err
		}
		if err = wb.Save(ctx); err != nil {
			return err
		}

		page, err := wb.ActivePage()
		if err != nil {
			return err
		}
		fmt.Printf("added %s to workbook %s\n", page.Cards[len(page.Cards)-1].Title, wb.WorkbookId)
		return nil
	},
}

var cardChartCmd = &cli.Command{
	Name:      "chart",
	Usage:     "add a bar or column chart card over an aggregation",
	ArgsUsage: "[itemId]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "type",
			Usage:    "chart type, bar or column",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "dataset",
			Usage:    "internal name of the input dataset",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "groupby-field",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "groupby-type",
			Usage: "esri field type of the group-by field",
			Value: types.FieldTypeString,
		},
		&cli.StringFlag{
			Name:     "stat-type",
			Usage:    "avg, sum, count, min or max",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "stat-field",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "stat-field-type",
			Usage: "esri field type of the statistic field",
			Value: types.FieldTypeDouble,
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		if cctx.NArg() != 1 {
			return xerrors.Errorf("must provide the workbook item id")
		}

		ic, err := getInsightsClient(cctx)
		if err != nil {
			return err
		}
		defer ic.Close()

		wb, err := insightsclient.OpenWorkbook(ctx, ic, cctx.Args().First())
		if err != nil {
			return err
		}

		out, err := wb.AddChart(
			cctx.String("type"),
			cctx.String("dataset"),
			cctx.String("groupby-field"),
			cctx.String("groupby-type"),
			cctx.String("stat-type"),
			cctx.String("stat-field"),
			cctx.String("stat-field-type"),
		)
		if err != nil {
			return err
		}
		if err = wb.Save(ctx); err != nil {
			return err
		}

		console := color.New(color.FgMagenta, color.Bold)
		fmt.Print("  Dataset   : ")
		console.Println(out)
		return nil
	},
}
