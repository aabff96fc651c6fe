package main

import (
	"fmt"

	insightsclient "insights-client/client"
	"insights-client/types"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

var datasetCmd = &cli.Command{
	Name:  "dataset",
	Usage: "workbook dataset management",
	Subcommands: []*cli.Command{
		datasetAddCmd,
		datasetUpdateCmd,
		datasetAggregateCmd,
	},
}

func layerFromFlags(cctx *cli.Context) (types.FeatureLayer, error) {
	if !cctx.IsSet("layer-url") {
		return types.FeatureLayer{}, xerrors.Errorf("must provide --layer-url")
	}
	return types.FeatureLayer{
		ItemId: cctx.String("layer-item"),
		Title:  cctx.String("layer-title"),
		Url:    cctx.String("layer-url"),
	}, nil
}

var layerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "layer-url",
		Usage:    "feature service url of the layer",
		Required: true,
	},
	&cli.StringFlag{
		Name:  "layer-item",
		Usage: "portal item id owning the layer",
	},
	&cli.StringFlag{
		Name:  "layer-title",
		Usage: "layer title, used as the dataset base name",
		Value: "layer",
	},
	&cli.IntFlag{
		Name:  "sublayer",
		Usage: "index of the sublayer to add",
		Value: 0,
	},
}

var datasetAddCmd = &cli.Command{
	Name:      "add",
	Usage:     "add a feature layer to a workbook as a dataset",
	ArgsUsage: "[itemId]",
	Flags:     layerFlags,
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

		lyr, err := layerFromFlags(cctx)
		if err != nil {
			return err
		}

		name, err := wb.AddFeatureLayer(ctx, lyr, cctx.Int("sublayer"))
		if err != nil {
			return err
		}
		if err = wb.Save(ctx); err != nil {
			return err
		}

		console := color.New(color.FgMagenta, color.Bold)
		fmt.Print("  Dataset   : ")
		console.Println(name)
		return nil
	},
}

var datasetUpdateCmd = &cli.Command{
	Name:      "update",
	Usage:     "refresh the data handle for a layer already in a workbook",
	ArgsUsage: "[itemId]",
	// no sublayer or title here: the refresh re-executes the layer url
	// already recorded in the workbook
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "layer-url",
			Usage:    "feature service url of the layer",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "layer-item",
			Usage: "portal item id owning the layer",
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

		lyr, err := layerFromFlags(cctx)
		if err != nil {
			return err
		}

		name, err := wb.UpdateDataset(ctx, lyr)
		if err != nil {
			return err
		}
		if err = wb.Save(ctx); err != nil {
			return err
		}

		fmt.Printf("refreshed dataset %s\n", name)
		return nil
	},
}

var datasetAggregateCmd = &cli.Command{
	Name:      "aggregate",
	Usage:     "derive an aggregated dataset from an existing one",
	ArgsUsage: "[itemId]",
	Flags: []cli.Flag{
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
		&cli.StringFlag{
			Name:  "name",
			Usage: "display name for the derived dataset",
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

		out, err := wb.Aggregate(
			cctx.String("dataset"),
			cctx.String("groupby-field"),
			cctx.String("groupby-type"),
			cctx.String("stat-type"),
			cctx.String("stat-field"),
			cctx.String("stat-field-type"),
			cctx.String("name"),
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
