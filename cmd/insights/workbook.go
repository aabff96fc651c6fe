package main

import (
	"fmt"

	insightsclient "insights-client/client"
	"insights-client/utils"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

var workbookCmd = &cli.Command{
	Name:  "workbook",
	Usage: "workbook item management",
	Subcommands: []*cli.Command{
		workbookCreateCmd,
		workbookShowCmd,
		workbookPageCmd,
		workbookDeleteCmd,
	},
}

var workbookCreateCmd = &cli.Command{
	Name:  "create",
	Usage: "create a new workbook item on the portal",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Usage:    "workbook title",
			Required: true,
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		ic, err := getInsightsClient(cctx)
		if err != nil {
			return err
		}
		defer ic.Close()

		wb, err := insightsclient.NewWorkbook(ctx, ic, cctx.String("title"))
		if err != nil {
			return err
		}
		if err = wb.Save(ctx); err != nil {
			return err
		}

		console := color.New(color.FgMagenta, color.Bold)

		fmt.Print("  Title     : ")
		console.Println(wb.Title)

		fmt.Print("  ItemId    : ")
		console.Println(wb.WorkspaceId)

		fmt.Print("  Name      : ")
		console.Println(wb.WorkbookId)

		fmt.Print("  Workspace : ")
		console.Println(wb.WorkspaceUrl)

		return nil
	},
}

var workbookShowCmd = &cli.Command{
	Name:      "show",
	Usage:     "show a workbook's document",
	ArgsUsage: "[itemId]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "dump the full JSON document",
			Value: false,
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		if cctx.NArg() != 1 {
			return xerrors.Errorf("must provide the workbook item id")
		}
		itemId := cctx.Args().First()

		ic, err := getInsightsClient(cctx)
		if err != nil {
			return err
		}
		defer ic.Close()

		wb, err := insightsclient.OpenWorkbook(ctx, ic, itemId)
		if err != nil {
			return err
		}

		if cctx.Bool("raw") {
			text, err := utils.Marshal(wb.Props)
			if err != nil {
				return err
			}
			fmt.Println(string(text))
			return nil
		}

		console := color.New(color.FgMagenta, color.Bold)

		fmt.Print("  Title     : ")
		console.Println(wb.Title)

		fmt.Print("  Name      : ")
		console.Println(wb.WorkbookId)

		fmt.Print("  Pages     : ")
		console.Println(len(wb.Props.Pages))

		fmt.Print("  Datasets  : ")
		console.Println(len(wb.Props.Workspace.Datasets))

		for name, entry := range wb.Props.Workspace.Datasets {
			display := entry.Name
			if display == "" {
				display = name
			}
			origin := "derived"
			if entry.Origin {
				origin = "origin"
			}
			fmt.Printf("    %-24s %s (%s)\n", name, display, origin)
		}
		return nil
	},
}

var workbookPageCmd = &cli.Command{
	Name:      "add-page",
	Usage:     "append an empty page to a workbook",
	ArgsUsage: "[itemId]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "title",
			Usage: "page title, defaults to Page <n>",
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

		page := wb.AddPage(cctx.String("title"))
		if err = wb.Save(ctx); err != nil {
			return err
		}

		fmt.Printf("added page %q to workbook %s\n", page.Title, wb.WorkbookId)
		return nil
	},
}

var workbookDeleteCmd = &cli.Command{
	Name:      "delete",
	Usage:     "delete a workbook item from the portal",
	ArgsUsage: "[itemId]",
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		if cctx.NArg() != 1 {
			return xerrors.Errorf("must provide the workbook item id")
		}
		itemId := cctx.Args().First()

		ic, err := getInsightsClient(cctx)
		if err != nil {
			return err
		}
		defer ic.Close()

		wb, err := insightsclient.OpenWorkbook(ctx, ic, itemId)
		if err != nil {
			return err
		}
		if err = wb.Delete(ctx); err != nil {
			return err
		}

		fmt.Printf("deleted workbook item %s\n", itemId)
		return nil
	},
}
