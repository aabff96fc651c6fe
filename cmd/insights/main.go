package main

import (
	"os"

	"insights-client/build"
	insightsclient "insights-client/client"
	cliutil "insights-client/cmd"

	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("insights")

func before(cctx *cli.Context) error {
	// local .env overrides for portal url / token during development
	_ = godotenv.Load()

	_ = logging.SetLogLevel("insights", "INFO")
	_ = logging.SetLogLevel("insights-client", "INFO")
	_ = logging.SetLogLevel("portal-client", "INFO")
	_ = logging.SetLogLevel("cache", "INFO")

	if cliutil.IsVeryVerbose {
		_ = logging.SetLogLevel("insights", "DEBUG")
		_ = logging.SetLogLevel("insights-client", "DEBUG")
		_ = logging.SetLogLevel("portal-client", "DEBUG")
		_ = logging.SetLogLevel("cache", "DEBUG")
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:                 "insights",
		Usage:                "cli for ArcGIS Insights workbooks",
		EnableBashCompletion: true,
		Version:              build.UserVersion(),
		Before:               before,
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagPortal,
			cliutil.FlagToken,
			cliutil.FlagVeryVerbose,
		},
		Commands: []*cli.Command{
			workbookCmd,
			datasetCmd,
			cardCmd,
			modelCmd,
			loginCmd,
			cliutil.GenerateDocCmd,
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func getInsightsClient(cctx *cli.Context) (*insightsclient.InsightsClient, error) {
	return insightsclient.NewInsightsClient(cctx.Context, cliutil.Repo, cliutil.Portal, cliutil.Token)
}
