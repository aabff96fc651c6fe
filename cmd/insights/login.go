package main

import (
	"fmt"

	insightsclient "insights-client/client"
	cliutil "insights-client/cmd"

	"github.com/urfave/cli/v2"
)

var loginCmd = &cli.Command{
	Name:  "login",
	Usage: "store portal connection settings in the repo config",
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		// config-only client, no portal round trip yet
		ic, err := insightsclient.NewInsightsClient(ctx, cliutil.Repo, "none", "")
		if err != nil {
			return err
		}

		cfg := ic.Cfg
		if cliutil.Portal != "" {
			cfg.Portal.Url = cliutil.Portal
		}

		token := cliutil.Token
		if token == "" {
			token, err = cliutil.AskForToken()
			if err != nil {
				return err
			}
		}
		cfg.Portal.Token = token

		// verify the credentials before persisting them
		verify, err := insightsclient.NewInsightsClient(ctx, cliutil.Repo, cfg.Portal.Url, token)
		if err != nil {
			return err
		}
		defer verify.Close()

		self, err := verify.Self(ctx)
		if err != nil {
			return err
		}
		cfg.Portal.Username = self.Username

		if err = ic.SaveConfig(cfg); err != nil {
			return err
		}

		fmt.Printf("signed in to %s as %s\n", cfg.Portal.Url, self.Username)
		return nil
	},
}
