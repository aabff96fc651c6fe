package cliutil

import (
	"fmt"
	"os"
	"syscall"

	gen "insights-client/gen/clidoc"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var Repo string
var FlagRepo = &cli.StringFlag{
	Name:        "repo",
	Usage:       "repo directory for config",
	EnvVars:     []string{"INSIGHTS_REPO"},
	Value:       "~/.insights",
	Destination: &Repo,
}

var Portal string
var FlagPortal = &cli.StringFlag{
	Name:        "portal",
	Usage:       "GIS portal url, e.g. https://www.arcgis.com",
	EnvVars:     []string{"INSIGHTS_PORTAL_URL"},
	Destination: &Portal,
}

var Token string
var FlagToken = &cli.StringFlag{
	Name:        "token",
	Usage:       "access token for the portal sharing API",
	EnvVars:     []string{"INSIGHTS_PORTAL_TOKEN"},
	Destination: &Token,
}

// IsVeryVerbose is a global var signalling if the CLI is running in very
// verbose mode or not (default: false).
var IsVeryVerbose bool

// FlagVeryVerbose enables very verbose mode, which is useful when debugging
// the CLI itself. It should be included as a flag on the top-level command
// (e.g. insights -vv).
var FlagVeryVerbose = &cli.BoolFlag{
	Name:        "vv",
	Usage:       "enables very verbose mode, useful for debugging the CLI",
	Destination: &IsVeryVerbose,
}

func AskForToken() (string, error) {
	fmt.Print("Enter access token:")
	token, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return "", err
	}
	fmt.Println()
	return string(token), nil
}

var GenerateDocCmd = &cli.Command{
	Name:   "clidoc",
	Hidden: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Usage:    "file path to export to",
			Required: false,
		},
	},
	Action: func(cctx *cli.Context) error {
		output, err := gen.ToMarkdown(cctx.App)
		if err != nil {
			return err
		}
		outputFile := cctx.String("output")
		if outputFile == "" {
			outputFile = fmt.Sprintf("./docs/%s.md", cctx.App.Name)
		}
		err = os.WriteFile(outputFile, []byte(output), 0644)
		if err != nil {
			return err
		}
		fmt.Printf("markdown clidoc is exported to %s", outputFile)
		fmt.Println()
		return nil
	},
}
