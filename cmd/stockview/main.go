package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/stockview/internal/version"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "stockview",
		Usage:   "Interactive stock price dashboard",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Sources: cli.EnvVars("STOCKVIEW_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			warmCommand(),
			pruneCommand(),
			schemaCommand(),
			initConfigCommand(),
			versionCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
