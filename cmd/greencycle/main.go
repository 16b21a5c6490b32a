package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "greencycle",
		Usage: "E-waste pickup coordination service",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
