package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"slotrace/internal/pkg/flags"
	"slotrace/pkg/race"
)

func main() {
	app := &cli.App{
		Name:  "slotrace",
		Usage: "races competing slot feeds against each other and reports which one delivers first",
		Flags: []cli.Flag{
			flags.Config,
			flags.LogLevel,
			flags.LogFile,
			flags.MetricsAddr,
			flags.Dump,
		},
		Action: race.NewRaceService().Run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
