package main

import (
	"context"
	"log"
	"os"

	"github.com/asmlab/acfg/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = os.Args[0]
	app.Usage = "Attributed Control Flow Graph Builder"
	app.Description = "Attributed Control Flow Graph Builder"
	app.Commands = []*cli.Command{
		cmd.BuildCommand,
		cmd.DumpCommand,
	}
	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
