package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/asmlab/acfg/asmparser/ida"
)

func CreateDumpCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "dump",
		Usage:       "Writes the normalized program recovered from a disassembly listing",
		Description: "Writes the normalized program recovered from a disassembly listing",
		Action:      action,
		Flags: []cli.Flag{
			ProfileFlag,
			OutputPathFlag,
		},
	}
}

var DumpCommand = CreateDumpCommand(DumpProgram)

func DumpProgram(ctx *cli.Context) error {
	prof, err := loadProfile(ctx.Path(ProfileFlag.Name))
	if err != nil {
		return fmt.Errorf("error loading profile: %w", err)
	}

	source := ctx.Args().First()
	outputPath := ctx.Path(OutputPathFlag.Name)

	program, err := ida.NewParser(prof).Parse(source)
	if err != nil {
		return fmt.Errorf("error parsing the listing: %w", err)
	}

	if outputPath == "" {
		_, err = program.WriteTo(os.Stdout)
		return err
	}
	return writeProgram(program, outputPath)
}
