// Package cmd defines all the commands for the cli
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/asmlab/acfg/acfg"
	"github.com/asmlab/acfg/asmparser"
	"github.com/asmlab/acfg/asmparser/ida"
	"github.com/asmlab/acfg/cfg"
	"github.com/asmlab/acfg/inst"
	"github.com/asmlab/acfg/profile"
	"github.com/asmlab/acfg/renderer"
)

var (
	ProfileFlag = &cli.PathFlag{
		Name:     "profile",
		Usage:    "Path to the profile config file. Default: built-in IDA Pro x86 profile",
		Required: false,
	}
	FormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "format of the output. Options: json, text, csv",
		Required: false,
		Value:    "text",
	}
	OutputPathFlag = &cli.PathFlag{
		Name:     "output",
		Usage:    "output file path for the graph report. Default: stdout",
		Required: false,
	}
	DOTOutputFlag = &cli.PathFlag{
		Name:     "dot",
		Usage:    "file path to store the block graph in DOT form",
		Required: false,
	}
	ProgramDumpFlag = &cli.PathFlag{
		Name:     "program-dump",
		Usage:    "file path to store the normalized program listing",
		Required: false,
	}
)

func CreateBuildCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "build",
		Usage:       "Builds the attributed control flow graph of a disassembly listing",
		Description: "Builds the attributed control flow graph of a disassembly listing",
		Action:      action,
		Flags: []cli.Flag{
			ProfileFlag,
			FormatFlag,
			OutputPathFlag,
			DOTOutputFlag,
			ProgramDumpFlag,
		},
	}
}

var BuildCommand = CreateBuildCommand(BuildGraph)

func BuildGraph(ctx *cli.Context) error {
	prof, err := loadProfile(ctx.Path(ProfileFlag.Name))
	if err != nil {
		return fmt.Errorf("error loading profile: %w", err)
	}

	source := ctx.Args().First()
	format := ctx.String(FormatFlag.Name)
	outputPath := ctx.Path(OutputPathFlag.Name)
	dotPath := ctx.Path(DOTOutputFlag.Name)
	dumpPath := ctx.Path(ProgramDumpFlag.Name)

	program, err := ida.NewParser(prof).Parse(source)
	if err != nil {
		return fmt.Errorf("error parsing the listing: %w", err)
	}

	if dumpPath != "" {
		if err := writeProgram(program, dumpPath); err != nil {
			return fmt.Errorf("unable to write program dump: %w", err)
		}
	}

	graph, err := cfg.NewBuilder(inst.NewDecoder()).Build(program)
	if err != nil {
		return fmt.Errorf("error building the graph: %w", err)
	}

	a, err := acfg.New(binaryID(source), graph, prof)
	if err != nil {
		return fmt.Errorf("error extracting features: %w", err)
	}

	if dotPath != "" {
		if err := writeSide(renderer.NewDOTRenderer(), a, dotPath); err != nil {
			return fmt.Errorf("unable to write dot graph: %w", err)
		}
	}

	if err := writeReport(a, format, outputPath, prof); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

// loadProfile falls back to the built-in profile when no path is given.
func loadProfile(path string) (*profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.LoadProfile(path)
}

// binaryID derives the report identifier from the listing file name.
func binaryID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeReport outputs the graph report in the specified format.
func writeReport(a *acfg.ACFG, format, outputPath string, prof *profile.Profile) error {
	var output *os.File
	if outputPath == "" {
		output = os.Stdout
	} else {
		var err error
		output, err = openOutputFile(outputPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = output.Close()
		}()
	}

	var rendererInstance renderer.Renderer
	switch format {
	case "text":
		rendererInstance = renderer.NewTextRenderer(prof)
	case "json":
		rendererInstance = renderer.NewJSONRenderer()
	case "csv":
		rendererInstance = renderer.NewCSVRenderer()
	default:
		return fmt.Errorf("invalid format: %s", format)
	}

	return rendererInstance.Render(a, output)
}

// writeSide renders one side output to its own file.
func writeSide(r renderer.Renderer, a *acfg.ACFG, outputPath string) error {
	output, err := openOutputFile(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = output.Close()
	}()
	return r.Render(a, output)
}

func writeProgram(program *asmparser.Program, outputPath string) error {
	output, err := openOutputFile(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = output.Close()
	}()
	_, err = program.WriteTo(output)
	return err
}

func openOutputFile(outputPath string) (*os.File, error) {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("unable to determine absolute path: %w", err)
	}
	output, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("unable to open output file: %w", err)
	}
	return output, nil
}
