// roomctl собирает сцену, развёртку поверхности или раскладку мотива
// из файла дизайна без запуска сервера.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"archiviz/internal/room/mapper"
	"archiviz/internal/room/models"
	"archiviz/internal/room/motif"
	"archiviz/internal/room/parser"
	"archiviz/internal/room/state"

	"github.com/spf13/pflag"
)

const usage = `Usage: roomctl <command> [flags]

Commands:
  scene <design-file>                 print the scene graph as JSON
  svg --side <side> <design-file>     print the SVG elevation of one surface
  motif --motif <m> [--width --height --color]
                                      print a motif layout as JSON
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("command required")
	}

	switch args[0] {
	case "scene":
		return runScene(args[1:], out)
	case "svg":
		return runSVG(args[1:], out)
	case "motif":
		return runMotif(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// loadState читает файл дизайна и превращает его в состояние редактора.
func loadState(path string) (models.ViewState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ViewState{}, err
	}
	d, err := parser.ParseDesign(path, data)
	if err != nil {
		return models.ViewState{}, fmt.Errorf("%s: %w", path, err)
	}
	return state.LoadDesign(state.New(), d), nil
}

func designArg(fs *pflag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", errors.New("exactly one design file required")
	}
	return fs.Arg(0), nil
}

func runScene(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("scene", pflag.ContinueOnError)
	indent := fs.Bool("indent", true, "indent JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := designArg(fs)
	if err != nil {
		return err
	}

	s, err := loadState(path)
	if err != nil {
		return err
	}
	return writeJSON(out, mapper.BuildScene(s), *indent)
}

func runSVG(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("svg", pflag.ContinueOnError)
	side := fs.String("side", string(models.WallNorth), "surface to draw")
	scale := fs.Float64("scale", mapper.DefaultScale, "pixels per metre")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := designArg(fs)
	if err != nil {
		return err
	}

	s, err := loadState(path)
	if err != nil {
		return err
	}
	svg, err := mapper.NewRenderer(*scale).Render(s, models.RoomSide(*side))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, svg)
	return err
}

func runMotif(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("motif", pflag.ContinueOnError)
	m := fs.String("motif", "", "motif type")
	width := fs.Float64("width", 10, "surface width")
	height := fs.Float64("height", 6, "surface height")
	color := fs.String("color", "#f8fafc", "base colour")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *m == "" {
		return errors.New("--motif required")
	}
	if *width <= 0 || *height <= 0 {
		return errors.New("--width and --height must be positive")
	}
	return writeJSON(out, motif.Generate(models.MotifType(*m), *width, *height, *color), true)
}

func writeJSON(out io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(out)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
