package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abhisheknishant/grafx2"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultDB = "grafx2.db"

var errOutputType = errors.New("unsupported output image type")

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

// newLogger returns the logger selected by the global flags, and what to
// close once done with it.
func newLogger(c *cli.Context) (*log.Logger, io.Closer) {
	if file := c.String("log-file"); file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
		}
		return log.New(w, "", log.LstdFlags), w
	}

	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger, io.NopCloser(nil)
}

func newEngine(c *cli.Context, catalog *grafx2.Catalog) (*grafx2.Engine, io.Closer) {
	logger, closer := newLogger(c)
	e := grafx2.New(catalog, logger)
	e.ClearPalette = c.Bool("clear-palette")
	return e, closer
}

func outputFormat(c *cli.Context, file string) (grafx2.Format, error) {
	if name := c.String("format"); name != "" {
		return grafx2.ParseFormat(name)
	}
	if f, ok := grafx2.FormatByExtension(file); ok {
		return f, nil
	}
	return 0, fmt.Errorf("cannot guess the format of \"%s\", use --format", file)
}

func encodeImage(file string, m image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png":
		encode = png.Encode
	case ".bmp":
		encode = bmp.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return errOutputType
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := encode(f, m); err != nil {
		f.Close()
		os.Remove(file)
		return err
	}
	return f.Close()
}

func decodeImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

func info(w io.Writer, file string, f grafx2.Format, p *picture.Picture) {
	fmt.Fprintf(w, "%s: %v\n", file, f)
	if p.Width > 0 {
		fmt.Fprintf(w, "  size:   %dx%d, %d bits, ratio %v\n", p.Width, p.Height, p.Depth, p.Ratio)
		fmt.Fprintf(w, "  layers: %d (%v)\n", len(p.Layers), p.Mode)
	}
	if len(p.Frames) > 0 {
		fmt.Fprintf(w, "  frames: %d\n", len(p.Frames))
	}
	if p.Transparent != picture.NoTransparency {
		fmt.Fprintf(w, "  transparent color: %d\n", p.Transparent)
	}
	if p.Comment != "" {
		fmt.Fprintf(w, "  comment: %s\n", p.Comment)
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "grafx2"
	app.Usage = "Retro picture and palette format utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"GRAFX2_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
		&cli.StringFlag{
			Name:    "log-file",
			EnvVars: []string{"GRAFX2_LOG_FILE"},
			Usage:   "write log messages to a rotated file",
		},
		&cli.BoolFlag{
			Name:  "clear-palette",
			Usage: "zero the palette before loading",
		},
	}

	formatFlag := &cli.StringFlag{
		Name:  "format",
		Usage: "output format, guessed from the file extension if omitted",
	}

	app.Commands = []*cli.Command{
		{
			Name:      "detect",
			Usage:     "Print the format of files",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				e, closer := newEngine(c, nil)
				defer closer.Close()

				for _, file := range c.Args().Slice() {
					f, err := e.DetectFile(file)
					if err != nil {
						fmt.Printf("%s: %v\n", file, err)
						continue
					}
					fmt.Printf("%s: %v\n", file, f)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Load files and describe them",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				e, closer := newEngine(c, nil)
				defer closer.Close()

				for _, file := range c.Args().Slice() {
					p, f, err := e.LoadFile(file)
					if err != nil {
						return cli.Exit(err, 1)
					}
					info(os.Stdout, file, f, p)
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert a file to another format",
			ArgsUsage: "INPUT OUTPUT",
			Flags:     []cli.Flag{formatFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				e, closer := newEngine(c, nil)
				defer closer.Close()

				out := c.Args().Get(1)
				f, err := outputFormat(c, out)
				if err != nil {
					return cli.Exit(err, 1)
				}

				p, _, err := e.LoadFile(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := e.SaveFile(out, p, f); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Export a picture to PNG, BMP or TIFF",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "layer",
					Value: -1,
					Usage: "layer to export, all layers are flattened if negative",
				},
				&cli.BoolFlag{
					Name:  "aspect",
					Usage: "scale the picture by its pixel ratio",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				e, closer := newEngine(c, nil)
				defer closer.Close()

				p, _, err := e.LoadFile(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				var m image.Image
				if layer := c.Int("layer"); layer >= 0 {
					m, err = p.Paletted(layer)
				} else {
					m, err = p.Flatten()
				}
				if err != nil {
					return cli.Exit(err, 1)
				}
				if c.Bool("aspect") {
					m = picture.Aspect(m, p.Ratio)
				}

				if err := encodeImage(c.Args().Get(1), m); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "import",
			Usage:     "Convert a PNG, GIF, JPEG, BMP or TIFF image to a retro format",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				formatFlag,
				&cli.IntFlag{
					Name:  "colors",
					Value: 256,
					Usage: "maximum number of colors",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				e, closer := newEngine(c, nil)
				defer closer.Close()

				out := c.Args().Get(1)
				f, err := outputFormat(c, out)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, err := decodeImage(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := e.SaveFile(out, picture.FromImage(m, c.Int("colors")), f); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan filesystem and catalog the pictures found",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				catalog, err := grafx2.NewCatalog(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer catalog.Close()

				e, closer := newEngine(c, catalog)
				defer closer.Close()

				if err := e.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List the cataloged pictures",
			Action: func(c *cli.Context) error {
				catalog, err := grafx2.NewCatalog(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer catalog.Close()

				entries, err := catalog.List()
				if err != nil {
					return cli.Exit(err, 1)
				}

				for _, e := range entries {
					fmt.Printf("%s\t%v\t%dx%d\t%d\t%s\n", e.ID, e.Format, e.Width, e.Height, e.Layers, e.Path)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
