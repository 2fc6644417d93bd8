package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Set by compiler, see Makefile
var (
	version = "v0.1.0"
	commit  = "unknown"
	builtBy = "unknown"
)

func main() {

	app := &cli.App{
		Name:                   "tessella",
		Usage:                  "turn images into flat-colored mosaics.",
		Description:            "tessella grows random regions over an image, reduces their colors to a small palette,\nand paints each region with its color.",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "regions",
				Aliases: []string{"n"},
				Value:   1000,
			},
			&cli.UintFlag{
				Name:    "colors",
				Aliases: []string{"k"},
				Value:   16,
			},
			&cli.UintFlag{
				Name: "iterations",
			},
			&cli.StringFlag{
				Name:    "quantizer",
				Aliases: []string{"q"},
				Value:   "adaptive",
			},
			&cli.Int64Flag{
				Name:    "seed",
				Aliases: []string{"s"},
			},
			&cli.StringFlag{
				Name: "palette-out",
			},
			&cli.BoolFlag{
				Name: "verbose",
			},
			&cli.BoolFlag{
				Name:    "grayscale",
				Aliases: []string{"g"},
			},
			&cli.StringFlag{
				Name: "saturation",
			},
			&cli.StringFlag{
				Name: "brightness",
			},
			&cli.StringFlag{
				Name: "contrast",
			},
			&cli.BoolFlag{
				Name: "no-exif-rotation",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "png",
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Required: true,
			},
			&cli.BoolFlag{
				Name: "no-overwrite",
			},
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Value:   "default",
			},
			&cli.UintFlag{
				Name:    "width",
				Aliases: []string{"x"},
			},
			&cli.UintFlag{
				Name:    "height",
				Aliases: []string{"y"},
			},
			&cli.UintFlag{
				Name:    "upscale",
				Aliases: []string{"u"},
				Value:   1,
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:                   "flat",
				Usage:                  "fill each region with its palette color",
				UseShortOptionHandling: true,
				Action:                 flat,
			},
			{
				Name:  "bordered",
				Usage: "like flat, with region boundaries drawn in a border color",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "by",
						Usage: "'color' to outline color seams, 'region' to outline every region",
						Value: "color",
					},
					&cli.StringFlag{
						Name:    "border-color",
						Aliases: []string{"b"},
						Value:   "black",
					},
				},
				UseShortOptionHandling: true,
				Action:                 bordered,
			},
		},
		Before: preProcess,
		Action: func(c *cli.Context) error {
			return errors.New("no command specified")
		},
	}

	// Handle version flag
	if len(os.Args) == 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("tessella", version)
		fmt.Println("Commit:", commit)
		fmt.Println("Built by:", builtBy)
		return
	}

	// Hack around issue where required flags are still required even for help
	// https://github.com/urfave/cli/issues/1247
	if len(os.Args) == 3 {
		if os.Args[1] == "h" || os.Args[1] == "help" {
			// Like: tessella help bordered
			for _, c := range app.Commands {
				if c.Name == os.Args[2] {
					cli.HelpPrinter(os.Stdout, cli.CommandHelpTemplate, c)
					return
				}
			}
			fmt.Println("no command with that name")
			os.Exit(1)
		} else if os.Args[len(os.Args)-1] == "-h" || os.Args[len(os.Args)-1] == "--help" {
			// Like: tessella bordered --help
			for _, c := range app.Commands {
				if c.Name == os.Args[1] {
					cli.HelpPrinter(os.Stdout, cli.CommandHelpTemplate, c)
					return
				}
			}
			fmt.Println("no command with that name")
			os.Exit(1)
		}
	}

	err := app.Run(os.Args)
	if err != nil {
		if len(os.Args) == 1 {
			// Just ran the command with no flags
			return
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
