package main

import (
	"errors"
	"fmt"
	"image/png"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/tessella/mosaic"
	"github.com/urfave/cli/v2"
)

const (
	unsupportedFormat string = "'%s' is an unsupported format, only 'png' or 'gif' are accepted"
)

var (
	// Number of seed regions and target palette size, both at least 1
	regions   int
	numColors int

	quantizer mosaic.Quantizer

	// rng is the only source of randomness. Seeded from --seed, or the clock.
	rng *rand.Rand

	// paletteOut is the path of the palette swatch, or empty for none
	paletteOut string

	verbose bool

	grayscale bool

	// Range -100,100

	saturation float64
	brightness float64
	contrast   float64

	autoOrientation imaging.DecodeOption

	inputImages []string
	outFormat   string // "png" or "gif"
	outIsDir    bool

	compLevel png.CompressionLevel

	outFileFlags int // For os.OpenFile

	width  int
	height int
	// upscale will always be 1 or above
	upscale int
)

// preProcess is automatically called by the app before anything else.
// It's run in the global context.
func preProcess(c *cli.Context) error {
	var err error

	verbose = c.Bool("verbose")

	regions = int(c.Uint("regions"))
	if regions == 0 {
		return errors.New("regions: there must be at least one region")
	}
	numColors = int(c.Uint("colors"))
	if numColors == 0 {
		return errors.New("colors: the palette must have at least one color")
	}

	quantizer, err = newQuantizer(c.String("quantizer"), int(c.Uint("iterations")))
	if err != nil {
		return err
	}

	if c.IsSet("seed") {
		rng = rand.New(rand.NewSource(c.Int64("seed")))
	} else {
		// Seed with something that won't repeat next use
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	saturation, err = parsePercentArg(c.String("saturation"), false)
	if err != nil {
		return fmt.Errorf("saturation: %w", err)
	}
	if saturation <= -100 {
		grayscale = true
		saturation = 0
	}
	brightness, err = parsePercentArg(c.String("brightness"), false)
	if err != nil {
		return fmt.Errorf("brightness: %w", err)
	}
	contrast, err = parsePercentArg(c.String("contrast"), false)
	if err != nil {
		return fmt.Errorf("contrast: %w", err)
	}
	if c.Bool("grayscale") {
		grayscale = true
	}

	autoOrientation = imaging.AutoOrientation(!c.Bool("no-exif-rotation"))

	inputImages = make([]string, 0)
	for _, path := range c.StringSlice("in") {
		if strings.Contains(path, "*") {
			// Parse as glob
			paths, err := filepath.Glob(path)
			if err != nil {
				return fmt.Errorf("bad glob pattern '%s': %w", path, err)
			}
			inputImages = append(inputImages, paths...)
		} else {
			inputImages = append(inputImages, path)
		}
	}
	if len(inputImages) == 0 {
		return errors.New("no input images matched")
	}

	formatVal := c.String("format")
	if formatVal != "png" && formatVal != "gif" {
		return fmt.Errorf(unsupportedFormat, formatVal)
	}

	outFormat, outIsDir, err = outputFormat(c.String("out"), formatVal, c.IsSet("format"))
	if err != nil {
		return err
	}

	// Multiple input images are only valid if the output points to a directory
	if len(inputImages) > 1 && !outIsDir {
		return errors.New("multiple input images are only allowed if the output is an existing directory")
	}

	paletteOut = c.String("palette-out")
	if paletteOut != "" && len(inputImages) > 1 {
		return errors.New("palette-out can only be used with a single input image")
	}

	// Set PNG compression type

	switch c.String("compression") {
	case "default":
		compLevel = png.DefaultCompression
	case "no":
		compLevel = png.NoCompression
	case "speed":
		compLevel = png.BestSpeed
	case "size":
		compLevel = png.BestCompression
	default:
		return fmt.Errorf("invalid compression type '%s'", c.String("compression"))
	}

	if c.Bool("no-overwrite") {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	// Set here for convenience
	width = int(c.Uint("width"))
	height = int(c.Uint("height"))
	upscale = int(c.Uint("upscale"))
	if upscale == 0 {
		// Invalid
		upscale = 1
	}

	return nil
}

// outputFormat figures out the output format, and whether the output path is
// an existing directory. formatSet is whether the user gave --format, otherwise
// the file extension wins over formatVal.
func outputFormat(outVal, formatVal string, formatSet bool) (string, bool, error) {
	if outVal == "-" {
		// Outputting to stdout, so just use whatever the flag is
		return formatVal, false, nil
	}

	outFI, err := os.Stat(outVal)
	if err == nil && outFI.IsDir() {
		// Exists and is a directory
		// Just use what the flag is
		return formatVal, true, nil
	}

	// Outputting to file, that already exists
	// Or something that doesn't exist - assumed to be a file

	if formatSet {
		// Format flag was set, so ignore what the file looks like
		return formatVal, false, nil
	}

	// Format wasn't set, so ignore default value of "png"
	// Try to figure out format from output filename
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outVal), "."))
	switch ext {
	case "png", "gif":
		return ext, false, nil
	case "":
		// No extension, use default format
		return "png", false, nil
	}
	// Unsupported extension and no format flag override
	return "", false, fmt.Errorf(unsupportedFormat, ext)
}

// newQuantizer returns the quantizer named by the --quantizer flag.
// iterations of 0 means the quantizer's default. numColors must be set.
func newQuantizer(name string, iterations int) (mosaic.Quantizer, error) {
	switch strings.ToLower(name) {
	case "adaptive", "":
		if iterations == 0 {
			// Growth adds one color per iteration, so give it room to reach the target
			iterations = numColors + 10
		}
		return &mosaic.Adaptive{
			MaxIterations: iterations,
			Trace: func(it, colors int) {
				if verbose {
					log.Printf("iteration %d: %d colors", it, colors)
				}
			},
		}, nil
	case "kmeans":
		return mosaic.KMeans{}, nil
	case "palettor":
		return mosaic.Palettor{MaxIterations: iterations}, nil
	}
	return nil, fmt.Errorf("quantizer: '%s' is not one of adaptive, kmeans, palettor", name)
}

func flat(c *cli.Context) error {
	if c.Args().Len() > 0 {
		return errors.New("flat takes no arguments")
	}

	err := processImages(mosaic.ComposeOptions{Mode: mosaic.Flat}, c)
	if err != nil {
		return err
	}
	return nil
}

func bordered(c *cli.Context) error {
	if c.Args().Len() > 0 {
		return errors.New("bordered takes no arguments")
	}

	opts := mosaic.ComposeOptions{Mode: mosaic.Bordered}

	switch strings.ToLower(c.String("by")) {
	case "color", "colour":
		opts.Border = mosaic.ColorBorder
	case "region":
		opts.Border = mosaic.RegionBorder
	default:
		return fmt.Errorf("by: '%s' must be 'color' or 'region'", c.String("by"))
	}

	borderColor, err := parseColor("border-color", c.String("border-color"))
	if err != nil {
		return err
	}
	opts.BorderColor = mosaic.ColorOf(borderColor)

	err = processImages(opts, c)
	if err != nil {
		return err
	}
	return nil
}
