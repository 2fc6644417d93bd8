package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/makeworld-the-better-one/tessella/mosaic"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/colornames"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// parsePercentArg takes a string like "0.5" or "50%" and will return a float
// like 50 or 0.5, depending on the second argument. An empty string returns 0.
//
// If `maxOne` is true, then "50%" will return 0.5. Otherwise it will return 50.
func parsePercentArg(arg string, maxOne bool) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	if strings.HasSuffix(arg, "%") {
		arg = arg[:len(arg)-1]
		f64, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, err
		}
		if maxOne {
			f64 /= 100.0
		}
		return f64, nil
	}
	f64, err := strconv.ParseFloat(arg, 64)
	if !maxOne {
		f64 *= 100.0
	}
	return f64, err
}

// globalFlag returns the value of flag at the top level of the command.
// For example, with the command:
//
//	tessella --colors 8 bordered --by region
//
// "colors" is a global flag, and "by" is a flag local to the bordered subcommand.
func globalFlag(flag string, c *cli.Context) interface{} {
	ancestor := c.Lineage()[len(c.Lineage())-1]
	if len(ancestor.Args().Slice()) == 0 {
		// When the global context calls this func, the last in the lineage
		// has no args for some reason. So return the second-last instead.
		return c.Lineage()[len(c.Lineage())-2].Value(flag)
	}
	return ancestor.Value(flag)
}

func hexToColor(hex string) (color.NRGBA, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(strings.ToLower(hex))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%s is not a hex color", hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 255}, nil
}

func rgbToColor(s string) (color.NRGBA, error) {
	format := "%d,%d,%d"
	var r, g, b uint8
	n, err := fmt.Sscanf(s, format, &r, &g, &b)
	if err != nil {
		return color.NRGBA{}, err
	}
	if n != 3 {
		return color.NRGBA{}, fmt.Errorf("%s is not an RGB tuple", s)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

// parseColor turns a single color argument into a color.
func parseColor(flag, arg string) (color.NRGBA, error) {
	// Try to parse as RGB numbers, then hex, then grayscale, then SVG colors, then fail

	arg = strings.TrimSpace(arg)

	if strings.Count(arg, ",") == 2 {
		rgbColor, err := rgbToColor(arg)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%s: %s is not a valid RGB tuple. Example: 25,200,150", flag, arg)
		}
		return rgbColor, nil
	}

	// Short hex like "fff" is only accepted with a '#', otherwise "255" would be hex
	if strings.HasPrefix(arg, "#") || len(arg) == 6 {
		hexColor, err := hexToColor(arg)
		if err == nil {
			return hexColor, nil
		}
	}

	n, err := strconv.Atoi(arg)
	if err == nil {
		if n > 255 || n < 0 {
			return color.NRGBA{}, fmt.Errorf("%s: single numbers like %d must be in the range 0-255", flag, n)
		}
		return color.NRGBA{uint8(n), uint8(n), uint8(n), 255}, nil
	}

	htmlColor, ok := colornames.Map[strings.ToLower(arg)]
	if ok {
		return color.NRGBAModel.Convert(htmlColor).(color.NRGBA), nil
	}

	return color.NRGBA{}, fmt.Errorf("%s: %s not recognized as an RGB tuple, hex code, number 0-255, or SVG color name", flag, arg)
}

// getInputImage takes an input image arg and returns an image that has
// modifications applied.
func getInputImage(arg string) (image.Image, error) {
	var img image.Image
	var err error

	if arg == "-" {
		img, err = imaging.Decode(os.Stdin, autoOrientation)
	} else {
		img, err = imaging.Open(arg, autoOrientation)
	}
	if err != nil {
		return nil, err
	}

	if width != 0 || height != 0 {
		// Box sampling is quick and fast, and better then others at downscaling
		// https://pkg.go.dev/github.com/disintegration/imaging#ResampleFilter
		img = imaging.Resize(img, width, height, imaging.Box)
	}

	if grayscale {
		img = imaging.Grayscale(img)
	}
	if saturation != 0 {
		img = imaging.AdjustSaturation(img, saturation)
	}
	if contrast != 0 {
		img = imaging.AdjustContrast(img, contrast)
	}
	if brightness != 0 {
		img = imaging.AdjustBrightness(img, brightness)
	}

	return img, nil
}

// postProcImage upscales the image if necessary. Nearest neighbour keeps the
// palette intact.
func postProcImage(img image.Image) image.Image {
	if upscale == 1 {
		return img
	}
	return imaging.Resize(
		img,
		img.Bounds().Dx()*upscale,
		0,
		imaging.NearestNeighbor,
	)
}

// renderImage runs the mosaic pipeline over a decoded image.
func renderImage(img image.Image, opts mosaic.ComposeOptions) (*mosaic.Result, error) {
	grid, err := mosaic.FromImage(img)
	if err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("Rendering %dx%d image: %d regions, %d colors, %s", grid.W, grid.H, regions, numColors, opts.Mode)
	}

	res, err := mosaic.Render(grid, rng, mosaic.Options{
		Regions:   regions,
		Colors:    numColors,
		Quantizer: quantizer,
		Compose:   opts,
	})
	if err != nil {
		return nil, err
	}

	if verbose {
		q := res.Quantization
		if q.Converged {
			log.Printf("Converged at iteration %d", q.Iterations)
		}
		log.Printf("Palette: %s", strings.Join(hexColors(q.Palette()), " "))
	}
	return res, nil
}

// gifPalette returns every color that can appear in the rendered image.
// The dither library needs at least two.
func gifPalette(res *mosaic.Result, opts mosaic.ComposeOptions) []color.Color {
	colors := res.Quantization.Palette()
	if opts.Mode == mosaic.Bordered && !slices.Contains(colors, opts.BorderColor) {
		colors = append(colors, opts.BorderColor)
	}
	for _, pad := range []mosaic.Color{mosaic.Black, {R: 255, G: 255, B: 255}} {
		if len(colors) >= 2 {
			break
		}
		if !slices.Contains(colors, pad) {
			colors = append(colors, pad)
		}
	}

	palette := make([]color.Color, len(colors))
	for i, c := range colors {
		palette[i] = color.NRGBA{c.R, c.G, c.B, 255}
	}
	return palette
}

// writeImage encodes the rendered image into w, in the output format.
func writeImage(w io.Writer, res *mosaic.Result, opts mosaic.ComposeOptions) error {
	img := postProcImage(res.Image)

	if outFormat == "png" {
		return (&png.Encoder{CompressionLevel: compLevel}).Encode(w, img)
	}

	palette := gifPalette(res, opts)
	if len(palette) > 256 {
		return fmt.Errorf("the GIF format only supports 256 colors or less in the palette, this image has %d", len(palette))
	}

	// Every pixel is already a palette color, so the ditherer never has any
	// error to diffuse. It's only mapping pixels onto palette indices.
	// The ditherer must also be the quantizer: its Draw only accepts a
	// destination built from its own palette.
	d := dither.NewDitherer(palette)
	d.Matrix = dither.Simple2D

	return gif.Encode(
		w, img,
		&gif.Options{
			NumColors: len(palette),
			Quantizer: d,
			Drawer:    d,
		},
	)
}

// processImages renders all the input images and writes them.
// It handles all image I/O.
func processImages(opts mosaic.ComposeOptions, c *cli.Context) error {
	outPath := globalFlag("out", c).(string)

	for _, inputPath := range inputImages {

		img, err := getInputImage(inputPath)
		if err != nil {
			return fmt.Errorf("error loading '%s': %w", inputPath, err)
		}

		res, err := renderImage(img, opts)
		if err != nil {
			return fmt.Errorf("error rendering '%s': %w", inputPath, err)
		}

		var file io.WriteCloser
		var path string

		if outPath == "-" {
			file = os.Stdout
			path = "stdout"
		} else {
			if outIsDir {
				// Inside output directory
				// Same name as input file but potentially different extension
				path = filepath.Join(
					outPath,
					strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))+"."+outFormat,
				)
			} else {
				// Output file path
				path = outPath
			}

			file, err = os.OpenFile(path, outFileFlags, 0644)
			if err != nil {
				return fmt.Errorf("'%s': %w", path, err)
			}
		}

		err = writeImage(file, res, opts)
		if err != nil {
			defer file.Close() // Keep (possibly stdout) open to write error messages then close
			return fmt.Errorf("error writing %s to '%s': %w", strings.ToUpper(outFormat), path, err)
		}
		file.Close()

		if paletteOut != "" {
			err = savePalette(res.Quantization.Palette(), 64, paletteOut)
			if err != nil {
				return fmt.Errorf("error writing palette to '%s': %w", paletteOut, err)
			}
		}
	}

	return nil
}

// sortByBrightness orders colors from darkest to brightest, by relative
// luminance.
func sortByBrightness(colors []mosaic.Color) {
	luminance := func(c mosaic.Color) float64 {
		cf, _ := colorful.MakeColor(c)
		r, g, b := cf.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortStableFunc(colors, func(a, b mosaic.Color) int {
		la, lb := luminance(a), luminance(b)
		if la < lb {
			return -1
		}
		if la > lb {
			return 1
		}
		return 0
	})
}

func hexColors(colors []mosaic.Color) []string {
	s := make([]string, len(colors))
	for i, c := range colors {
		cf, _ := colorful.MakeColor(c)
		s[i] = cf.Hex()
	}
	return s
}

// savePalette writes the palette as a row of square swatches, darkest first.
func savePalette(palette []mosaic.Color, tileSize int, path string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	sorted := slices.Clone(palette)
	sortByBrightness(sorted)

	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(sorted), tileSize))
	for i, c := range sorted {
		x0 := i * tileSize
		for y := 0; y < tileSize; y++ {
			for x := x0; x < x0+tileSize; x++ {
				img.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, 255})
			}
		}
	}

	file, err := os.OpenFile(path, outFileFlags, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	return (&png.Encoder{CompressionLevel: compLevel}).Encode(file, img)
}
