package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gekko3d/slim/rt/render"
	"github.com/gekko3d/slim/rt/sceneio"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}
	opts.Shadows = !ctx.Bool("no-shadows")

	loaded, err := sceneio.Load(ctx.Args().First(), loadLogger(ctx))
	if err != nil {
		return err
	}

	r := render.New(opts)
	img := r.Render(loaded.Scene, &loaded.Camera)
	if err := savePNG(ctx.String("out"), img); err != nil {
		return err
	}
	displayFrameStats(&r.Profiler, opts)
	logger.Infof("wrote %s", ctx.String("out"))
	return nil
}

func renderOptions(ctx *cli.Context) (render.Options, error) {
	opts := render.DefaultOptions()
	mode, err := render.ParseMode(ctx.String("mode"))
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	opts.Width, opts.Height = ctx.Int("width"), ctx.Int("height")
	if opts.Width <= 0 || opts.Height <= 0 {
		return opts, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if d := ctx.Int("downscale"); d > 1 {
		opts.Downscale = d
	}
	return opts, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func displayFrameStats(p *render.Profiler, opts render.Options) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stat", "Value"})
	table.AppendBulk(p.Rows())
	table.SetFooter([]string{"Mode", fmt.Sprintf("%s %dx%d", opts.Mode, opts.Width, opts.Height)})
	table.Render()
	logger.Infof("frame statistics\n%s", buf.String())
}
