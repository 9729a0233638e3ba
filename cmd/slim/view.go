package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gekko3d/slim"
	"github.com/gekko3d/slim/platform"
	"github.com/gekko3d/slim/rt/input"
	"github.com/gekko3d/slim/rt/render"
	"github.com/gekko3d/slim/rt/sceneio"
	"github.com/urfave/cli"
)

const titleRefreshFrames = 30

// View opens a window on a scene and runs the editor until the window is
// closed or escape is pressed.
func View(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	path := ctx.Args().First()
	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}
	loaded, err := sceneio.Load(path, loadLogger(ctx))
	if err != nil {
		return err
	}

	win, err := platform.NewWindow(opts.Width, opts.Height, "slim - "+filepath.Base(path))
	if err != nil {
		return err
	}
	defer win.Destroy()
	presenter, err := platform.NewPresenter(win)
	if err != nil {
		return err
	}
	defer presenter.Release()

	r := render.New(opts)
	app := slim.NewApp(loaded.Scene, loaded.Camera, opts.Width, opts.Height, logger).
		UseSystem(frameTitle(win, win.Title(), r))

	var reload <-chan struct{}
	if ctx.BoolT("watch") {
		sw, err := watchScene(path)
		if err != nil {
			return err
		}
		defer sw.Close()
		reload = sw.Changed
	}

	var in input.State
	snapshots := 0
	fbw, fbh := win.FramebufferSize()
	for !win.ShouldClose() {
		win.PollInput(&in)
		if in.JustPressed[input.KeyEscape] {
			win.Close()
			continue
		}
		if in.WindowWidth <= 0 || in.WindowHeight <= 0 {
			continue
		}
		if in.WindowWidth != app.Dimensions.Width || in.WindowHeight != app.Dimensions.Height {
			app.Resize(in.WindowWidth, in.WindowHeight)
			r.Resize(in.WindowWidth, in.WindowHeight)
		}
		if w, h := win.FramebufferSize(); w != fbw || h != fbh {
			fbw, fbh = w, h
			presenter.Resize(w, h)
		}

		select {
		case <-reload:
			app = reloadScene(path, app, win, r, loadLogger(ctx))
		default:
		}

		app.Frame(&in)
		img := r.Render(app.Scene, &app.Camera)
		r.DrawGizmos(img, &app.Camera, app.Gizmos())

		if in.JustPressed[input.KeyP] {
			snapshots++
			name := fmt.Sprintf("snapshot-%03d.png", snapshots)
			if err := savePNG(name, img); err != nil {
				logger.Errorf("snapshot: %v", err)
			} else {
				logger.Infof("saved %s", name)
			}
		}
		if err := presenter.Present(img); err != nil {
			logger.Warnf("present: %v", err)
		}
	}
	return nil
}

// reloadScene swaps in a freshly loaded scene, keeping the current camera.
// A scene that fails to load leaves the running one in place.
func reloadScene(path string, app *slim.App, win *platform.Window, r *render.Renderer, l sceneio.Logger) *slim.App {
	loaded, err := sceneio.Load(path, l)
	if err != nil {
		logger.Errorf("reload: %v", err)
		return app
	}
	next := slim.NewApp(loaded.Scene, app.Camera, app.Dimensions.Width, app.Dimensions.Height, logger)
	next.Controls = app.Controls
	next.UseSystem(frameTitle(win, "slim - "+filepath.Base(path), r))
	logger.Infof("reloaded %s", path)
	return next
}

// frameTitle shows the average frame time in the window title.
func frameTitle(win *platform.Window, base string, r *render.Renderer) slim.System {
	last := time.Now()
	return func(app *slim.App, _ *input.State) {
		if app.Frames()%titleRefreshFrames != 0 {
			return
		}
		now := time.Now()
		perFrame := now.Sub(last) / titleRefreshFrames
		last = now
		win.SetTitle(fmt.Sprintf("%s | %s/frame | %d rays", base, perFrame.Round(time.Microsecond), r.Profiler.Rays))
		r.Profiler.Reset()
	}
}
