package ember

import (
	"fmt"
	"time"
)

// App wires the platform window, the GPU device, the context and the
// director into a runnable engine shell.
type App struct {
	cfg       Config
	log       Logger
	win       *Window
	dev       Device
	surface   PresentationSurface
	ctx       *GpuContext
	director  *Director
	responder *ResponderManager
}

// AppBuilder assembles an App. With no explicit device it opens a window
// and acquires a wgpu device for it.
type AppBuilder struct {
	cfg     Config
	log     Logger
	dev     Device
	surface PresentationSurface
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{cfg: DefaultConfig()}
}

func (b *AppBuilder) WithConfig(cfg Config) *AppBuilder {
	b.cfg = cfg.normalized()
	return b
}

func (b *AppBuilder) WithLogger(log Logger) *AppBuilder {
	b.log = log
	return b
}

// WithDevice supplies a pre-made device and surface, e.g. the headless pair
// for display-less runs.
func (b *AppBuilder) WithDevice(dev Device, surface PresentationSurface) *AppBuilder {
	b.dev = dev
	b.surface = surface
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	log := b.log
	if log == nil {
		log = NewDefaultLogger("ember", b.cfg.Debug)
	}

	app := &App{cfg: b.cfg, log: log, dev: b.dev, surface: b.surface}

	if app.dev == nil {
		win, err := NewWindow(b.cfg.WindowWidth, b.cfg.WindowHeight, b.cfg.WindowTitle)
		if err != nil {
			return nil, err
		}
		dev, surface, err := OpenWgpuDevice(win, b.cfg.VSync)
		if err != nil {
			win.Destroy()
			return nil, fmt.Errorf("app: acquire gpu: %w", err)
		}
		win.OnResize(dev.Reconfigure)
		app.win = win
		app.dev = dev
		app.surface = surface
		log.Infof("window %dx%d %q, gpu device ready", b.cfg.WindowWidth, b.cfg.WindowHeight, b.cfg.WindowTitle)
	}

	ctx, err := NewGpuContext(app.dev, log)
	if err != nil {
		return nil, err
	}
	director, err := NewDirector(ctx, app.surface, b.cfg, log)
	if err != nil {
		ctx.Release()
		return nil, err
	}
	app.ctx = ctx
	app.director = director
	app.responder = NewResponderManager(director)
	return app, nil
}

func (a *App) Director() *Director          { return a.director }
func (a *App) Responder() *ResponderManager { return a.responder }
func (a *App) Logger() Logger               { return a.log }

// Run ticks the director until the window closes or the director ends, then
// tears the rendering state down.
func (a *App) Run() error {
	defer a.teardown()

	for a.director.State() != DirectorEnded {
		if a.win != nil {
			if a.win.ShouldClose() {
				a.director.End()
				break
			}
			a.win.PollEvents()
		}
		if err := a.director.Tick(); err != nil {
			return fmt.Errorf("app: frame %d: %w", a.director.TotalFrames(), err)
		}
		if iv := a.director.FrameSkipInterval(); iv > 0 {
			time.Sleep(iv)
		}
	}
	return nil
}

func (a *App) teardown() {
	a.director.Release()
	a.ctx.Release()
	a.dev.Release()
	if a.win != nil {
		a.win.Destroy()
	}
}
