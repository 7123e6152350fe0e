package ember

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
)

// WgpuDevice implements Device over a WebGPU adapter. One instance owns the
// logical device, the submission queue and the configured window surface.
type WgpuDevice struct {
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig wgpu.SurfaceConfiguration
}

// OpenWgpuDevice acquires a GPU for the given window and configures its
// swapchain. Any failure here is a startup failure of the whole rendering
// subsystem and is returned for the caller to abort on.
func OpenWgpuDevice(win *Window, vsync bool) (*WgpuDevice, PresentationSurface, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win.glfwWin))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wgpu: request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wgpu: request device: %w", err)
	}
	queue := device.GetQueue()
	if queue == nil {
		return nil, nil, fmt.Errorf("wgpu: device has no command queue")
	}

	caps := surface.GetCapabilities(adapter)
	presentMode := wgpu.PresentModeImmediate
	if vsync {
		presentMode = wgpu.PresentModeFifo
	}
	w, h := win.PixelSize()
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(w),
		Height:      uint32(h),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	dev := &WgpuDevice{
		instance:      instance,
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: surfaceConfig,
	}
	return dev, &wgpuSurface{dev: dev, win: win}, nil
}

func (d *WgpuDevice) CreateBuffer(label string, size uint64, kind BufferKind) (DeviceBuffer, error) {
	var usage wgpu.BufferUsage
	switch kind {
	case BufferKindVertex:
		usage = wgpu.BufferUsageVertex
	case BufferKindIndex:
		usage = wgpu.BufferUsageIndex
	case BufferKindUniform:
		usage = wgpu.BufferUsageUniform
	default:
		return nil, fmt.Errorf("wgpu: unknown buffer kind %d", kind)
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s buffer %q (%d bytes): %w", kind, label, size, err)
	}
	return &wgpuBuffer{buf: buf, queue: d.queue, size: size}, nil
}

func (d *WgpuDevice) CreateCommandEncoder() (CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	return &wgpuEncoder{enc: enc}, nil
}

func (d *WgpuDevice) Submit(cb CommandBuffer) error {
	wcb, ok := cb.(*wgpuCommandBuffer)
	if !ok {
		return fmt.Errorf("wgpu: submit of a foreign command buffer")
	}
	d.queue.Submit(wcb.cb)
	return nil
}

// Reconfigure resizes the swapchain, e.g. after a window resize.
func (d *WgpuDevice) Reconfigure(widthPx, heightPx int) {
	if widthPx <= 0 || heightPx <= 0 {
		return
	}
	d.surfaceConfig.Width = uint32(widthPx)
	d.surfaceConfig.Height = uint32(heightPx)
	d.surface.Configure(d.adapter, d.device, &d.surfaceConfig)
}

func (d *WgpuDevice) Release() {
	d.device.Release()
	d.adapter.Release()
	d.surface.Release()
	d.instance.Release()
}

type wgpuBuffer struct {
	buf   *wgpu.Buffer
	queue *wgpu.Queue
	size  uint64
}

func (b *wgpuBuffer) Write(offset uint64, data []byte) error {
	return b.queue.WriteBuffer(b.buf, offset, data)
}

func (b *wgpuBuffer) Size() uint64 { return b.size }
func (b *wgpuBuffer) Release()     { b.buf.Release() }

type wgpuEncoder struct {
	enc *wgpu.CommandEncoder
}

func (e *wgpuEncoder) BeginRenderPass(view TextureView, load LoadAction, clear Color) (RenderPassEncoder, error) {
	wv, ok := view.(*wgpuTextureView)
	if !ok {
		return nil, fmt.Errorf("wgpu: render pass against a foreign texture view")
	}
	loadOp := wgpu.LoadOpClear
	if load == LoadActionPreserve {
		loadOp = wgpu.LoadOpLoad
	}
	pass := e.enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       wv.view,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A},
			},
		},
	})
	return &wgpuPass{pass: pass}, nil
}

func (e *wgpuEncoder) Finish() (CommandBuffer, error) {
	cb, err := e.enc.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuCommandBuffer{cb: cb}, nil
}

func (e *wgpuEncoder) Release() { e.enc.Release() }

type wgpuPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuPass) End() error { return p.pass.End() }
func (p *wgpuPass) Release()   { p.pass.Release() }

type wgpuCommandBuffer struct {
	cb *wgpu.CommandBuffer
}

func (c *wgpuCommandBuffer) Release() { c.cb.Release() }

type wgpuTextureView struct {
	view *wgpu.TextureView
}

func (v *wgpuTextureView) Release() { v.view.Release() }

// wgpuSurface adapts the configured window swapchain to the
// PresentationSurface contract.
type wgpuSurface struct {
	dev *WgpuDevice
	win *Window
}

func (s *wgpuSurface) AcquireTexture() (TextureView, error) {
	tex, err := s.dev.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("wgpu: acquire surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: view of surface texture: %w", err)
	}
	return &wgpuTextureView{view: view}, nil
}

func (s *wgpuSurface) Present() { s.dev.surface.Present() }

func (s *wgpuSurface) Size() (int, int)      { return s.win.Size() }
func (s *wgpuSurface) PixelSize() (int, int) { return s.win.PixelSize() }
func (s *wgpuSurface) ContentScale() float32 { return s.win.ContentScale() }
