package ember

import (
	"fmt"
	"sync"
)

// HeadlessDevice implements Device entirely in memory. It backs tests and
// display-less runs; buffer writes land in plain byte slices and submitted
// command buffers are only counted, in order.
type HeadlessDevice struct {
	mu        sync.Mutex
	submitted int
	buffers   int
	released  bool
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{}
}

// Submitted reports how many command buffers have been submitted.
func (d *HeadlessDevice) Submitted() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

// LiveBuffers reports device allocations not yet released.
func (d *HeadlessDevice) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffers
}

func (d *HeadlessDevice) CreateBuffer(label string, size uint64, kind BufferKind) (DeviceBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, fmt.Errorf("headless device: allocation after release")
	}
	d.buffers++
	return &headlessBuffer{dev: d, label: label, data: make([]byte, size)}, nil
}

func (d *HeadlessDevice) CreateCommandEncoder() (CommandEncoder, error) {
	return &headlessEncoder{}, nil
}

func (d *HeadlessDevice) Submit(cb CommandBuffer) error {
	if _, ok := cb.(*headlessCommandBuffer); !ok {
		return fmt.Errorf("headless device: submit of a foreign command buffer")
	}
	d.mu.Lock()
	d.submitted++
	d.mu.Unlock()
	return nil
}

func (d *HeadlessDevice) Release() {
	d.mu.Lock()
	d.released = true
	d.mu.Unlock()
}

type headlessBuffer struct {
	dev      *HeadlessDevice
	label    string
	data     []byte
	released bool
}

func (b *headlessBuffer) Write(offset uint64, data []byte) error {
	if b.released {
		return fmt.Errorf("headless buffer %q: write after release", b.label)
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("headless buffer %q: write of %d bytes at %d exceeds size %d", b.label, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

func (b *headlessBuffer) Size() uint64 { return uint64(len(b.data)) }

func (b *headlessBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dev.mu.Lock()
	b.dev.buffers--
	b.dev.mu.Unlock()
}

// Contents exposes the device-side bytes for test assertions.
func (b *headlessBuffer) Contents() []byte { return b.data }

type headlessEncoder struct {
	passes   int
	finished bool
}

func (e *headlessEncoder) BeginRenderPass(view TextureView, load LoadAction, clear Color) (RenderPassEncoder, error) {
	if view == nil {
		return nil, fmt.Errorf("headless encoder: render pass with nil view")
	}
	if e.finished {
		return nil, fmt.Errorf("headless encoder: render pass after finish")
	}
	e.passes++
	return &headlessPass{view: view, load: load, clear: clear}, nil
}

func (e *headlessEncoder) Finish() (CommandBuffer, error) {
	if e.finished {
		return nil, fmt.Errorf("headless encoder: finished twice")
	}
	e.finished = true
	return &headlessCommandBuffer{passes: e.passes}, nil
}

func (e *headlessEncoder) Release() {}

type headlessPass struct {
	view  TextureView
	load  LoadAction
	clear Color
	ended bool
}

func (p *headlessPass) End() error {
	if p.ended {
		return fmt.Errorf("headless pass: ended twice")
	}
	p.ended = true
	return nil
}

func (p *headlessPass) Release() {}

type headlessCommandBuffer struct {
	passes int
}

func (c *headlessCommandBuffer) Release() {}

// HeadlessTextureView is a renderable image stand-in for offscreen targets
// and tests.
type HeadlessTextureView struct {
	releases int
}

func NewHeadlessTextureView() *HeadlessTextureView { return &HeadlessTextureView{} }

func (v *HeadlessTextureView) Release() { v.releases++ }

// HeadlessSurface is an in-memory presentation surface: every acquire hands
// out a fresh single-frame view, Present just counts.
type HeadlessSurface struct {
	W, H     int
	Scale    float32
	acquired int
	presents int
}

func NewHeadlessSurface(w, h int) *HeadlessSurface {
	return &HeadlessSurface{W: w, H: h, Scale: 1}
}

func (s *HeadlessSurface) AcquireTexture() (TextureView, error) {
	s.acquired++
	return NewHeadlessTextureView(), nil
}

func (s *HeadlessSurface) Present()         { s.presents++ }
func (s *HeadlessSurface) Size() (int, int) { return s.W, s.H }

func (s *HeadlessSurface) PixelSize() (int, int) {
	return int(float32(s.W) * s.Scale), int(float32(s.H) * s.Scale)
}

func (s *HeadlessSurface) ContentScale() float32 { return s.Scale }

// Presented reports how many frames have been handed to the (virtual)
// display.
func (s *HeadlessSurface) Presented() int { return s.presents }
