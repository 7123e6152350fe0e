package ember

import (
	"fmt"

	"github.com/google/uuid"
)

// GpuContext is the chokepoint all drawing passes through. It owns the
// device handle, the command buffer currently being recorded and the open
// render pass, if any. A pass encoder exists exactly while a pass is open.
//
// There is no ambient "current context"; whoever draws receives the context
// explicitly, which keeps nested rendering contexts (offscreen thumbnails
// mid-frame) free of hidden global state.
type GpuContext struct {
	id      string
	log     Logger
	dev     Device
	encoder CommandEncoder
	pass    RenderPassEncoder
	target  *FrameTarget
}

// NewGpuContext wraps an acquired device and allocates the first command
// encoder. Failure here means the rendering subsystem cannot start.
func NewGpuContext(dev Device, log Logger) (*GpuContext, error) {
	if dev == nil {
		return nil, fmt.Errorf("gpu context: nil device")
	}
	log = orNopLogger(log)
	enc, err := dev.CreateCommandEncoder()
	if err != nil {
		return nil, fmt.Errorf("gpu context: allocate command encoder: %w", err)
	}
	ctx := &GpuContext{
		id:      uuid.NewString()[:8],
		log:     log,
		dev:     dev,
		encoder: enc,
	}
	log.Debugf("gpu context %s ready", ctx.id)
	return ctx, nil
}

func (c *GpuContext) Device() Device { return c.dev }

// Target returns the destination of the open pass, nil outside a pass.
func (c *GpuContext) Target() *FrameTarget { return c.target }

// PassOpen reports whether a render pass is currently recording.
func (c *GpuContext) PassOpen() bool { return c.pass != nil }

// BeginRenderPass opens a color pass against target. An already-open pass is
// ended first, an encoder is never silently leaked.
func (c *GpuContext) BeginRenderPass(target *FrameTarget, load LoadAction, clear Color) error {
	if target == nil {
		panic("gpu context: begin render pass with nil target")
	}
	c.EndRenderPass()
	view := target.currentView()
	pass, err := c.encoder.BeginRenderPass(view, load, clear)
	if err != nil {
		return fmt.Errorf("gpu context %s: begin render pass on %s: %w", c.id, target.label, err)
	}
	c.pass = pass
	c.target = target
	return nil
}

// EndRenderPass closes the open pass. Calling it with no open pass is a
// no-op.
func (c *GpuContext) EndRenderPass() {
	if c.pass == nil {
		return
	}
	if err := c.pass.End(); err != nil {
		// Encoder state is corrupt at this point, continuing would record
		// into a broken command buffer.
		panic(fmt.Sprintf("gpu context %s: end render pass: %v", c.id, err))
	}
	c.pass.Release()
	c.pass = nil
	c.target = nil
}

// Flush ends any open pass, submits the recorded command buffer and starts a
// fresh one. It does not wait for the GPU: submission is pipelined and the
// context is immediately ready to record the next frame. Command buffers
// execute in the order Flush is called.
func (c *GpuContext) Flush() error {
	c.EndRenderPass()
	cb, err := c.encoder.Finish()
	if err != nil {
		return fmt.Errorf("gpu context %s: finish command buffer: %w", c.id, err)
	}
	if err := c.dev.Submit(cb); err != nil {
		cb.Release()
		return fmt.Errorf("gpu context %s: submit: %w", c.id, err)
	}
	cb.Release()
	c.encoder.Release()
	enc, err := c.dev.CreateCommandEncoder()
	if err != nil {
		return fmt.Errorf("gpu context %s: allocate next command encoder: %w", c.id, err)
	}
	c.encoder = enc
	return nil
}

// Release drops the context's recording state. The device itself is owned by
// the caller and stays alive.
func (c *GpuContext) Release() {
	c.EndRenderPass()
	if c.encoder != nil {
		c.encoder.Release()
		c.encoder = nil
	}
}
