package ember

import (
	"fmt"
)

// FrameTarget wraps a render pass destination: either an offscreen texture
// the target owns, or the short-lived drawable of a presentation surface.
// Presentation-backed targets must be re-synced every frame, the previous
// drawable is invalid once presented.
type FrameTarget struct {
	label       string
	view        TextureView
	widthPx     int
	heightPx    int
	scale       float32
	presentable bool
	fresh       bool
}

// FrameTargetFromImage wraps an existing GPU image as an offscreen render
// destination. The target borrows the view; offscreen views stay valid
// across frames.
func FrameTargetFromImage(label string, view TextureView, widthPx, heightPx int, scale float32) *FrameTarget {
	if view == nil {
		panic("frame target: nil image view")
	}
	if scale <= 0 {
		scale = 1
	}
	return &FrameTarget{
		label:    label,
		view:     view,
		widthPx:  widthPx,
		heightPx: heightPx,
		scale:    scale,
	}
}

// NewPresentationTarget creates a target backed by a swappable surface. It
// holds no drawable until the first SyncWithSurface.
func NewPresentationTarget(label string) *FrameTarget {
	return &FrameTarget{label: label, presentable: true, scale: 1}
}

// PixelSize returns the destination size in pixels.
func (t *FrameTarget) PixelSize() (int, int) { return t.widthPx, t.heightPx }

// ContentScale is the pixel density of the destination.
func (t *FrameTarget) ContentScale() float32 { return t.scale }

// SyncWithSurface fetches the surface's current drawable. Mandatory before
// every frame's bind, not just after a resize.
func (t *FrameTarget) SyncWithSurface(s PresentationSurface) error {
	if !t.presentable {
		panic(fmt.Sprintf("frame target %q: sync on an offscreen target", t.label))
	}
	view, err := s.AcquireTexture()
	if err != nil {
		return fmt.Errorf("frame target %q: acquire drawable: %w", t.label, err)
	}
	if t.view != nil {
		t.view.Release()
	}
	t.view = view
	t.widthPx, t.heightPx = s.PixelSize()
	t.scale = s.ContentScale()
	t.fresh = true
	return nil
}

// Bind opens a render pass against this target through ctx.
func (t *FrameTarget) Bind(ctx *GpuContext, load LoadAction, clear Color) error {
	return ctx.BeginRenderPass(t, load, clear)
}

// currentView hands out the destination image for pass encoding. A
// presentation-backed target whose drawable was already presented, or was
// never synced, indicates a broken frame-lifecycle invariant.
func (t *FrameTarget) currentView() TextureView {
	if t.presentable && !t.fresh {
		panic(fmt.Sprintf("frame target %q: bound with a stale drawable, sync with the surface before every bind", t.label))
	}
	if t.view == nil {
		panic(fmt.Sprintf("frame target %q: bound with no destination image", t.label))
	}
	return t.view
}

// invalidate drops the drawable after presentation.
func (t *FrameTarget) invalidate() {
	if !t.presentable {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	t.fresh = false
}
