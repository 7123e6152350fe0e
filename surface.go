package ember

// PresentationSurface is the windowing layer's contract with the renderer.
// Drawables acquired from it are valid for exactly one frame: bind, flush,
// present, then acquire again.
type PresentationSurface interface {
	// AcquireTexture fetches the surface's current drawable image.
	AcquireTexture() (TextureView, error)
	// Present hands the most recently acquired drawable to the display.
	Present()
	// Size is the surface size in UI points.
	Size() (int, int)
	// PixelSize is the surface size in device pixels.
	PixelSize() (int, int)
	// ContentScale is PixelSize / Size.
	ContentScale() float32
}
