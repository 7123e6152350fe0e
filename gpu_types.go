package ember

// LoadAction controls how a render pass treats the color attachment's
// previous contents when the pass begins.
type LoadAction int

const (
	// LoadActionClear initializes the color attachment to the clear color.
	LoadActionClear LoadAction = iota
	// LoadActionPreserve keeps whatever the attachment already holds.
	LoadActionPreserve
)

// BufferKind selects the GPU usage of a DeviceBuffer.
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
	BufferKindUniform
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	case BufferKindUniform:
		return "uniform"
	}
	return "unknown"
}

// Color is a normalized RGBA color as render passes consume it.
type Color struct {
	R float64 `toml:"r"`
	G float64 `toml:"g"`
	B float64 `toml:"b"`
	A float64 `toml:"a"`
}

var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorSlateBlue   = Color{0.1, 0.2, 0.3, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

// Device is the capability surface one GPU backend exposes. Everything the
// engine core does with the GPU goes through these five interfaces, so a
// backend is swappable: the shipping implementations are the wgpu device and
// the headless in-memory device.
type Device interface {
	// CreateBuffer allocates size bytes of CPU-writable, GPU-readable storage.
	CreateBuffer(label string, size uint64, kind BufferKind) (DeviceBuffer, error)
	// CreateCommandEncoder starts recording a fresh command buffer.
	CreateCommandEncoder() (CommandEncoder, error)
	// Submit queues the command buffer for execution and returns without
	// waiting for the GPU. Buffers execute in submission order.
	Submit(cb CommandBuffer) error
	Release()
}

// DeviceBuffer is a raw GPU-side allocation. Writes are queued; they land
// before any subsequently submitted command buffer reads the region.
type DeviceBuffer interface {
	Write(offset uint64, data []byte) error
	Size() uint64
	Release()
}

// CommandEncoder records GPU work for one command buffer.
type CommandEncoder interface {
	BeginRenderPass(view TextureView, load LoadAction, clear Color) (RenderPassEncoder, error)
	Finish() (CommandBuffer, error)
	Release()
}

// RenderPassEncoder is an open color pass. Depth/stencil attachments are an
// extension point of the backend, not part of this contract.
type RenderPassEncoder interface {
	End() error
	Release()
}

type CommandBuffer interface {
	Release()
}

// TextureView is a renderable image handle. Views acquired from a
// presentation surface are valid for a single frame.
type TextureView interface {
	Release()
}
