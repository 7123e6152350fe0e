package ember

import (
	"fmt"
)

// GraphicsBuffer is a growable region of CPU-writable, GPU-readable memory
// backing one frame's vertex, index or uniform data. Writes go into a CPU
// staging region between Prepare and Commit; Commit uploads the written
// prefix to the GPU allocation. Growth is monotonic, a buffer never shrinks.
type GraphicsBuffer struct {
	label    string
	kind     BufferKind
	dev      Device
	elemSize int
	capacity int
	count    int
	staging  []byte
	handle   DeviceBuffer
}

// NewGraphicsBuffer allocates capacity*elemSize bytes on the device plus a
// matching staging region. The returned buffer has count 0.
func NewGraphicsBuffer(dev Device, label string, kind BufferKind, capacity, elemSize int) (*GraphicsBuffer, error) {
	if capacity <= 0 || elemSize <= 0 {
		return nil, fmt.Errorf("graphics buffer %q: capacity %d and element size %d must be positive", label, capacity, elemSize)
	}
	handle, err := dev.CreateBuffer(label, uint64(capacity*elemSize), kind)
	if err != nil {
		return nil, fmt.Errorf("graphics buffer %q: %w", label, err)
	}
	return &GraphicsBuffer{
		label:    label,
		kind:     kind,
		dev:      dev,
		elemSize: elemSize,
		capacity: capacity,
		staging:  make([]byte, capacity*elemSize),
		handle:   handle,
	}, nil
}

func (b *GraphicsBuffer) Count() int       { return b.count }
func (b *GraphicsBuffer) Capacity() int    { return b.capacity }
func (b *GraphicsBuffer) ElementSize() int { return b.elemSize }
func (b *GraphicsBuffer) Kind() BufferKind { return b.kind }
func (b *GraphicsBuffer) Label() string    { return b.label }

// Handle exposes the current device allocation for draw binding.
func (b *GraphicsBuffer) Handle() DeviceBuffer { return b.handle }

// Prepare resets the logical count for a new frame. The allocation is
// reused, not recreated. Must be called before any writes in a frame.
func (b *GraphicsBuffer) Prepare() {
	b.count = 0
}

// Append copies one element into the buffer, growing it if full, and
// returns the element's index.
func (b *GraphicsBuffer) Append(elem []byte) (int, error) {
	if len(elem) != b.elemSize {
		panic(fmt.Sprintf("graphics buffer %q: appended %d bytes, element size is %d", b.label, len(elem), b.elemSize))
	}
	if err := b.EnsureCapacity(b.count + 1); err != nil {
		return 0, err
	}
	copy(b.staging[b.count*b.elemSize:], elem)
	b.count++
	return b.count - 1, nil
}

// Set overwrites element i, which must already have been written this frame.
func (b *GraphicsBuffer) Set(i int, elem []byte) {
	if i < 0 || i >= b.count {
		panic(fmt.Sprintf("graphics buffer %q: set index %d out of range [0,%d)", b.label, i, b.count))
	}
	if len(elem) != b.elemSize {
		panic(fmt.Sprintf("graphics buffer %q: set %d bytes, element size is %d", b.label, len(elem), b.elemSize))
	}
	copy(b.staging[i*b.elemSize:], elem)
}

// At returns the staged bytes of element i.
func (b *GraphicsBuffer) At(i int) []byte {
	if i < 0 || i >= b.count {
		panic(fmt.Sprintf("graphics buffer %q: index %d out of range [0,%d)", b.label, i, b.count))
	}
	off := i * b.elemSize
	return b.staging[off : off+b.elemSize]
}

// EnsureCapacity grows the buffer by doubling until it holds at least n
// elements. A no-op when capacity already suffices.
func (b *GraphicsBuffer) EnsureCapacity(n int) error {
	if n <= b.capacity {
		return nil
	}
	newCap := b.capacity
	for newCap < n {
		newCap *= 2
	}
	return b.Resize(newCap)
}

// Resize reallocates the device region at newCapacity elements, preserving
// the bytes of the first count elements. Shrinking below the current count
// breaks the buffer's invariant and panics; a newCapacity at or below the
// current capacity is absorbed as a no-op since buffers never shrink.
func (b *GraphicsBuffer) Resize(newCapacity int) error {
	if newCapacity < b.count {
		panic(fmt.Sprintf("graphics buffer %q: resize to %d below logical count %d", b.label, newCapacity, b.count))
	}
	if newCapacity <= b.capacity {
		return nil
	}
	handle, err := b.dev.CreateBuffer(b.label, uint64(newCapacity*b.elemSize), b.kind)
	if err != nil {
		return fmt.Errorf("graphics buffer %q: resize to %d: %w", b.label, newCapacity, err)
	}
	staging := make([]byte, newCapacity*b.elemSize)
	copy(staging, b.staging[:b.count*b.elemSize])

	old := b.handle
	b.handle = handle
	b.staging = staging
	b.capacity = newCapacity
	old.Release()
	return nil
}

// Commit uploads the frame's writes to the device allocation. It must follow
// all writes and precede the flush of the command buffer referencing this
// buffer. Required every frame even on unified-memory backends.
func (b *GraphicsBuffer) Commit() error {
	if b.count == 0 {
		return nil
	}
	if err := b.handle.Write(0, b.staging[:b.count*b.elemSize]); err != nil {
		return fmt.Errorf("graphics buffer %q: commit %d elements: %w", b.label, b.count, err)
	}
	return nil
}

// Release frees the device allocation. The buffer is unusable afterwards.
func (b *GraphicsBuffer) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}
