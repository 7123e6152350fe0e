package ember

// Strides of the engine's fixed vertex/index/uniform layouts: a sprite
// vertex is two float32 positions, two float32 texture coordinates and a
// padded RGBA8 color; indices are uint16; uniforms are 4x4 float32 matrices.
const (
	VertexStride  = 24
	IndexStride   = 2
	UniformStride = 64
)

// BufferBindingSet owns the three per-frame buffers scene traversal writes
// draw data into. The set guarantees they are allocated, owned and reset
// together; it has no behavior beyond that.
type BufferBindingSet struct {
	Vertex  *GraphicsBuffer
	Index   *GraphicsBuffer
	Uniform *GraphicsBuffer
}

// NewBufferBindingSet allocates the set against the given context's device:
// vertexCapacity vertex elements, 3/2 as many index elements, and
// uniformCapacity uniform elements. All three start prepared.
func NewBufferBindingSet(ctx *GpuContext, vertexCapacity, uniformCapacity int) (*BufferBindingSet, error) {
	dev := ctx.Device()
	vertex, err := NewGraphicsBuffer(dev, "frame vertices", BufferKindVertex, vertexCapacity, VertexStride)
	if err != nil {
		return nil, err
	}
	index, err := NewGraphicsBuffer(dev, "frame indices", BufferKindIndex, vertexCapacity*3/2, IndexStride)
	if err != nil {
		vertex.Release()
		return nil, err
	}
	uniform, err := NewGraphicsBuffer(dev, "frame uniforms", BufferKindUniform, uniformCapacity, UniformStride)
	if err != nil {
		vertex.Release()
		index.Release()
		return nil, err
	}
	s := &BufferBindingSet{Vertex: vertex, Index: index, Uniform: uniform}
	s.Prepare()
	return s, nil
}

// Prepare resets all three buffers for a new frame. Called once per tick
// before scene traversal writes.
func (s *BufferBindingSet) Prepare() {
	s.Vertex.Prepare()
	s.Index.Prepare()
	s.Uniform.Prepare()
}

// Commit finalizes the frame's writes in all three buffers.
func (s *BufferBindingSet) Commit() error {
	if err := s.Vertex.Commit(); err != nil {
		return err
	}
	if err := s.Index.Commit(); err != nil {
		return err
	}
	return s.Uniform.Commit()
}

func (s *BufferBindingSet) Release() {
	s.Vertex.Release()
	s.Index.Release()
	s.Uniform.Release()
}
