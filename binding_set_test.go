package ember

import (
	"testing"
)

func TestBufferBindingSet_Capacities(t *testing.T) {
	dev := NewHeadlessDevice()
	ctx, _ := NewGpuContext(dev, nil)

	set, err := NewBufferBindingSet(ctx, 1000, 64)
	if err != nil {
		t.Fatalf("Binding set creation failed: %v", err)
	}

	if set.Vertex.Capacity() != 1000 {
		t.Errorf("Expected vertex capacity 1000, got %v", set.Vertex.Capacity())
	}
	if set.Index.Capacity() != 1500 {
		t.Errorf("Expected index capacity 1500, got %v", set.Index.Capacity())
	}
	if set.Uniform.Capacity() != 64 {
		t.Errorf("Expected uniform capacity 64, got %v", set.Uniform.Capacity())
	}

	if set.Vertex.ElementSize() != VertexStride {
		t.Errorf("Expected vertex stride %v, got %v", VertexStride, set.Vertex.ElementSize())
	}
	if set.Index.ElementSize() != IndexStride {
		t.Errorf("Expected index stride %v, got %v", IndexStride, set.Index.ElementSize())
	}
	if set.Uniform.ElementSize() != UniformStride {
		t.Errorf("Expected uniform stride %v, got %v", UniformStride, set.Uniform.ElementSize())
	}

	if dev.LiveBuffers() != 3 {
		t.Errorf("Expected 3 device allocations, got %v", dev.LiveBuffers())
	}
}

func TestBufferBindingSet_PrepareResetsAll(t *testing.T) {
	dev := NewHeadlessDevice()
	ctx, _ := NewGpuContext(dev, nil)
	set, _ := NewBufferBindingSet(ctx, 16, 4)

	set.Vertex.Append(testElem(0, VertexStride))
	set.Index.Append(testElem(0, IndexStride))
	set.Uniform.Append(testElem(0, UniformStride))

	set.Prepare()
	if set.Vertex.Count() != 0 || set.Index.Count() != 0 || set.Uniform.Count() != 0 {
		t.Errorf("Expected all counts reset, got %v/%v/%v",
			set.Vertex.Count(), set.Index.Count(), set.Uniform.Count())
	}
	// Reset reuses the allocations.
	if dev.LiveBuffers() != 3 {
		t.Errorf("Expected the 3 allocations to survive prepare, got %v", dev.LiveBuffers())
	}
}

func TestBufferBindingSet_Release(t *testing.T) {
	dev := NewHeadlessDevice()
	ctx, _ := NewGpuContext(dev, nil)
	set, _ := NewBufferBindingSet(ctx, 16, 4)

	set.Release()
	if dev.LiveBuffers() != 0 {
		t.Errorf("Expected all allocations released, got %v live", dev.LiveBuffers())
	}
}
