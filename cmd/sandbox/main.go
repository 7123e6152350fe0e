package main

import (
	"encoding/binary"
	"log"
	"math"
	"os"

	"github.com/ember2d/ember"
	"github.com/go-gl/mathgl/mgl32"
)

// spinScene draws a single quad whose color pulses with time.
type spinScene struct {
	ember.BaseScene
	elapsed float64
}

func (s *spinScene) Update(dt float64) {
	s.elapsed += dt
}

func (s *spinScene) Projection() mgl32.Mat4 {
	return mgl32.Ortho2D(-1, 1, -1, 1)
}

func (s *spinScene) Draw(buffers *ember.BufferBindingSet) {
	pulse := float32(0.5 + 0.5*math.Sin(s.elapsed))
	quad := [][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	for _, p := range quad {
		v := make([]byte, ember.VertexStride)
		binary.LittleEndian.PutUint32(v[0:], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(v[4:], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(v[16:], math.Float32bits(pulse))
		if _, err := buffers.Vertex.Append(v); err != nil {
			panic(err)
		}
	}
	for _, i := range []uint16{0, 1, 2, 2, 3, 0} {
		idx := make([]byte, ember.IndexStride)
		binary.LittleEndian.PutUint16(idx, i)
		if _, err := buffers.Index.Append(idx); err != nil {
			panic(err)
		}
	}
}

func main() {
	cfg := ember.DefaultConfig()
	cfg.WindowTitle = "Ember Sandbox"
	if len(os.Args) > 1 {
		var err error
		cfg, err = ember.LoadConfig(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
	}

	app, err := ember.NewAppBuilder().WithConfig(cfg).Build()
	if err != nil {
		log.Fatal(err)
	}

	app.Director().PresentScene(&spinScene{})
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
