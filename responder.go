package ember

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ResponderManager anchors the input/responder collaborator. Event routing
// lives with the windowing layer; the manager holds the director it needs to
// resolve coordinate spaces for hit testing.
type ResponderManager struct {
	director *Director
}

func NewResponderManager(d *Director) *ResponderManager {
	if d == nil {
		panic("responder manager: nil director")
	}
	return &ResponderManager{director: d}
}

func (r *ResponderManager) Director() *Director { return r.director }

// LocationInScene converts a pointer position in window pixels into the
// running scene's coordinate space.
func (r *ResponderManager) LocationInScene(x, y float32) mgl32.Vec2 {
	return r.director.ToDeviceSpace(mgl32.Vec2{x, y})
}
