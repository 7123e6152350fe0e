package ember

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the engine's contract with application scenes. The Director calls
// these at fixed lifecycle points; scene-graph internals stay with the
// application.
type Scene interface {
	// OnEnter runs when the scene becomes the running scene.
	OnEnter()
	// Update advances the scene by dt seconds.
	Update(dt float64)
	// OnExitTransitionDidStart runs when the scene begins leaving.
	OnExitTransitionDidStart()
	// OnExit runs when the scene stops being the running scene.
	OnExit()
	// Cleanup releases scene resources. Sent when the scene is replaced for
	// good, not when it is suspended on the stack.
	Cleanup()
	// Projection is the scene's current projection matrix, used for
	// UI/device coordinate conversion.
	Projection() mgl32.Mat4
}

// Drawer is implemented by scenes that emit draw data. The Director hands
// the per-frame binding set to the running scene between Prepare and Commit.
type Drawer interface {
	Draw(buffers *BufferBindingSet)
}

// BaseScene is an embeddable Scene with safe defaults: no-op lifecycle
// callbacks and an identity projection.
type BaseScene struct{}

func (BaseScene) OnEnter()                  {}
func (BaseScene) Update(dt float64)         {}
func (BaseScene) OnExitTransitionDidStart() {}
func (BaseScene) OnExit()                   {}
func (BaseScene) Cleanup()                  {}
func (BaseScene) Projection() mgl32.Mat4    { return mgl32.Ident4() }
