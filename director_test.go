package ember

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingScene struct {
	BaseScene
	name            string
	updates         []float64
	enters          int
	exits           int
	exitTransitions int
	cleanups        int
	onUpdate        func(dt float64)
}

func (s *recordingScene) OnEnter() { s.enters++ }

func (s *recordingScene) Update(dt float64) {
	s.updates = append(s.updates, dt)
	if s.onUpdate != nil {
		s.onUpdate(dt)
	}
}

func (s *recordingScene) OnExitTransitionDidStart() { s.exitTransitions++ }
func (s *recordingScene) OnExit()                   { s.exits++ }
func (s *recordingScene) Cleanup()                  { s.cleanups++ }

type recordingPurger struct {
	unused int
	all    int
}

func (p *recordingPurger) PurgeUnused() { p.unused++ }
func (p *recordingPurger) PurgeAll()    { p.all++ }

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDirector(t *testing.T) (*Director, *HeadlessDevice, *HeadlessSurface, *fakeClock) {
	t.Helper()
	dev := NewHeadlessDevice()
	ctx, err := NewGpuContext(dev, nil)
	require.NoError(t, err)
	surface := NewHeadlessSurface(640, 480)
	d, err := NewDirector(ctx, surface, DefaultConfig(), nil)
	require.NoError(t, err)
	clock := newFakeClock()
	d.now = clock.now
	return d, dev, surface, clock
}

func TestDirector_PresentSceneSwapsAtNextTick(t *testing.T) {
	d, dev, surface, _ := newTestDirector(t)
	scene := &recordingScene{name: "first"}

	assert.Equal(t, DirectorConstructed, d.State())
	d.PresentScene(scene)
	assert.Equal(t, DirectorRunning, d.State())

	// The swap is staged, never applied mid-call.
	assert.Nil(t, d.RunningScene())
	assert.Zero(t, scene.enters)

	require.NoError(t, d.Tick())
	assert.Same(t, scene, d.RunningScene())
	assert.Equal(t, 1, scene.enters)
	require.Len(t, scene.updates, 1)
	assert.Zero(t, scene.updates[0], "first tick after present runs with dt = 0")

	assert.Equal(t, 1, dev.Submitted())
	assert.Equal(t, 1, surface.Presented())
}

func TestDirector_ReplaceSceneCleansOldAtSwapTime(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	first := &recordingScene{name: "first"}
	second := &recordingScene{name: "second"}

	d.PresentScene(first)
	require.NoError(t, d.Tick())

	d.PresentScene(second)
	// The running scene finishes its frame undisturbed.
	assert.Zero(t, first.exits)
	require.NoError(t, d.Tick())

	assert.Equal(t, 1, first.exitTransitions)
	assert.Equal(t, 1, first.exits)
	assert.Equal(t, 1, first.cleanups, "replaced scene is cleaned up")
	assert.Same(t, second, d.RunningScene())
	assert.Equal(t, 1, second.enters)
}

func TestDirector_PushAndPopScene(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	base := &recordingScene{name: "base"}
	overlay := &recordingScene{name: "overlay"}

	d.PresentScene(base)
	require.NoError(t, d.Tick())

	d.PushScene(overlay)
	require.NoError(t, d.Tick())
	assert.Same(t, overlay, d.RunningScene())
	assert.Equal(t, 1, base.exits)
	assert.Zero(t, base.cleanups, "suspended scene keeps its resources")

	d.PopScene()
	require.NoError(t, d.Tick())
	assert.Same(t, base, d.RunningScene())
	assert.Equal(t, 2, base.enters)
	assert.Equal(t, 1, overlay.cleanups, "popped scene is cleaned up")

	// Popping the last scene ends the director.
	d.PopScene()
	assert.Equal(t, DirectorEnded, d.State())
	assert.Equal(t, 1, base.cleanups)
}

func TestDirector_PauseResume(t *testing.T) {
	d, dev, _, clock := newTestDirector(t)
	scene := &recordingScene{}
	d.PresentScene(scene)
	require.NoError(t, d.Tick())

	d.SetFrameSkipInterval(5 * time.Millisecond)

	d.Pause()
	assert.Equal(t, DirectorPaused, d.State())
	assert.Equal(t, 250*time.Millisecond, d.FrameSkipInterval(), "pause throttles redraws")

	// Ticks keep drawing while paused, the scene is just not updated.
	before := len(scene.updates)
	clock.advance(time.Second)
	require.NoError(t, d.Tick())
	assert.Len(t, scene.updates, before)
	assert.Equal(t, 2, dev.Submitted())

	clock.advance(3 * time.Second)
	d.Resume()
	assert.Equal(t, DirectorRunning, d.State())
	assert.Equal(t, 5*time.Millisecond, d.FrameSkipInterval(), "resume restores the exact pre-pause interval")

	// The paused span is not charged to the scene.
	require.NoError(t, d.Tick())
	assert.Zero(t, scene.updates[len(scene.updates)-1])

	clock.advance(16 * time.Millisecond)
	require.NoError(t, d.Tick())
	assert.InDelta(t, 0.016, scene.updates[len(scene.updates)-1], 1e-9)
}

func TestDirector_PauseResumeAreIdempotent(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	d.PresentScene(&recordingScene{})
	require.NoError(t, d.Tick())

	d.SetFrameSkipInterval(7 * time.Millisecond)
	d.Resume() // not paused, no-op
	assert.Equal(t, 7*time.Millisecond, d.FrameSkipInterval())

	d.Pause()
	d.Pause() // already paused, no-op
	d.Resume()
	assert.Equal(t, 7*time.Millisecond, d.FrameSkipInterval())
}

func TestDirector_End(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	scene := &recordingScene{}
	purger := &recordingPurger{}
	d.RegisterCache(purger)
	d.PresentScene(scene)
	require.NoError(t, d.Tick())

	d.End()
	assert.Equal(t, DirectorEnded, d.State())
	assert.Nil(t, d.RunningScene())
	assert.Empty(t, d.sceneStack)
	assert.Equal(t, 1, scene.exitTransitions)
	assert.Equal(t, 1, scene.exits)
	assert.Equal(t, 1, scene.cleanups)
	assert.Equal(t, 1, purger.all, "end purges all caches")

	// Safe no-ops afterward.
	d.End()
	d.Pause()
	d.Resume()
	assert.Equal(t, DirectorEnded, d.State())

	// A fresh scene can be presented after end.
	next := &recordingScene{}
	d.PresentScene(next)
	assert.Equal(t, DirectorRunning, d.State())
	require.NoError(t, d.Tick())
	assert.Same(t, next, d.RunningScene())
}

func TestDirector_TickBeforePresentPanics(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	require.Panics(t, func() { d.Tick() })
}

func TestDirector_EndedMidUpdateStopsDrawing(t *testing.T) {
	d, dev, _, _ := newTestDirector(t)
	scene := &recordingScene{}
	scene.onUpdate = func(float64) { d.End() }
	d.PresentScene(scene)

	require.NoError(t, d.Tick())
	assert.Equal(t, DirectorEnded, d.State())
	assert.Zero(t, dev.Submitted(), "nothing is drawn after the scene ends the director")
}

func TestDirector_PurgeCachedData(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	purger := &recordingPurger{}
	d.RegisterCache(purger)

	d.PurgeCachedData()
	assert.Equal(t, 1, purger.unused)
	assert.Zero(t, purger.all)
}

func TestDirector_FrameStats(t *testing.T) {
	d, _, _, clock := newTestDirector(t)
	d.PresentScene(&recordingScene{})

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Tick())
		clock.advance(20 * time.Millisecond)
	}
	assert.Equal(t, uint64(10), d.TotalFrames())
	assert.InDelta(t, 50, d.FrameRate(), 10, "smoothed rate near 50fps for 20ms frames")
}

func TestDirector_CoordinateRoundTrip(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	d.PresentScene(&recordingScene{}) // identity projection
	require.NoError(t, d.Tick())

	points := []mgl32.Vec2{{1, 1}, {320, 240}, {12.5, 400}, {639, 479}}
	for _, p := range points {
		dev := d.ToDeviceSpace(p)
		back := d.ToUISpace(dev)
		assert.InDelta(t, p.X(), back.X(), 1e-3)
		assert.InDelta(t, p.Y(), back.Y(), 1e-3)
	}

	// Y flips per device convention: the UI origin is top-left, device
	// space is centered with +Y up.
	center := d.ToDeviceSpace(mgl32.Vec2{320, 240})
	assert.InDelta(t, 0, center.X(), 1e-6)
	assert.InDelta(t, 0, center.Y(), 1e-6)
	topLeft := d.ToDeviceSpace(mgl32.Vec2{0, 0})
	assert.InDelta(t, -1, topLeft.X(), 1e-6)
	assert.InDelta(t, 1, topLeft.Y(), 1e-6)
}

func TestDirector_CoordinateConversionRequiresScene(t *testing.T) {
	d, _, _, _ := newTestDirector(t)
	require.Panics(t, func() { d.ToDeviceSpace(mgl32.Vec2{0, 0}) })
	require.Panics(t, func() { d.ToUISpace(mgl32.Vec2{0, 0}) })
}

func TestDirectorStack_PushPopDiscipline(t *testing.T) {
	dev := NewHeadlessDevice()
	ctx, err := NewGpuContext(dev, nil)
	require.NoError(t, err)
	d1, err := NewDirector(ctx, NewHeadlessSurface(64, 64), DefaultConfig(), nil)
	require.NoError(t, err)
	d2, err := NewDirector(ctx, NewHeadlessSurface(64, 64), DefaultConfig(), nil)
	require.NoError(t, err)

	stack := NewDirectorStack()
	assert.Nil(t, stack.Current())

	stack.Push(d1)
	stack.Push(d2)
	assert.Same(t, d2, stack.Current())
	assert.Equal(t, 2, stack.Depth())

	assert.Same(t, d1, stack.Pop())
	assert.Same(t, d1, stack.Current())

	// The second pop restores whatever was current before d1: nothing.
	assert.Nil(t, stack.Pop())
	assert.Nil(t, stack.Current())

	require.Panics(t, func() { stack.Pop() }, "mismatched pop is a programmer error")
}

func TestDirector_SetNextDeltaTimeZero(t *testing.T) {
	d, _, _, clock := newTestDirector(t)
	scene := &recordingScene{}
	d.PresentScene(scene)
	require.NoError(t, d.Tick())

	clock.advance(100 * time.Millisecond)
	d.SetNextDeltaTimeZero()
	require.NoError(t, d.Tick())
	assert.Zero(t, scene.updates[len(scene.updates)-1])

	// The flag clears after one tick.
	clock.advance(10 * time.Millisecond)
	require.NoError(t, d.Tick())
	assert.InDelta(t, 0.010, scene.updates[len(scene.updates)-1], 1e-9)
}
