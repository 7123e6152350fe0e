package ember

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// DirectorState is the lifecycle state of a Director.
type DirectorState int

const (
	// DirectorConstructed: created, no scene presented yet.
	DirectorConstructed DirectorState = iota
	// DirectorRunning: ticking with a running or staged scene.
	DirectorRunning
	// DirectorPaused: ticking but not updating; reversible.
	DirectorPaused
	// DirectorEnded: run loop stopped, scene state released.
	DirectorEnded
)

func (s DirectorState) String() string {
	switch s {
	case DirectorConstructed:
		return "constructed"
	case DirectorRunning:
		return "running"
	case DirectorPaused:
		return "paused"
	case DirectorEnded:
		return "ended"
	}
	return "unknown"
}

// Director owns the frame clock, the active-scene stack, pause state and the
// UI/device coordinate transforms, and drives one render pass per tick
// through its GpuContext and FrameTarget.
//
// One Director drives one presentation view. Nested rendering contexts (a
// preview director rendering offscreen mid-frame of the live one) are
// coordinated through a DirectorStack, not ambient globals.
type Director struct {
	id  string
	log Logger
	cfg Config

	ctx     *GpuContext
	surface PresentationSurface
	target  *FrameTarget
	buffers *BufferBindingSet

	state        DirectorState
	runningScene Scene
	// sceneStack owns every live scene, runningScene is always its top.
	sceneStack []Scene
	// nextScene stages the scene swapped in at the top of the next tick. It
	// is a non-owning reference into sceneStack.
	nextScene          Scene
	sendCleanupToScene bool

	pausedFlag        bool
	frameSkipInterval time.Duration
	savedFrameSkip    time.Duration
	nextDeltaTimeZero bool
	lastUpdate        time.Time
	dt                float64

	frames      int
	accumDt     float64
	frameRate   float64
	totalFrames uint64

	purgers []Purger

	// now is the frame clock source, swappable in tests.
	now func() time.Time
}

// NewDirector binds a director to a presentation surface. The frame target
// and the per-frame buffer binding set are allocated here; construction
// failure means the rendering subsystem cannot start.
func NewDirector(ctx *GpuContext, surface PresentationSurface, cfg Config, log Logger) (*Director, error) {
	if ctx == nil {
		return nil, fmt.Errorf("director: nil gpu context")
	}
	cfg = cfg.normalized()
	log = orNopLogger(log)

	buffers, err := NewBufferBindingSet(ctx, cfg.VertexCapacity, cfg.UniformCapacity)
	if err != nil {
		return nil, fmt.Errorf("director: allocate binding set: %w", err)
	}

	d := &Director{
		id:                uuid.NewString()[:8],
		log:               log,
		cfg:               cfg,
		ctx:               ctx,
		surface:           surface,
		buffers:           buffers,
		frameSkipInterval: cfg.frameInterval(),
		now:               time.Now,
	}
	if surface != nil {
		d.target = NewPresentationTarget("screen")
	}
	log.Infof("director %s constructed", d.id)
	return d, nil
}

func (d *Director) State() DirectorState {
	if d.state == DirectorRunning && d.pausedFlag {
		return DirectorPaused
	}
	return d.state
}

// Context returns the director's GPU context.
func (d *Director) Context() *GpuContext { return d.ctx }

// Buffers returns the per-frame binding set scene traversal writes into.
func (d *Director) Buffers() *BufferBindingSet { return d.buffers }

// Target returns the director's frame target.
func (d *Director) Target() *FrameTarget { return d.target }

// SetFrameTarget points the director at an offscreen destination. Used by
// preview directors that render without a presentation surface.
func (d *Director) SetFrameTarget(t *FrameTarget) {
	if t == nil {
		panic("director: nil frame target")
	}
	d.target = t
}

// RunningScene is the scene currently driven, nil before the first tick
// after PresentScene and after End.
func (d *Director) RunningScene() Scene { return d.runningScene }

// FrameRate is the smoothed frames-per-second estimate.
func (d *Director) FrameRate() float64 { return d.frameRate }

// TotalFrames counts every tick since construction.
func (d *Director) TotalFrames() uint64 { return d.totalFrames }

// FrameSkipInterval is the minimum delay the run loop honors between ticks.
func (d *Director) FrameSkipInterval() time.Duration { return d.frameSkipInterval }

// SetFrameSkipInterval adjusts run-loop pacing. While paused the new value
// takes effect on resume.
func (d *Director) SetFrameSkipInterval(iv time.Duration) {
	if d.pausedFlag {
		d.savedFrameSkip = iv
		return
	}
	d.frameSkipInterval = iv
}

// SetNextDeltaTimeZero forces dt = 0 on the next tick, e.g. after a long
// stall that should not be charged to the scene.
func (d *Director) SetNextDeltaTimeZero() { d.nextDeltaTimeZero = true }

// RegisterCache adds a collaborator cache to the set drained by
// PurgeCachedData and End.
func (d *Director) RegisterCache(p Purger) {
	if p == nil {
		return
	}
	d.purgers = append(d.purgers, p)
}

// PurgeCachedData asks every registered cache to drop unused entries.
func (d *Director) PurgeCachedData() {
	for _, p := range d.purgers {
		p.PurgeUnused()
	}
}

// PresentScene stages scene as the running scene. The swap happens at the
// top of the next tick, never mid-tick, so the current scene finishes its
// frame undisturbed. With no scene running this starts the director;
// otherwise it replaces the top of the scene stack, cleaning the old scene
// up at swap time.
func (d *Director) PresentScene(scene Scene) {
	if scene == nil {
		panic("director: present nil scene")
	}
	if d.runningScene == nil && d.nextScene == nil {
		d.sceneStack = append(d.sceneStack, scene)
		d.sendCleanupToScene = false
	} else {
		d.sceneStack[len(d.sceneStack)-1] = scene
		d.sendCleanupToScene = true
	}
	d.nextScene = scene
	if d.state == DirectorConstructed || d.state == DirectorEnded {
		d.state = DirectorRunning
		d.lastUpdate = d.now()
		d.nextDeltaTimeZero = true
	}
}

// PushScene suspends the running scene on the stack and stages scene on
// top. The suspended scene gets no Cleanup, it resumes on PopScene.
func (d *Director) PushScene(scene Scene) {
	if scene == nil {
		panic("director: push nil scene")
	}
	if d.state != DirectorRunning {
		panic(fmt.Sprintf("director %s: push scene while %s", d.id, d.State()))
	}
	d.sendCleanupToScene = false
	d.sceneStack = append(d.sceneStack, scene)
	d.nextScene = scene
}

// PopScene stages the previously suspended scene. The departing scene is
// cleaned up at swap time. Popping the last scene ends the director.
func (d *Director) PopScene() {
	if d.runningScene == nil {
		panic(fmt.Sprintf("director %s: pop scene with no running scene", d.id))
	}
	d.sceneStack = d.sceneStack[:len(d.sceneStack)-1]
	if len(d.sceneStack) == 0 {
		d.End()
		return
	}
	d.sendCleanupToScene = true
	d.nextScene = d.sceneStack[len(d.sceneStack)-1]
}

// PopToRootScene pops every suspended scene above the first one.
func (d *Director) PopToRootScene() {
	if d.runningScene == nil {
		panic(fmt.Sprintf("director %s: pop to root with no running scene", d.id))
	}
	if len(d.sceneStack) <= 1 {
		return
	}
	for _, s := range d.sceneStack[1 : len(d.sceneStack)-1] {
		// Scenes between root and top never became the running scene's
		// predecessor, release them directly.
		s.Cleanup()
	}
	d.sceneStack = d.sceneStack[:1]
	d.sendCleanupToScene = true
	d.nextScene = d.sceneStack[0]
}

// Pause throttles the run loop and stops scene updates. Scheduled work owned
// by the scene graph is expected to honor the paused state too. A no-op if
// already paused.
func (d *Director) Pause() {
	if d.pausedFlag || d.state != DirectorRunning {
		return
	}
	d.savedFrameSkip = d.frameSkipInterval
	d.frameSkipInterval = d.cfg.pausedFrameInterval()
	d.pausedFlag = true
	d.log.Debugf("director %s paused", d.id)
}

// Resume restores the pre-pause frame pacing. The paused wall-clock span is
// not charged to the scene: the next tick sees dt = 0. A no-op if not
// paused.
func (d *Director) Resume() {
	if !d.pausedFlag {
		return
	}
	d.frameSkipInterval = d.savedFrameSkip
	d.savedFrameSkip = 0
	d.pausedFlag = false
	d.lastUpdate = d.now()
	d.nextDeltaTimeZero = true
	d.log.Debugf("director %s resumed", d.id)
}

// End releases the director's scene state: exit notifications and cleanup to
// the running scene, the stack drained, caches purged. Terminal for the run
// loop; the director object survives so a fresh scene can be presented
// later.
func (d *Director) End() {
	if d.state == DirectorEnded {
		return
	}
	if d.runningScene != nil {
		d.runningScene.OnExitTransitionDidStart()
		d.runningScene.OnExit()
		d.runningScene.Cleanup()
	}
	for _, s := range d.sceneStack {
		if s != d.runningScene && s != nil {
			s.Cleanup()
		}
	}
	d.runningScene = nil
	d.nextScene = nil
	d.sceneStack = nil
	d.pausedFlag = false
	d.savedFrameSkip = 0
	for _, p := range d.purgers {
		p.PurgeAll()
	}
	d.state = DirectorEnded
	d.log.Infof("director %s ended after %d frames", d.id, d.totalFrames)
}

// Tick runs one frame: clock, staged scene swap, scene update, one render
// pass, stats. The run loop calls it until the director ends.
func (d *Director) Tick() error {
	switch d.state {
	case DirectorConstructed:
		panic(fmt.Sprintf("director %s: tick with no scene presented", d.id))
	case DirectorEnded:
		panic(fmt.Sprintf("director %s: tick after end", d.id))
	}

	now := d.now()
	if d.nextDeltaTimeZero {
		d.dt = 0
		d.nextDeltaTimeZero = false
	} else {
		d.dt = now.Sub(d.lastUpdate).Seconds()
	}
	d.lastUpdate = now

	if d.nextScene != nil {
		d.setNextScene()
	}

	if d.runningScene != nil && !d.pausedFlag {
		d.runningScene.Update(d.dt)
		if d.state == DirectorEnded {
			// The scene ended the director mid-update; nothing left to draw.
			return nil
		}
	}

	if err := d.drawScene(); err != nil {
		return err
	}

	d.totalFrames++
	d.frames++
	d.accumDt += d.dt
	if d.accumDt > 0.1 {
		d.frameRate = float64(d.frames) / d.accumDt
		d.frames = 0
		d.accumDt = 0
	}
	return nil
}

func (d *Director) setNextScene() {
	old := d.runningScene
	next := d.nextScene
	d.nextScene = nil

	if old != nil {
		old.OnExitTransitionDidStart()
		old.OnExit()
		if d.sendCleanupToScene {
			old.Cleanup()
		}
	}
	d.runningScene = next
	d.runningScene.OnEnter()
}

// drawScene issues the frame's render pass: prepare buffers, sync and bind
// the target, let the scene emit draw data, commit, flush, present.
func (d *Director) drawScene() error {
	if d.target == nil {
		panic(fmt.Sprintf("director %s: drawing with no frame target", d.id))
	}
	d.buffers.Prepare()
	if d.surface != nil {
		if err := d.target.SyncWithSurface(d.surface); err != nil {
			return err
		}
	}
	if err := d.target.Bind(d.ctx, LoadActionClear, d.cfg.ClearColor); err != nil {
		return err
	}
	if drawer, ok := d.runningScene.(Drawer); ok {
		drawer.Draw(d.buffers)
	}
	if err := d.buffers.Commit(); err != nil {
		return err
	}
	d.ctx.EndRenderPass()
	if err := d.ctx.Flush(); err != nil {
		return err
	}
	if d.surface != nil {
		d.surface.Present()
		d.target.invalidate()
	}
	return nil
}

func (d *Director) viewSize() (float32, float32) {
	if d.surface != nil {
		w, h := d.surface.Size()
		return float32(w), float32(h)
	}
	if d.target != nil {
		w, h := d.target.PixelSize()
		s := d.target.ContentScale()
		return float32(w) / s, float32(h) / s
	}
	panic(fmt.Sprintf("director %s: no surface or target to size the view", d.id))
}

// ToDeviceSpace maps a UI point in pixels through the inverse of the running
// scene's projection into normalized device space, flipping Y. Panics with
// no running scene.
func (d *Director) ToDeviceSpace(uiPoint mgl32.Vec2) mgl32.Vec2 {
	if d.runningScene == nil {
		panic(fmt.Sprintf("director %s: coordinate conversion with no running scene", d.id))
	}
	w, h := d.viewSize()
	inv := d.runningScene.Projection().Inv()
	clip := mgl32.Vec4{
		2*uiPoint.X()/w - 1,
		1 - 2*uiPoint.Y()/h,
		0, 1,
	}
	out := inv.Mul4x1(clip)
	return mgl32.Vec2{out.X(), out.Y()}
}

// ToUISpace is the forward transform: a point in the scene's projected space
// back to [0,size] pixel coordinates.
func (d *Director) ToUISpace(devicePoint mgl32.Vec2) mgl32.Vec2 {
	if d.runningScene == nil {
		panic(fmt.Sprintf("director %s: coordinate conversion with no running scene", d.id))
	}
	w, h := d.viewSize()
	clip := d.runningScene.Projection().Mul4x1(mgl32.Vec4{devicePoint.X(), devicePoint.Y(), 0, 1})
	return mgl32.Vec2{
		(clip.X() + 1) / 2 * w,
		(1 - clip.Y()) / 2 * h,
	}
}

// Release frees the director's GPU-side state. Callers End first.
func (d *Director) Release() {
	d.buffers.Release()
	if d.target != nil {
		d.target.invalidate()
	}
}

// DirectorStack coordinates which Director is current across nested
// rendering contexts, e.g. a thumbnail director rendering mid-frame of the
// live one. Push installs a director and saves the prior current; Pop
// restores exactly the director current before the matching Push. Strict
// stack discipline: a Pop without a matching Push is a programmer error.
type DirectorStack struct {
	current *Director
	saved   []*Director
}

func NewDirectorStack() *DirectorStack { return &DirectorStack{} }

// Current is the installed director, nil when none has been pushed.
func (s *DirectorStack) Current() *Director { return s.current }

// Push saves the current director and installs d.
func (s *DirectorStack) Push(d *Director) {
	if d == nil {
		panic("director stack: push nil director")
	}
	s.saved = append(s.saved, s.current)
	s.current = d
}

// Pop restores and returns the director that was current before the
// matching Push.
func (s *DirectorStack) Pop() *Director {
	if len(s.saved) == 0 {
		panic("director stack: pop without matching push")
	}
	s.current = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return s.current
}

// Depth reports how many pushes are outstanding.
func (s *DirectorStack) Depth() int { return len(s.saved) }
