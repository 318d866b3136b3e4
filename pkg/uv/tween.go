package uv

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/scene"
)

// springAxis tracks one repeat component and its spring velocity.
type springAxis struct {
	pos    float64
	vel    float64
	spring harmonica.Spring
}

func newSpringAxis(fps int, start float64) springAxis {
	return springAxis{
		pos: start,
		// Frequency 6.0 = quick, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (a *springAxis) update(target float64) {
	a.pos, a.vel = a.spring.Update(a.pos, a.vel, target)
}

// RepeatTween animates the texture repeat of a node and its direct
// children toward a target, one frame per Step.
type RepeatTween struct {
	Tolerance float64

	node   *scene.Node
	target math3d.Vec2
	u, v   springAxis
	done   bool
}

// DefaultFPS is the frame rate used when a tween is given none.
const DefaultFPS = 60

// NewRepeatTween starts from the node's current repeat. A non-positive fps
// falls back to DefaultFPS.
func NewRepeatTween(n *scene.Node, target math3d.Vec2, fps int) *RepeatTween {
	if fps <= 0 {
		fps = DefaultFPS
	}
	start := CurrentRepeat(n)
	return &RepeatTween{
		Tolerance: 1e-4,
		node:      n,
		target:    target,
		u:         newSpringAxis(fps, start.X),
		v:         newSpringAxis(fps, start.Y),
	}
}

// Repeat returns the current animated repeat.
func (t *RepeatTween) Repeat() math3d.Vec2 {
	return math3d.V2(t.u.pos, t.v.pos)
}

// Done reports whether the tween reached its target.
func (t *RepeatTween) Done() bool {
	return t.done
}

// Step advances one frame and applies the repeat. Once within Tolerance of
// the target, the exact target is applied and Step reports true.
func (t *RepeatTween) Step() bool {
	if t.done {
		return true
	}
	t.u.update(t.target.X)
	t.v.update(t.target.Y)
	if t.settled() {
		t.u.pos, t.v.pos = t.target.X, t.target.Y
		t.u.vel, t.v.vel = 0, 0
		t.done = true
	}
	t.apply()
	return t.done
}

// Settle steps until done or maxFrames have run, returning the number of
// frames taken.
func (t *RepeatTween) Settle(maxFrames int) int {
	frames := 0
	for !t.done && frames < maxFrames {
		t.Step()
		frames++
	}
	return frames
}

func (t *RepeatTween) settled() bool {
	return math.Abs(t.u.pos-t.target.X) < t.Tolerance &&
		math.Abs(t.v.pos-t.target.Y) < t.Tolerance &&
		math.Abs(t.u.vel) < t.Tolerance &&
		math.Abs(t.v.vel) < t.Tolerance
}

func (t *RepeatTween) apply() {
	if t.node == nil {
		return
	}
	r := t.Repeat()
	if !t.node.Material.IsEmpty() {
		SetTextureRepeat(t.node, r.X, r.Y)
	}
	for _, c := range t.node.Children {
		if !c.Material.IsEmpty() {
			SetTextureRepeat(c, r.X, r.Y)
		}
	}
}
