package physics

import (
	"rigidsync/internal/dynamics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ResolveGravity returns the gravity a body should receive and whether the
// world's own gravity must be kept from overwriting it.
//
// Without gravity the body gets zero and opts out. With gravity and no
// override it follows the world and stays subscribed to world changes. An
// override wins and opts out so later world changes leave it alone.
func ResolveGravity(useGravity bool, override, worldGravity rl.Vector3) (applied rl.Vector3, disableWorldGravity bool) {
	if !useGravity {
		return rl.Vector3Zero(), true
	}
	if override == rl.Vector3Zero() {
		return worldGravity, false
	}
	return override, true
}

// UpdateGravity pushes the resolved gravity into the body.
func (r *RigidBody) UpdateGravity() {
	if r.world == nil || r.body == nil {
		return
	}
	if r.deferThreaded() {
		r.pendingProps = true
		return
	}
	applied, disable := ResolveGravity(r.useGravity, r.gravityOverride, r.world.Gravity())

	flags := r.body.Flags()
	if disable {
		flags |= dynamics.DisableWorldGravity
	} else {
		flags &^= dynamics.DisableWorldGravity
	}
	r.body.SetFlags(flags)
	r.body.SetGravity(applied)
}
