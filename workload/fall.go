package workload

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// Gravity is the gravitational acceleration in m/s².
	Gravity = 9.81

	// AirDensity is the density of air in kg/m³.
	AirDensity = 1.225

	// DefaultStep is the default integration step in seconds.
	DefaultStep = 0.001

	// DefaultMaxTime is the default bound on simulated time in seconds.
	DefaultMaxTime = 100.0

	// checkEvery is the number of integration steps between context checks.
	checkEvery = 1 << 14
)

// ErrInvalidObject is reported for objects that cannot be simulated.
var ErrInvalidObject = errors.New("invalid object")

// An Object is dropped from Height meters. Its mass is in kg, and Drag is
// its drag coefficient.
type Object struct {
	ID     int
	Height float64
	Mass   float64
	Drag   float64
}

// A Landing is the result of dropping an object. Capped is set if the
// simulation stopped at the time bound before the object reached the
// ground.
type Landing struct {
	ObjectID      int
	Height        float64
	FallTime      float64
	FinalVelocity float64
	Capped        bool
}

func (l Landing) String() string {
	return fmt.Sprintf("object %d: height=%.1fm fall time=%.2fs final velocity=%.2fm/s",
		l.ObjectID, l.Height, l.FallTime, l.FinalVelocity)
}

// EqualLanding returns an equivalence function for landings of the same
// object whose times and velocities are within the relative tolerance rel.
func EqualLanding(rel float64) func(a, b Landing) bool {
	return func(a, b Landing) bool {
		return a.ObjectID == b.ObjectID &&
			a.Capped == b.Capped &&
			scalar.EqualWithinAbsOrRel(a.FallTime, b.FallTime, rel, rel) &&
			scalar.EqualWithinAbsOrRel(a.FinalVelocity, b.FinalVelocity, rel, rel)
	}
}

/*
Fall integrates the free fall of an object with quadratic air drag, using
explicit Euler steps of Step seconds, until the object reaches the ground
or MaxTime seconds have been simulated.

The object is modelled as a sphere with the density of water. Zero values
for Step and MaxTime select DefaultStep and DefaultMaxTime.
*/
type Fall struct {
	Step    float64
	MaxTime float64
}

// Process implements parbench.Workload.
func (f Fall) Process(ctx context.Context, o Object) (Landing, error) {
	switch {
	case math.IsNaN(o.Height) || math.IsNaN(o.Mass) || math.IsNaN(o.Drag):
		return Landing{}, fmt.Errorf("object %d: %w: NaN parameter", o.ID, ErrInvalidObject)
	case o.Height < 0:
		return Landing{}, fmt.Errorf("object %d: %w: negative height %v", o.ID, ErrInvalidObject, o.Height)
	case o.Mass <= 0:
		return Landing{}, fmt.Errorf("object %d: %w: mass %v", o.ID, ErrInvalidObject, o.Mass)
	case o.Drag < 0:
		return Landing{}, fmt.Errorf("object %d: %w: negative drag %v", o.ID, ErrInvalidObject, o.Drag)
	}
	dt := f.Step
	if dt <= 0 {
		dt = DefaultStep
	}
	maxTime := f.MaxTime
	if maxTime <= 0 {
		maxTime = DefaultMaxTime
	}

	radius := math.Cbrt(o.Mass / (4.0 / 3.0 * math.Pi * 1000))
	area := math.Pi * radius * radius
	k := 0.5 * AirDensity * o.Drag * area

	var t, v float64
	y := o.Height
	capped := false
	for steps := 1; y > 0; steps++ {
		a := (o.Mass*Gravity - k*v*v) / o.Mass
		v += a * dt
		y -= v * dt
		t += dt
		if t > maxTime {
			capped = true
			break
		}
		if steps%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Landing{}, err
			}
		}
	}
	return Landing{
		ObjectID:      o.ID,
		Height:        o.Height,
		FallTime:      t,
		FinalVelocity: v,
		Capped:        capped,
	}, nil
}
