package sim

import "math"

// Track is a line drawn on the floor.
type Track interface {
	// Distance returns the distance from p to the center of the line.
	Distance(p Pos2D) float64
}

// Circle is a circular track.
type Circle struct {
	Center Pos2D
	Radius float64
}

// Distance implements Track.
func (c Circle) Distance(p Pos2D) float64 {
	return math.Abs(p.Dist(c.Center) - c.Radius)
}

// Straight is an endless straight track through Origin along Direction.
type Straight struct {
	Origin    Pos2D
	Direction Angle
}

// Distance implements Track.
func (s Straight) Distance(p Pos2D) float64 {
	dx, dy := p.X-s.Origin.X, p.Y-s.Origin.Y
	return math.Abs(dy*s.Direction.Cos() - dx*s.Direction.Sin())
}

// Reflectance models how much of the line a sensor sees.
type Reflectance struct {
	// HalfWidth is half of the line width in mm.
	HalfWidth float64
	// Falloff is the distance in mm beyond the line edge where the
	// reading drops to zero.
	Falloff float64
}

// DefaultReflectance is an 18 mm tape.
var DefaultReflectance = Reflectance{HalfWidth: 9, Falloff: 10}

// Reading converts the distance to the line center into a calibrated
// reading in 0..1000.
func (r Reflectance) Reading(dist float64) int {
	if dist <= r.HalfWidth {
		return 1000
	}
	v := 1 - (dist-r.HalfWidth)/r.Falloff
	if v <= 0 {
		return 0
	}
	return int(math.Round(v * 1000))
}
