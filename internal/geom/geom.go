// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package geom provides the angle and ray helpers shared by the beam tracer
// and the chain validator.
//
// Headings are degrees on the horizontal plane: 0° points along +Z and
// angles increase toward +X (clockwise when viewed from above). The Y axis
// is cosmetic and ignored by every planar helper.
package geom

import "math"

// Epsilon guards normalizations and near-coincident positions.
const Epsilon = 1e-6

// DefaultTolerance is the half-width of the cone used when matching headings.
const DefaultTolerance = 22.5

// Step is the rotation increment of a single click.
const Step = 45

// Vec3 is a point or direction in level space.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for building a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length is the full three-component length.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance is the full three-component distance between two points.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// PlanarLength is the length projected onto the horizontal plane.
func (v Vec3) PlanarLength() float64 {
	return math.Hypot(v.X, v.Z)
}

// PlanarDistance is the distance between two points on the horizontal plane.
func (v Vec3) PlanarDistance(o Vec3) float64 {
	return v.Sub(o).PlanarLength()
}

// PlanarDot is the dot product of the horizontal components.
func (v Vec3) PlanarDot(o Vec3) float64 {
	return v.X*o.X + v.Z*o.Z
}

// Planar drops the vertical component.
func (v Vec3) Planar() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Normalize returns the horizontal unit vector along v and false when v has no
// horizontal extent.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.PlanarLength()
	if l < Epsilon {
		return Vec3{}, false
	}
	return Vec3{X: v.X / l, Z: v.Z / l}, true
}

// NormalizeAngle reduces a to [0,360).
func NormalizeAngle(a float64) float64 {
	r := math.Mod(a, 360)
	if r < 0 {
		r += 360
	}
	// math.Mod(-0.0000001, 360) + 360 rounds to 360.
	if r >= 360 {
		r -= 360
	}
	return r
}

// AngularDistance is the circular distance between two headings, in [0,180].
func AngularDistance(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// AnglesMatch reports whether a and b are strictly closer than tolerance,
// wrapping through 0°.
func AnglesMatch(a, b, tolerance float64) bool {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	return d < tolerance || d > 360-tolerance
}

// AngleBetween is the heading from one point to another.
func AngleBetween(from, to Vec3) float64 {
	dx := to.X - from.X
	dz := to.Z - from.Z
	return NormalizeAngle(math.Atan2(dx, dz) * 180 / math.Pi)
}

// ClicksBetween is the minimum number of 45° clicks from heading a to heading
// b, rotating whichever way is shorter.
func ClicksBetween(a, b float64) int {
	diff := NormalizeAngle(b) - NormalizeAngle(a)
	if diff > 180 {
		diff -= 360
	}
	if diff < -180 {
		diff += 360
	}
	return int(math.Round(math.Abs(diff) / Step))
}

// Heading returns the horizontal unit vector for a heading in degrees.
func Heading(deg float64) Vec3 {
	rad := NormalizeAngle(deg) * math.Pi / 180
	return Vec3{X: math.Sin(rad), Z: math.Cos(rad)}
}

// HeadingOf converts a direction vector to a heading in degrees. It reports
// false for vectors with no horizontal extent.
func HeadingOf(dir Vec3) (float64, bool) {
	if dir.PlanarLength() < Epsilon {
		return 0, false
	}
	return AngleBetween(Vec3{}, dir), true
}

// RayPointDistance returns the forward distance along dir to the closest
// approach of point, when that approach is ahead of origin and within radius.
// dir is normalized internally; a degenerate dir never hits.
func RayPointDistance(origin, dir, point Vec3, radius float64) (float64, bool) {
	unit, ok := dir.Normalize()
	if !ok {
		return 0, false
	}
	rel := point.Sub(origin).Planar()
	t := rel.PlanarDot(unit)
	if t < 0 {
		return 0, false
	}
	perp := rel.Sub(unit.Scale(t)).PlanarLength()
	if perp > radius {
		return 0, false
	}
	return t, true
}

// SegmentCircleIntersect reports whether the segment from→to touches the
// circle of radius around center. Zero-length segments never intersect.
func SegmentCircleIntersect(from, to, center Vec3, radius float64) bool {
	dx := to.X - from.X
	dz := to.Z - from.Z
	fx := from.X - center.X
	fz := from.Z - center.Z

	a := dx*dx + dz*dz
	if a < Epsilon {
		return false
	}
	b := 2 * (fx*dx + fz*dz)
	c := fx*fx + fz*fz - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return false
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1)
}
