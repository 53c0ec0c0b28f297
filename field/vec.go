package field

import "math"

// Vec2 is a horizontal (XZ plane) vector. Y holds the Z component.
type Vec2 struct {
	X, Y float32
}

// Len returns the vector length.
func (v Vec2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Vec3 is a world-space vector with Y up.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the vector length.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// XZ drops the vertical component.
func (v Vec3) XZ() Vec2 { return Vec2{v.X, v.Z} }

// Rect is an axis-aligned world-space region on the XZ plane.
// Min is inclusive, Max exclusive.
type Rect struct {
	MinX, MinZ float32
	MaxX, MaxZ float32
}

// Contains reports whether (x, z) lies inside the rectangle.
func (r Rect) Contains(x, z float32) bool {
	return x >= r.MinX && x < r.MaxX && z >= r.MinZ && z < r.MaxZ
}

// Width returns the X extent.
func (r Rect) Width() float32 { return r.MaxX - r.MinX }

// Depth returns the Z extent.
func (r Rect) Depth() float32 { return r.MaxZ - r.MinZ }
