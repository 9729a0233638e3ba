package scene

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	CameraDefaultFocalLength    float32 = 2
	CameraDefaultTargetDistance float32 = 10

	DefaultNearClippingPlane float32 = 0.001
	DefaultFarClippingPlane  float32 = 1000
)

// Camera looks down its local +Z with +Y up. Orientation holds the world
// right, up and forward axes as columns.
type Camera struct {
	Orientation    mgl32.Mat3
	Position       mgl32.Vec3
	FocalLength    float32
	ZoomAmount     float32
	TargetDistance float32
	DollyAmount    float32
	Yaw            float32
	Pitch          float32
}

func NewCamera() Camera {
	return Camera{
		Orientation:    mgl32.Ident3(),
		FocalLength:    CameraDefaultFocalLength,
		ZoomAmount:     CameraDefaultFocalLength,
		TargetDistance: CameraDefaultTargetDistance,
	}
}

func (c *Camera) Right() mgl32.Vec3   { return c.Orientation.Col(0) }
func (c *Camera) Up() mgl32.Vec3      { return c.Orientation.Col(1) }
func (c *Camera) Forward() mgl32.Vec3 { return c.Orientation.Col(2) }

// InternPos maps a world point into camera space.
func (c *Camera) InternPos(p mgl32.Vec3) mgl32.Vec3 {
	return c.Orientation.Transpose().Mul3x1(p.Sub(c.Position))
}

func (c *Camera) ExternPos(p mgl32.Vec3) mgl32.Vec3 {
	return c.Orientation.Mul3x1(p).Add(c.Position)
}

func (c *Camera) InternDir(d mgl32.Vec3) mgl32.Vec3 { return c.Orientation.Transpose().Mul3x1(d) }
func (c *Camera) ExternDir(d mgl32.Vec3) mgl32.Vec3 { return c.Orientation.Mul3x1(d) }

// SetRotation orients the camera by yaw around world Y, then pitch around
// its own right axis. Positive pitch looks up.
func (c *Camera) SetRotation(yaw, pitch float32) {
	c.Yaw, c.Pitch = yaw, pitch
	c.Orientation = mgl32.Rotate3DY(yaw).Mul3(mgl32.Rotate3DX(-pitch))
}

func (c *Camera) Rotate(yaw, pitch float32) {
	c.SetRotation(c.Yaw+yaw, c.Pitch+pitch)
}

// LookAt turns the camera towards target and makes it the orbit target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	dist := d.Len()
	if dist == 0 {
		return
	}
	c.SetRotation(math32.Atan2(d[0], d[2]), math32.Asin(d[1]/dist))
	c.TargetDistance = dist
}

func (c *Camera) Zoom(amount float32) {
	n := c.ZoomAmount + amount
	switch {
	case n > 1:
		c.FocalLength = n
	case n < -1:
		c.FocalLength = -1 / n
	default:
		c.FocalLength = 1
	}
	c.ZoomAmount = n
}

// Dolly moves towards the orbit target, keeping the target fixed.
func (c *Camera) Dolly(amount float32) {
	target := c.Position.Add(c.Forward().Mul(c.TargetDistance))
	c.DollyAmount += amount
	c.TargetDistance = math32.Pow(2, c.DollyAmount/-200) * CameraDefaultTargetDistance
	c.Position = target.Sub(c.Forward().Mul(c.TargetDistance))
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(azimuth, altitude float32) {
	c.Position = c.Position.Add(c.Forward().Mul(c.TargetDistance))
	c.Rotate(azimuth, altitude)
	c.Position = c.Position.Sub(c.Forward().Mul(c.TargetDistance))
}

func (c *Camera) Pan(right, up float32) {
	c.Position = c.Position.Add(c.Up().Mul(up)).Add(c.Right().Mul(right))
}

// ViewProjection is the GL style view-projection matrix of the camera.
func (c *Camera) ViewProjection(d *Dimensions, near, far float32) mgl32.Mat4 {
	fovy := 2 * math32.Atan(1/c.FocalLength)
	proj := mgl32.Perspective(fovy, d.WidthOverHeight, near, far)
	view := mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), c.Up())
	return proj.Mul4(view)
}

// Frustum returns the six inward facing planes of the camera's view volume.
func (c *Camera) Frustum(d *Dimensions, near, far float32) [6]mgl32.Vec4 {
	return ExtractFrustum(c.ViewProjection(d, near, far))
}

type Dimensions struct {
	Width           int
	Height          int
	HalfWidth       float32
	HalfHeight      float32
	WidthOverHeight float32
	HeightOverWidth float32
}

func NewDimensions(width, height int) Dimensions {
	var d Dimensions
	d.Update(width, height)
	return d
}

func (d *Dimensions) Update(width, height int) {
	d.Width, d.Height = width, height
	d.HalfWidth = float32(width) * 0.5
	d.HalfHeight = float32(height) * 0.5
	d.WidthOverHeight = float32(width) / float32(height)
	d.HeightOverWidth = float32(height) / float32(width)
}

// CameraRayProjection generates primary ray directions per pixel. Directions
// are not normalized: their length grows towards the screen edges.
type CameraRayProjection struct {
	InvertedRotation       mgl32.Mat3
	Start, Right, Down     mgl32.Vec3
	CameraPosition         mgl32.Vec3
	CStart                 mgl32.Vec2
	SquaredDistanceToPlane float32
	SampleSize             float32
}

func (p *CameraRayProjection) Reset(c *Camera, d *Dimensions, antialias bool) {
	p.SampleSize = 1
	if antialias {
		p.SampleSize = 0.5
	}
	dist := d.HalfHeight * c.FocalLength
	p.CStart = mgl32.Vec2{p.SampleSize*0.5 - d.HalfWidth, d.HalfHeight - p.SampleSize*0.5}

	p.InvertedRotation = c.Orientation.Transpose()
	p.CameraPosition = c.Position
	p.Down = c.Up().Mul(-p.SampleSize)
	p.Right = c.Right().Mul(p.SampleSize)
	p.Start = c.Right().Mul(p.CStart[0]).
		Add(c.Up().Mul(p.CStart[1])).
		Add(c.Forward().Mul(dist))
	p.SquaredDistanceToPlane = dist * dist
}

func (p *CameraRayProjection) RayDirectionAt(x, y int) mgl32.Vec3 {
	return p.Start.Add(p.Down.Mul(float32(y))).Add(p.Right.Mul(float32(x)))
}

// DepthAt is the camera space depth of a world position.
func (p *CameraRayProjection) DepthAt(pos mgl32.Vec3) float32 {
	return p.InvertedRotation.Mul3x1(pos.Sub(p.CameraPosition))[2]
}

// ExtractFrustum extracts the 6 planes of the frustum from the view-projection matrix.
// Returns planes in order: Left, Right, Bottom, Top, Near, Far.
// Plane is Ax + By + Cz + D = 0.
func ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	w := row(3)
	planes[0] = w.Add(row(0))
	planes[1] = w.Sub(row(0))
	planes[2] = w.Add(row(1))
	planes[3] = w.Sub(row(1))
	// Near plane (OpenGL-style -1..1)
	planes[4] = w.Add(row(2))
	planes[5] = w.Sub(row(2))

	// Normalize planes
	for i := 0; i < 6; i++ {
		length := math32.Sqrt(planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

// AABBInFrustum checks if an AABB is visible within the frustum defined by 6 planes.
// Planes are expected to be in Ax+By+Cz+D=0 form, with the normal pointing INSIDE.
func AABBInFrustum(aabb core.AABB, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		// The corner furthest along the normal is the last one to leave.
		var p mgl32.Vec3
		for i := 0; i < 3; i++ {
			if plane[i] > 0 {
				p[i] = aabb.Max[i]
			} else {
				p[i] = aabb.Min[i]
			}
		}
		if plane.Dot(p.Vec4(1)) < 0 {
			return false
		}
	}
	return true
}
