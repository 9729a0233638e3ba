package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightRadiusIntensityFactor converts between a light's intensity and the
// radius it is drawn and scaled with in the editor.
const LightRadiusIntensityFactor = 32

type LightKind uint8

const (
	LightDirectional LightKind = iota
	LightPoint
	LightSpot
)

func (k LightKind) String() string {
	switch k {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "unknown"
}

type Attenuation struct {
	Constant float32
	Linear   float32
	Exponent float32
}

type ShadowBounds struct {
	NearDistance float32
	FarDistance  float32
	Width        float32
	Height       float32
}

type BaseLight struct {
	Color        mgl32.Vec3
	Intensity    float32
	Position     mgl32.Vec3
	Attenuation  Attenuation
	ShadowBounds ShadowBounds
}

// Light is a directional, point or spot light. Orientation is used by
// directional and spot lights, Edge only by spot lights.
type Light struct {
	Kind LightKind
	BaseLight
	Orientation mgl32.Quat
	Edge        float32
}

func defaultBase(position mgl32.Vec3) BaseLight {
	return BaseLight{
		Color:        mgl32.Vec3{1, 1, 1},
		Intensity:    1,
		Position:     position,
		Attenuation:  Attenuation{Exponent: 1},
		ShadowBounds: ShadowBounds{NearDistance: 0.1, FarDistance: 100, Width: 40, Height: 40},
	}
}

func NewDirectionalLight(orientation mgl32.Quat) Light {
	return Light{Kind: LightDirectional, BaseLight: defaultBase(mgl32.Vec3{}), Orientation: orientation}
}

func NewPointLight(position mgl32.Vec3) Light {
	return Light{Kind: LightPoint, BaseLight: defaultBase(position), Orientation: mgl32.QuatIdent()}
}

func NewSpotLight(position mgl32.Vec3, orientation mgl32.Quat) Light {
	return Light{Kind: LightSpot, BaseLight: defaultBase(position), Orientation: orientation, Edge: 20}
}

// Direction is the way a directional or spot light shines: its local +Z.
func (l *Light) Direction() mgl32.Vec3 {
	return l.Orientation.Rotate(mgl32.Vec3{0, 0, 1})
}

// Radius is the editor radius of the light.
func (l *Light) Radius() float32 {
	return l.Intensity / LightRadiusIntensityFactor
}

// Attenuate scales intensity over distance d as
// 1 / (constant + linear*d + d^exponent).
func (l *Light) Attenuate(d float32) float32 {
	a := l.Attenuation
	falloff := a.Constant + a.Linear*d + math32.Pow(d, a.Exponent)
	if falloff <= 0 {
		return l.Intensity
	}
	return l.Intensity / falloff
}
