package scene

import "github.com/go-gl/mathgl/mgl32"

type MaterialFlags uint8

const (
	MaterialIsEmissive MaterialFlags = 1 << iota
	MaterialIsReflective
	MaterialIsRefractive
	MaterialHasAlbedoMap
)

// NoTexture marks a material without an albedo map.
const NoTexture = -1

type Material struct {
	Albedo       mgl32.Vec3
	Reflectivity mgl32.Vec3
	Emission     mgl32.Vec3
	Roughness    float32
	Metalness    float32
	IOR          float32
	Flags        MaterialFlags
	TextureID    int32
}

func NewMaterial(albedo mgl32.Vec3) Material {
	return Material{
		Albedo:       albedo,
		Reflectivity: mgl32.Vec3{0.04, 0.04, 0.04},
		Roughness:    1.0,
		Metalness:    0.0,
		IOR:          1.0,
		TextureID:    NoTexture,
	}
}

// Helper for default white
func DefaultMaterial() Material {
	return NewMaterial(mgl32.Vec3{1, 1, 1})
}

func (m *Material) IsEmissive() bool { return m.Flags&MaterialIsEmissive != 0 }

func (m *Material) HasAlbedoMap() bool {
	return m.Flags&MaterialHasAlbedoMap != 0 && m.TextureID != NoTexture
}
