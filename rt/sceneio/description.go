// Package sceneio reads YAML scene descriptions and turns them into
// scenes, loading the meshes and textures they reference through a
// Library.
package sceneio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalid             = errors.New("sceneio: invalid scene description")
	ErrUnknownGeometryType = errors.New("sceneio: unknown geometry type")
	ErrUnknownMesh         = errors.New("sceneio: unknown mesh")
	ErrUnknownMaterial     = errors.New("sceneio: unknown material")
	ErrUnknownTexture      = errors.New("sceneio: unknown texture")
	ErrUnknownLightKind    = errors.New("sceneio: unknown light kind")
)

// Description is the YAML form of a scene. Materials, textures and meshes
// are referenced by name; file paths are relative to the scene file.
type Description struct {
	Camera     CameraDescription     `yaml:"camera"`
	Materials  []MaterialDescription `yaml:"materials,omitempty"`
	Textures   []TextureDescription  `yaml:"textures,omitempty"`
	Meshes     []MeshDescription     `yaml:"meshes,omitempty"`
	Geometries []GeometryDescription `yaml:"geometries,omitempty"`
	Lights     []LightDescription    `yaml:"lights,omitempty"`
}

// CameraDescription places the camera. LookAt wins over Yaw and Pitch,
// which are in degrees.
type CameraDescription struct {
	Position    mgl32.Vec3  `yaml:"position"`
	LookAt      *mgl32.Vec3 `yaml:"look_at,omitempty"`
	Yaw         float32     `yaml:"yaw,omitempty"`
	Pitch       float32     `yaml:"pitch,omitempty"`
	FocalLength float32     `yaml:"focal_length,omitempty"`
}

type MaterialDescription struct {
	Name     string      `yaml:"name"`
	Albedo   *mgl32.Vec3 `yaml:"albedo,omitempty"`
	Emission mgl32.Vec3  `yaml:"emission,omitempty"`
	Texture  string      `yaml:"texture,omitempty"`
}

type TextureDescription struct {
	Name string `yaml:"name"`
	// Path is a PNG or BMP image, or a texture file.
	Path   string `yaml:"path"`
	Mipmap bool   `yaml:"mipmap,omitempty"`
	Wrap   bool   `yaml:"wrap,omitempty"`
}

// MeshDescription names either a builtin mesh or a mesh file: an OBJ or a
// mesh written by the mesh package.
type MeshDescription struct {
	Name    string `yaml:"name"`
	Builtin string `yaml:"builtin,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// GeometryDescription places one instance. Rotation is XYZ Euler angles in
// degrees. Visible and Shadowing default to true.
type GeometryDescription struct {
	Type        string      `yaml:"type"`
	Position    mgl32.Vec3  `yaml:"position,omitempty"`
	Rotation    mgl32.Vec3  `yaml:"rotation,omitempty"`
	Scale       *mgl32.Vec3 `yaml:"scale,omitempty"`
	Color       *mgl32.Vec3 `yaml:"color,omitempty"`
	Material    string      `yaml:"material,omitempty"`
	Mesh        string      `yaml:"mesh,omitempty"`
	Visible     *bool       `yaml:"visible,omitempty"`
	Shadowing   *bool       `yaml:"shadowing,omitempty"`
	Transparent bool        `yaml:"transparent,omitempty"`
}

type AttenuationDescription struct {
	Constant float32 `yaml:"constant"`
	Linear   float32 `yaml:"linear"`
	Exponent float32 `yaml:"exponent"`
}

// LightDescription is a directional, point or spot light. Direction, when
// given, overrides Rotation for directional and spot lights.
type LightDescription struct {
	Kind        string                  `yaml:"kind"`
	Position    mgl32.Vec3              `yaml:"position,omitempty"`
	Rotation    mgl32.Vec3              `yaml:"rotation,omitempty"`
	Direction   *mgl32.Vec3             `yaml:"direction,omitempty"`
	Color       *mgl32.Vec3             `yaml:"color,omitempty"`
	Intensity   *float32                `yaml:"intensity,omitempty"`
	Edge        float32                 `yaml:"edge,omitempty"`
	Attenuation *AttenuationDescription `yaml:"attenuation,omitempty"`
}

// Parse decodes a YAML description. Unknown fields are errors.
func Parse(data []byte) (*Description, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var d Description
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &d, nil
}

// Encode writes d as YAML.
func (d *Description) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func ptr[T any](v T) *T { return &v }

// Example is a small scene exercising every primitive type.
func Example() *Description {
	target := mgl32.Vec3{0, 0.5, 0}
	return &Description{
		Camera: CameraDescription{Position: mgl32.Vec3{4, 4, -8}, LookAt: &target, FocalLength: 2},
		Materials: []MaterialDescription{
			{Name: "floor", Albedo: ptr(mgl32.Vec3{0.8, 0.8, 0.8})},
			{Name: "red", Albedo: ptr(mgl32.Vec3{0.9, 0.2, 0.2})},
			{Name: "lamp", Albedo: ptr(mgl32.Vec3{1, 1, 1}), Emission: mgl32.Vec3{1, 0.9, 0.6}},
		},
		Meshes: []MeshDescription{{Name: "cube", Builtin: "cube"}},
		Geometries: []GeometryDescription{
			{Type: "quad", Position: mgl32.Vec3{0, -1, 0}, Scale: ptr(mgl32.Vec3{10, 1, 10}), Material: "floor"},
			{Type: "box", Position: mgl32.Vec3{-2.5, 0, 0}, Rotation: mgl32.Vec3{0, 30, 0}, Material: "red"},
			{Type: "sphere", Position: mgl32.Vec3{0, 0, 0}},
			{Type: "tet", Position: mgl32.Vec3{2.5, 0, 0}, Color: ptr(mgl32.Vec3{0.2, 0.4, 0.9})},
			{Type: "mesh", Mesh: "cube", Position: mgl32.Vec3{0, 0, 3}, Scale: ptr(mgl32.Vec3{0.5, 1, 0.5})},
			{Type: "sphere", Position: mgl32.Vec3{0, 3, 0}, Scale: ptr(mgl32.Vec3{0.2, 0.2, 0.2}), Material: "lamp", Shadowing: ptr(false)},
		},
		Lights: []LightDescription{
			{Kind: "directional", Direction: ptr(mgl32.Vec3{-0.3, -1, 0.5}), Intensity: ptr(float32(0.6))},
			{Kind: "point", Position: mgl32.Vec3{0, 3, 0}, Intensity: ptr(float32(4))},
		},
	}
}
