package sceneio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/gekko3d/slim/rt/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Loaded is a built scene with the camera it is viewed from.
type Loaded struct {
	Scene   *scene.Scene
	Camera  scene.Camera
	Library *Library
}

// Load reads and builds the scene description at path.
func Load(path string, logger Logger) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l, err := Build(d, filepath.Dir(path), NewLibrary(logger), logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Build resolves the names in d and creates its scene. Relative asset paths
// are taken from dir.
func Build(d *Description, dir string, lib *Library, logger Logger) (*Loaded, error) {
	start := time.Now()
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	textures := make([]*texture.Texture, len(d.Textures))
	textureIDs := make(map[string]int32, len(d.Textures))
	for i, td := range d.Textures {
		if td.Path == "" {
			return nil, fmt.Errorf("%w: texture %q has no path", ErrInvalid, td.Name)
		}
		var flags texture.Flags
		if td.Mipmap {
			flags |= texture.FlagMipmap
		}
		if td.Wrap {
			flags |= texture.FlagWrap
		}
		_, t, err := lib.LoadTexture(resolve(td.Path), flags)
		if err != nil {
			return nil, fmt.Errorf("texture %q: %w", td.Name, err)
		}
		textures[i] = t
		textureIDs[td.Name] = int32(i)
	}

	materials := make([]scene.Material, 0, len(d.Materials)+1)
	materialIDs := make(map[string]uint32, len(d.Materials))
	for _, md := range d.Materials {
		albedo := mgl32.Vec3{1, 1, 1}
		if md.Albedo != nil {
			albedo = *md.Albedo
		}
		m := scene.NewMaterial(albedo)
		if md.Emission != (mgl32.Vec3{}) {
			m.Emission = md.Emission
			m.Flags |= scene.MaterialIsEmissive
		}
		if md.Texture != "" {
			id, ok := textureIDs[md.Texture]
			if !ok {
				return nil, fmt.Errorf("material %q: %w: %q", md.Name, ErrUnknownTexture, md.Texture)
			}
			m.TextureID = id
			m.Flags |= scene.MaterialHasAlbedoMap
		}
		materialIDs[md.Name] = uint32(len(materials))
		materials = append(materials, m)
	}
	// Geometries without a material use the last one.
	defaultMaterial := uint32(len(materials))
	materials = append(materials, scene.DefaultMaterial())

	meshes := make([]*mesh.Mesh, len(d.Meshes))
	meshIDs := make(map[string]uint32, len(d.Meshes))
	for i, md := range d.Meshes {
		var m *mesh.Mesh
		var err error
		switch {
		case md.Builtin != "" && md.Path != "":
			return nil, fmt.Errorf("%w: mesh %q has both builtin and path", ErrInvalid, md.Name)
		case md.Builtin != "":
			_, m, err = lib.BuiltinMesh(md.Builtin)
		case md.Path != "":
			_, m, err = lib.LoadMesh(resolve(md.Path))
		default:
			return nil, fmt.Errorf("%w: mesh %q has neither builtin nor path", ErrInvalid, md.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", md.Name, err)
		}
		meshes[i] = m
		meshIDs[md.Name] = uint32(i)
	}

	geometries := make([]scene.Geometry, len(d.Geometries))
	for i, gd := range d.Geometries {
		t, ok := scene.ParseGeometryType(gd.Type)
		if !ok {
			return nil, fmt.Errorf("geometry %d: %w: %q", i, ErrUnknownGeometryType, gd.Type)
		}
		g := scene.NewGeometry(t)
		g.Transform.Position = gd.Position
		g.Transform.Orientation = eulerDegrees(gd.Rotation)
		if gd.Scale != nil {
			g.Transform.Scale = *gd.Scale
		}
		if gd.Color != nil {
			g.Color = *gd.Color
		}
		g.Flags = 0
		if gd.Visible == nil || *gd.Visible {
			g.Flags |= scene.GeometryIsVisible
		}
		if gd.Shadowing == nil || *gd.Shadowing {
			g.Flags |= scene.GeometryIsShadowing
		}
		if gd.Transparent {
			g.Flags |= scene.GeometryIsTransparent
		}

		g.MaterialID = defaultMaterial
		if gd.Material != "" {
			if g.MaterialID, ok = materialIDs[gd.Material]; !ok {
				return nil, fmt.Errorf("geometry %d: %w: %q", i, ErrUnknownMaterial, gd.Material)
			}
		}
		if t == scene.GeometryMesh {
			if g.ID, ok = meshIDs[gd.Mesh]; !ok {
				return nil, fmt.Errorf("geometry %d: %w: %q", i, ErrUnknownMesh, gd.Mesh)
			}
		}
		geometries[i] = g
	}

	lights := make([]scene.Light, len(d.Lights))
	for i, ld := range d.Lights {
		l, err := buildLight(ld)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		lights[i] = l
	}

	cam := buildCamera(d.Camera)
	s, err := scene.New(scene.Counts{}, scene.Options{
		Geometries: geometries,
		Cameras:    []scene.Camera{cam},
		Lights:     lights,
		Materials:  materials,
		Meshes:     meshes,
		Textures:   textures,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Infof("sceneio: built scene in %s", time.Since(start))
	}
	return &Loaded{Scene: s, Camera: cam, Library: lib}, nil
}

func eulerDegrees(r mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(mgl32.DegToRad(r[0]), mgl32.DegToRad(r[1]), mgl32.DegToRad(r[2]), mgl32.XYZ)
}

func buildLight(ld LightDescription) (scene.Light, error) {
	orientation := eulerDegrees(ld.Rotation)
	if ld.Direction != nil && ld.Direction.Len() > 0 {
		orientation = mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, ld.Direction.Normalize())
	}

	var l scene.Light
	switch ld.Kind {
	case "directional":
		l = scene.NewDirectionalLight(orientation)
		l.Position = ld.Position
	case "point":
		l = scene.NewPointLight(ld.Position)
	case "spot":
		l = scene.NewSpotLight(ld.Position, orientation)
		if ld.Edge > 0 {
			l.Edge = ld.Edge
		}
	default:
		return l, fmt.Errorf("%w: %q", ErrUnknownLightKind, ld.Kind)
	}
	if ld.Color != nil {
		l.Color = *ld.Color
	}
	if ld.Intensity != nil {
		l.Intensity = *ld.Intensity
	}
	if a := ld.Attenuation; a != nil {
		l.Attenuation = scene.Attenuation{Constant: a.Constant, Linear: a.Linear, Exponent: a.Exponent}
	}
	return l, nil
}

func buildCamera(cd CameraDescription) scene.Camera {
	cam := scene.NewCamera()
	cam.Position = cd.Position
	if cd.FocalLength > 0 {
		cam.FocalLength = cd.FocalLength
		cam.ZoomAmount = cd.FocalLength
	}
	if cd.LookAt != nil {
		cam.LookAt(*cd.LookAt)
	} else {
		cam.SetRotation(mgl32.DegToRad(cd.Yaw), mgl32.DegToRad(cd.Pitch))
	}
	return cam
}
