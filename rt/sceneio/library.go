package sceneio

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gekko3d/slim/rt/memory"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/texture"
	"github.com/google/uuid"
)

// Logger is the subset of the application logger loading reports to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type AssetID string

func makeAssetID() AssetID {
	return AssetID(uuid.NewString())
}

type AssetKind uint8

const (
	AssetMesh AssetKind = iota
	AssetTexture
)

func (k AssetKind) String() string {
	if k == AssetMesh {
		return "mesh"
	}
	return "texture"
}

// Asset describes one loaded file. Builtin meshes have a "builtin:" path.
type Asset struct {
	ID   AssetID
	Kind AssetKind
	Path string
}

// Library loads every mesh and texture file once and hands out the same
// asset for later requests of the same file.
type Library struct {
	logger   Logger
	byKey    map[string]AssetID
	assets   map[AssetID]Asset
	meshes   map[AssetID]*mesh.Mesh
	textures map[AssetID]*texture.Texture
}

func NewLibrary(logger Logger) *Library {
	return &Library{
		logger:   logger,
		byKey:    make(map[string]AssetID),
		assets:   make(map[AssetID]Asset),
		meshes:   make(map[AssetID]*mesh.Mesh),
		textures: make(map[AssetID]*texture.Texture),
	}
}

func (l *Library) debugf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Debugf(format, args...)
	}
}

func (l *Library) add(key string, a Asset) AssetID {
	a.ID = makeAssetID()
	l.byKey[key] = a.ID
	l.assets[a.ID] = a
	l.debugf("sceneio: %s %s loaded as %s", a.Kind, a.Path, a.ID)
	return a.ID
}

// BuiltinMesh returns a mesh compiled into the binary. Only "cube" exists.
func (l *Library) BuiltinMesh(name string) (AssetID, *mesh.Mesh, error) {
	key := "builtin:" + name
	if id, ok := l.byKey[key]; ok {
		return id, l.meshes[id], nil
	}
	if name != "cube" {
		return "", nil, fmt.Errorf("%w: builtin %q", ErrUnknownMesh, name)
	}
	m := mesh.Cube()
	id := l.add(key, Asset{Kind: AssetMesh, Path: key})
	l.meshes[id] = m
	return id, m, nil
}

// LoadMesh reads an OBJ file or a mesh file.
func (l *Library) LoadMesh(path string) (AssetID, *mesh.Mesh, error) {
	key := "mesh:" + filepath.Clean(path)
	if id, ok := l.byKey[key]; ok {
		return id, l.meshes[id], nil
	}

	var m *mesh.Mesh
	var err error
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		m, err = mesh.LoadOBJ(path, l.logger)
	} else {
		var h mesh.Header
		if h, err = mesh.LoadHeader(path); err == nil {
			var b memory.Budget
			h.Budget(&b)
			m, err = mesh.Load(path, memory.NewArena(b.Bytes()))
		}
	}
	if err != nil {
		return "", nil, err
	}
	id := l.add(key, Asset{Kind: AssetMesh, Path: path})
	l.meshes[id] = m
	return id, m, nil
}

// LoadTexture decodes a PNG or BMP image into a texture with flags, or reads
// a texture file as written.
func (l *Library) LoadTexture(path string, flags texture.Flags) (AssetID, *texture.Texture, error) {
	key := fmt.Sprintf("texture:%s#%d", filepath.Clean(path), flags)
	if id, ok := l.byKey[key]; ok {
		return id, l.textures[id], nil
	}

	var t *texture.Texture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".bmp":
		img, err := texture.LoadImage(path)
		if err != nil {
			return "", nil, err
		}
		t = texture.FromImage(img, flags)
	default:
		h, err := texture.LoadHeader(path)
		if err != nil {
			return "", nil, err
		}
		var b memory.Budget
		h.Budget(&b)
		if t, err = texture.Load(path, memory.NewArena(b.Bytes())); err != nil {
			return "", nil, err
		}
	}
	id := l.add(key, Asset{Kind: AssetTexture, Path: path})
	l.textures[id] = t
	return id, t, nil
}

func (l *Library) Mesh(id AssetID) (*mesh.Mesh, bool) {
	m, ok := l.meshes[id]
	return m, ok
}

func (l *Library) Texture(id AssetID) (*texture.Texture, bool) {
	t, ok := l.textures[id]
	return t, ok
}

// Assets lists everything loaded, ordered by kind then path.
func (l *Library) Assets() []Asset {
	out := make([]Asset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Path < out[j].Path
	})
	return out
}
