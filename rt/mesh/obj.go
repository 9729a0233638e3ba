package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/slim/rt/bvh"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrBadOBJ = errors.New("mesh: malformed wavefront obj")

// ReadOBJ parses the geometry of a Wavefront OBJ stream: v, vt, vn and f
// records. Polygons are fanned into triangles. Faces without normals get
// their flat normal, and unused records are ignored.
func ReadOBJ(r io.Reader) (Source, error) {
	var (
		src        Source
		uvs        []mgl32.Vec2
		normals    []mgl32.Vec3
		hasUVs     bool
		zeroUV     = -1
		faceUVs    []TriangleVertexIndices
		faceNorms  []TriangleVertexIndices
		edges      = map[[2]uint32]struct{}{}
		lineNumber int
	)
	fail := func(format string, args ...any) (Source, error) {
		return Source{}, fmt.Errorf("%w: line %d: %s", ErrBadOBJ, lineNumber, fmt.Sprintf(format, args...))
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}
		switch tokens[0] {
		case "v":
			v, err := parseVec3(tokens)
			if err != nil {
				return fail("%v", err)
			}
			src.Positions = append(src.Positions, v)
		case "vn":
			v, err := parseVec3(tokens)
			if err != nil {
				return fail("%v", err)
			}
			normals = append(normals, v)
		case "vt":
			if len(tokens) < 3 {
				return fail(`"vt" needs 2 coordinates`)
			}
			var uv mgl32.Vec2
			for i := range uv {
				f, err := strconv.ParseFloat(tokens[i+1], 32)
				if err != nil {
					return fail("%v", err)
				}
				uv[i] = float32(f)
			}
			uvs = append(uvs, uv)
		case "f":
			if len(tokens) < 4 {
				return fail(`"f" needs at least 3 vertices, got %d`, len(tokens)-1)
			}
			verts := make([][3]int, len(tokens)-1)
			for i, tok := range tokens[1:] {
				parts := strings.Split(tok, "/")
				if parts[0] == "" {
					return fail("face vertex %d has no position", i)
				}
				var err error
				verts[i] = [3]int{-1, -1, -1}
				if verts[i][0], err = coordIndex(parts[0], len(src.Positions)); err != nil {
					return fail("position of face vertex %d: %v", i, err)
				}
				if len(parts) > 1 && parts[1] != "" {
					if verts[i][1], err = coordIndex(parts[1], len(uvs)); err != nil {
						return fail("uv of face vertex %d: %v", i, err)
					}
					hasUVs = true
				}
				if len(parts) > 2 && parts[2] != "" {
					if verts[i][2], err = coordIndex(parts[2], len(normals)); err != nil {
						return fail("normal of face vertex %d: %v", i, err)
					}
				}
			}

			for k := 1; k+1 < len(verts); k++ {
				tri := [3][3]int{verts[0], verts[k], verts[k+1]}
				var pi, ui, ni TriangleVertexIndices
				flat := false
				for c := range tri {
					pi[c] = uint32(tri[c][0])
					if tri[c][2] < 0 {
						flat = true
					}
				}
				if flat {
					p := src.Positions
					n := p[pi[2]].Sub(p[pi[0]]).Cross(p[pi[1]].Sub(p[pi[0]])).Normalize()
					normals = append(normals, n)
					last := uint32(len(normals) - 1)
					ni = TriangleVertexIndices{last, last, last}
				} else {
					ni = TriangleVertexIndices{uint32(tri[0][2]), uint32(tri[1][2]), uint32(tri[2][2])}
				}
				for c := range tri {
					if tri[c][1] >= 0 {
						ui[c] = uint32(tri[c][1])
						continue
					}
					if zeroUV < 0 {
						uvs = append(uvs, mgl32.Vec2{})
						zeroUV = len(uvs) - 1
					}
					ui[c] = uint32(zeroUV)
				}
				src.PositionIndices = append(src.PositionIndices, pi)
				faceNorms = append(faceNorms, ni)
				faceUVs = append(faceUVs, ui)

				for c := 0; c < 3; c++ {
					a, b := pi[c], pi[(c+1)%3]
					if a > b {
						a, b = b, a
					}
					if _, ok := edges[[2]uint32{a, b}]; !ok {
						edges[[2]uint32{a, b}] = struct{}{}
						src.Edges = append(src.Edges, EdgeVertexIndices{a, b})
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Source{}, fmt.Errorf("read obj: %w", err)
	}
	if len(src.PositionIndices) == 0 {
		return fail("no faces")
	}

	src.Normals, src.NormalIndices = normals, faceNorms
	if hasUVs {
		src.UVs, src.UVIndices = uvs, faceUVs
	}
	return src, nil
}

// LoadOBJ reads an OBJ file and builds its mesh.
func LoadOBJ(path string, logger bvh.Logger) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := ReadOBJ(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load obj %s: %w", path, err)
	}
	return New(src, logger), nil
}

// coordIndex resolves a 1 based OBJ index, or a negative one counting back
// from the last record read.
func coordIndex(token string, count int) (int, error) {
	i, err := strconv.Atoi(token)
	if err != nil {
		return -1, err
	}
	if i < 0 {
		i += count
	} else {
		i--
	}
	if i < 0 || i >= count {
		return -1, fmt.Errorf("index %s out of range [1, %d]", token, count)
	}
	return i, nil
}

func parseVec3(tokens []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(tokens) < 4 {
		return v, fmt.Errorf("%q needs 3 coordinates, got %d", tokens[0], len(tokens)-1)
	}
	for i := range v {
		f, err := strconv.ParseFloat(tokens[i+1], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}
