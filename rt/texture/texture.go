// Package texture stores textures as mip chains of texel quads: each grid
// corner holds the four texels around it so a bilinear sample reads a single
// quad.
package texture

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const componentToFloat = 1.0 / 255.0

type Flags uint32

const (
	FlagMipmap Flags = 1 << iota
	FlagWrap
)

func (f Flags) Mipmap() bool { return f&FlagMipmap != 0 }
func (f Flags) Wrap() bool   { return f&FlagWrap != 0 }

// TexelQuadComponent is one channel of the four texels meeting at a corner.
type TexelQuadComponent struct {
	TL, TR, BL, BR uint8
}

type TexelQuad struct {
	R, G, B TexelQuadComponent
}

// Mip is one level of a texture. Quads has (Width+1)*(Height+1) entries.
type Mip struct {
	Width  uint32
	Height uint32
	Quads  []TexelQuad
}

func (m *Mip) Stride() uint32 { return m.Width + 1 }

func (m *Mip) Quad(x, y uint32) *TexelQuad {
	return &m.Quads[y*(m.Width+1)+x]
}

// Sample filters the mip bilinearly at (u, v). Coordinates past 1 wrap.
func (m *Mip) Sample(u, v float32) mgl32.Vec3 {
	u = wrapCoord(u)
	v = wrapCoord(v)

	U := u*float32(m.Width) + 0.5
	V := v*float32(m.Height) + 0.5
	x := uint32(U)
	y := uint32(V)
	if x > m.Width {
		x = m.Width
	}
	if y > m.Height {
		y = m.Height
	}
	r := U - float32(x)
	b := V - float32(y)
	l := 1 - r
	t := 1 - b
	tl := t * l * componentToFloat
	tr := t * r * componentToFloat
	bl := b * l * componentToFloat
	br := b * r * componentToFloat

	q := m.Quad(x, y)
	mix := func(c TexelQuadComponent) float32 {
		return float32(c.TL)*tl + float32(c.TR)*tr + float32(c.BL)*bl + float32(c.BR)*br
	}
	return mgl32.Vec3{mix(q.R), mix(q.G), mix(q.B)}
}

func wrapCoord(c float32) float32 {
	if c > 1 || c < 0 {
		c -= math32.Floor(c)
	}
	return c
}

type Texture struct {
	Width    uint32
	Height   uint32
	MipCount uint32
	Flags    Flags
	Mips     []Mip
}

// MipCount is the length of the mip chain for a width x height texture:
// levels halve until a side reaches 2 texels.
func MipCount(width, height uint32, mipmap bool) uint32 {
	count := uint32(0)
	for {
		count++
		width /= 2
		height /= 2
		if !mipmap || width <= 2 || height <= 2 {
			return count
		}
	}
}

// MipLevelForArea picks the level whose texel footprint is closest to one
// texel for a surface covering texelArea texels at level 0.
func MipLevelForArea(texelArea float32, mipCount uint32) uint32 {
	level := uint32(0)
	for texelArea > 1 {
		level++
		if level >= mipCount {
			break
		}
		texelArea *= 0.25
	}
	if level >= mipCount {
		level = mipCount - 1
	}
	return level
}

// MipLevel picks the level for a hit with the given uv coverage (uv area
// per world area).
func (t *Texture) MipLevel(uvCoverage float32) uint32 {
	if !t.Flags.Mipmap() || t.MipCount == 0 {
		return 0
	}
	return MipLevelForArea(uvCoverage*float32(t.Width*t.Height), t.MipCount)
}

func (t *Texture) Sample(u, v, uvCoverage float32) mgl32.Vec3 {
	return t.Mips[t.MipLevel(uvCoverage)].Sample(u, v)
}
