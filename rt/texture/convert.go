package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// LoadImage decodes a BMP or PNG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// FromImage converts an image into a texture. Lower mips are downscaled from
// the source with a bilinear filter.
func FromImage(img image.Image, flags Flags) *Texture {
	bounds := img.Bounds()
	w, h := uint32(bounds.Dx()), uint32(bounds.Dy())
	t := &Texture{
		Width:    w,
		Height:   h,
		Flags:    flags,
		MipCount: MipCount(w, h, flags.Mipmap()),
	}
	t.Mips = make([]Mip, t.MipCount)

	level := toRGBA(img)
	for i := range t.Mips {
		t.Mips[i] = mipFromRGBA(level, flags.Wrap())
		if i+1 < len(t.Mips) {
			b := level.Bounds()
			next := image.NewRGBA(image.Rect(0, 0, b.Dx()/2, b.Dy()/2))
			draw.BiLinear.Scale(next, next.Bounds(), level, b, draw.Src, nil)
			level = next
		}
	}
	return t
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// mipFromRGBA builds the corner quads of a level. Corner (x, y) sits between
// texels x-1 and x horizontally and y-1 and y vertically; texels past the
// edge are clamped or wrapped.
func mipFromRGBA(img *image.RGBA, wrap bool) Mip {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	m := Mip{Width: uint32(w), Height: uint32(h), Quads: make([]TexelQuad, (w+1)*(h+1))}

	texel := func(x, y int) color.RGBA {
		if wrap {
			x = (x + w) % w
			y = (y + h) % h
		} else {
			x = min(max(x, 0), w-1)
			y = min(max(y, 0), h-1)
		}
		return img.RGBAAt(x, y)
	}

	for y := 0; y <= h; y++ {
		for x := 0; x <= w; x++ {
			tl, tr := texel(x-1, y-1), texel(x, y-1)
			bl, br := texel(x-1, y), texel(x, y)
			q := &m.Quads[y*(w+1)+x]
			q.R = TexelQuadComponent{tl.R, tr.R, bl.R, br.R}
			q.G = TexelQuadComponent{tl.G, tr.G, bl.G, br.G}
			q.B = TexelQuadComponent{tl.B, tr.B, bl.B, br.B}
		}
	}
	return m
}

// Image renders a mip back into an image, reading each texel from the quad
// whose bottom right corner it is.
func (m *Mip) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, int(m.Width), int(m.Height)))
	for y := uint32(0); y < m.Height; y++ {
		for x := uint32(0); x < m.Width; x++ {
			q := m.Quad(x, y)
			out.SetRGBA(int(x), int(y), color.RGBA{q.R.BR, q.G.BR, q.B.BR, 255})
		}
	}
	return out
}
