package texture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gekko3d/slim/rt/memory"
)

var ErrBadHeader = errors.New("texture: bad header")

type Header struct {
	Width    uint32
	Height   uint32
	MipCount uint32
	Flags    Flags
}

func (t *Texture) Header() Header {
	return Header{Width: t.Width, Height: t.Height, MipCount: t.MipCount, Flags: t.Flags}
}

func (h Header) validate() error {
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: empty %dx%d texture", ErrBadHeader, h.Width, h.Height)
	}
	if want := MipCount(h.Width, h.Height, h.Flags.Mipmap()); h.MipCount != want {
		return fmt.Errorf("%w: %d mips, expected %d", ErrBadHeader, h.MipCount, want)
	}
	return nil
}

// Budget adds the footprint of a texture described by h.
func (h Header) Budget(b *memory.Budget) {
	w, hh := h.Width, h.Height
	memory.Add[Mip](b, int(h.MipCount))
	for i := uint32(0); i < h.MipCount; i++ {
		memory.Add[TexelQuad](b, int((w+1)*(hh+1)))
		w /= 2
		hh /= 2
	}
}

func (h Header) SizeInBytes() uint64 {
	var b memory.Budget
	h.Budget(&b)
	return b.Bytes()
}

func WriteHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, &h)
}

func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("texture header: %w", err)
	}
	return h, h.validate()
}

// LoadHeader reads only the header of a texture file, for sizing arenas.
func LoadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return ReadHeader(f)
}

// AllocateMemory carves the mip chain of a texture described by h.
func AllocateMemory(h Header, arena *memory.Arena) (*Texture, error) {
	t := &Texture{Width: h.Width, Height: h.Height, MipCount: h.MipCount, Flags: h.Flags}
	mips, err := memory.Alloc[Mip](arena, int(h.MipCount))
	if err != nil {
		return nil, fmt.Errorf("allocate texture: %w", err)
	}
	t.Mips = mips
	w, hh := h.Width, h.Height
	for i := range t.Mips {
		t.Mips[i].Width, t.Mips[i].Height = w, hh
		if t.Mips[i].Quads, err = memory.Alloc[TexelQuad](arena, int((w+1)*(hh+1))); err != nil {
			return nil, fmt.Errorf("allocate texture mip %d: %w", i, err)
		}
		w /= 2
		hh /= 2
	}
	return t, nil
}

func (t *Texture) WriteContent(w io.Writer) error {
	le := binary.LittleEndian
	for i := range t.Mips {
		m := &t.Mips[i]
		if err := binary.Write(w, le, [2]uint32{m.Width, m.Height}); err != nil {
			return err
		}
		if err := binary.Write(w, le, m.Quads); err != nil {
			return err
		}
	}
	return nil
}

func (t *Texture) ReadContent(r io.Reader) error {
	le := binary.LittleEndian
	for i := range t.Mips {
		m := &t.Mips[i]
		var dims [2]uint32
		if err := binary.Read(r, le, &dims); err != nil {
			return fmt.Errorf("texture mip %d: %w", i, err)
		}
		if dims[0] != m.Width || dims[1] != m.Height {
			return fmt.Errorf("%w: mip %d is %dx%d, expected %dx%d", ErrBadHeader, i, dims[0], dims[1], m.Width, m.Height)
		}
		if err := binary.Read(r, le, m.Quads); err != nil {
			return fmt.Errorf("texture mip %d: %w", i, err)
		}
	}
	return nil
}

func (t *Texture) Write(w io.Writer) error {
	if err := WriteHeader(w, t.Header()); err != nil {
		return err
	}
	return t.WriteContent(w)
}

// Read decodes a texture, carving it from arena when one is given.
func Read(r io.Reader, arena *memory.Arena) (*Texture, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if arena == nil {
		arena = memory.NewArena(h.SizeInBytes())
	}
	t, err := AllocateMemory(h, arena)
	if err != nil {
		return nil, err
	}
	if err := t.ReadContent(r); err != nil {
		return nil, err
	}
	return t, nil
}

func Save(path string, t *Texture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := t.Write(w); err != nil {
		f.Close()
		return fmt.Errorf("save texture %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Load(path string, arena *memory.Arena) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(bufio.NewReader(f), arena)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	return t, nil
}
