package platform

import (
	_ "embed"
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
)

//go:embed blit.wgsl
var blitWGSL string

// Presenter uploads CPU rendered frames into a texture and draws it over
// the window surface.
type Presenter struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	pipeline  *wgpu.RenderPipeline
	sampler   *wgpu.Sampler
	frame     *wgpu.Texture
	frameView *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	frameSize image.Point
}

func NewPresenter(w *Window) (*Presenter, error) {
	p := &Presenter{instance: wgpu.CreateInstance(nil)}
	p.surface = p.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(w.handle))

	var err error
	p.adapter, err = p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: p.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("platform: request adapter: %w", err)
	}
	p.device, err = p.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "slim device"})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("platform: request device: %w", err)
	}
	p.queue = p.device.GetQueue()

	caps := p.surface.GetCapabilities(p.adapter)
	width, height := w.FramebufferSize()
	p.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      surfaceFormat(caps.Formats),
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	p.surface.Configure(p.adapter, p.device, p.config)

	if err := p.createPipeline(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// surfaceFormat prefers a linear 8 bit format: frames are already in
// display space.
func surfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	return formats[0]
}

func (p *Presenter) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "blit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitWGSL},
	})
	if err != nil {
		return fmt.Errorf("platform: blit shader: %w", err)
	}
	defer shader.Release()

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "blit",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: p.config.Format, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("platform: blit pipeline: %w", err)
	}

	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("platform: blit sampler: %w", err)
	}
	return nil
}

// Resize reconfigures the surface after the framebuffer changed size.
func (p *Presenter) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.config.Width, p.config.Height = uint32(width), uint32(height)
	p.surface.Configure(p.adapter, p.device, p.config)
}

// ensureFrame recreates the frame texture and its bind group when the
// image size changed.
func (p *Presenter) ensureFrame(size image.Point) error {
	if p.frame != nil && p.frameSize == size {
		return nil
	}
	p.releaseFrame()

	var err error
	p.frame, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "frame",
		Size:          wgpu.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("platform: frame texture: %w", err)
	}
	if p.frameView, err = p.frame.CreateView(nil); err != nil {
		return fmt.Errorf("platform: frame view: %w", err)
	}

	layout := p.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	p.bindGroup, err = p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.frameView},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("platform: frame bind group: %w", err)
	}
	p.frameSize = size
	return nil
}

func (p *Presenter) releaseFrame() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.frameView != nil {
		p.frameView.Release()
		p.frameView = nil
	}
	if p.frame != nil {
		p.frame.Release()
		p.frame = nil
	}
}

// Present stretches img over the whole window.
func (p *Presenter) Present(img *image.RGBA) error {
	size := img.Rect.Size()
	if size.X == 0 || size.Y == 0 {
		return nil
	}
	if err := p.ensureFrame(size); err != nil {
		return err
	}
	err := p.queue.WriteTexture(p.frame.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(img.Stride),
		RowsPerImage: uint32(size.Y),
	}, &wgpu.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1})
	if err != nil {
		return fmt.Errorf("platform: upload frame: %w", err)
	}

	next, err := p.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("platform: acquire surface texture: %w", err)
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()
	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	defer pass.Release()
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	p.queue.Submit(cmd)
	p.surface.Present()
	return nil
}

// Release frees every GPU object. The presenter is unusable afterwards.
func (p *Presenter) Release() {
	p.releaseFrame()
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.queue != nil {
		p.queue.Release()
	}
	if p.device != nil {
		p.device.Release()
	}
	if p.adapter != nil {
		p.adapter.Release()
	}
	if p.surface != nil {
		p.surface.Release()
	}
	if p.instance != nil {
		p.instance.Release()
	}
	*p = Presenter{}
}
