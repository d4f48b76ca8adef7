package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawpipe/gpu"
)

// uniformAlignment is the size granularity of uniform buffers.
const uniformAlignment = 16

// commandPass records into a hal render pass on the frame encoder.
// Errors from draws are kept and returned by End, matching the gpu
// package's contract that a pass fails as a whole.
type commandPass struct {
	backend *Backend
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	target  *renderTarget

	program  *program
	uniforms []byte
	samplers []gpu.BoundSampler
	// dirty is set when the next draw needs a new bind group.
	dirty bool

	err   error
	ended bool
}

var _ gpu.CommandPass = (*commandPass)(nil)

// BeginRenderPass opens a pass on desc.Target. Only one pass may be open
// at a time.
func (b *Backend) BeginRenderPass(desc gpu.RenderPassDesc) (gpu.CommandPass, error) {
	if b.released {
		return nil, ErrBackendReleased
	}
	if b.active != nil {
		return nil, errors.New("native: command pass already open")
	}
	target, err := b.ownTarget(desc.Target)
	if err != nil {
		return nil, err
	}
	if target.released {
		return nil, fmt.Errorf("native: render target %s released", desc.Label)
	}
	encoder, err := b.commandEncoder()
	if err != nil {
		return nil, err
	}
	if target.resolved != nil {
		target.resolved.transition(encoder, gputypes.TextureUsageRenderAttachment)
	}

	view, resolve := target.attachment()
	loadOp := gputypes.LoadOpLoad
	if desc.Load == gpu.LoadOpClear {
		loadOp = gputypes.LoadOpClear
	}
	c := desc.ClearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          view,
			ResolveTarget: resolve,
			LoadOp:        loadOp,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}},
	})
	p := &commandPass{
		backend: b,
		encoder: encoder,
		pass:    rp,
		target:  target,
	}
	b.active = p
	return p, nil
}

func (p *commandPass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *commandPass) SetProgram(cp gpu.CompiledProgram) {
	if p.ended {
		return
	}
	prog, ok := cp.(*program)
	if !ok || prog.backend != p.backend {
		p.fail(ErrForeignResource)
		return
	}
	if prog.released {
		p.fail(fmt.Errorf("native: program %s released", prog.label))
		return
	}
	p.program = prog
	p.pass.SetPipeline(prog.pipeline)
	p.dirty = true
}

func (p *commandPass) SetUniforms(data []byte) {
	p.uniforms = append(p.uniforms[:0], data...)
	p.dirty = true
}

func (p *commandPass) SetSamplers(samplers []gpu.BoundSampler) {
	p.samplers = append(p.samplers[:0], samplers...)
	p.dirty = true
}

// SetScissor clips following draws. Coordinates are in target pixels,
// already flipped for bottom-left targets by the caller.
func (p *commandPass) SetScissor(x, y, w, h int) {
	if p.ended {
		return
	}
	x = min(max(x, 0), p.target.width)
	y = min(max(y, 0), p.target.height)
	w = min(max(w, 0), p.target.width-x)
	h = min(max(h, 0), p.target.height-y)
	p.pass.SetScissorRect(uint32(x), uint32(y), uint32(w), uint32(h))
}

func (p *commandPass) Draw(vertices []float32, vertexCount int) {
	if p.ended || p.err != nil || vertexCount <= 0 {
		return
	}
	if p.program == nil {
		p.fail(errors.New("native: draw without program"))
		return
	}
	if p.dirty {
		if err := p.bind(); err != nil {
			p.fail(err)
			return
		}
		p.dirty = false
	}
	if len(vertices) > 0 {
		buf, err := p.vertexBuffer(vertices)
		if err != nil {
			p.fail(err)
			return
		}
		p.pass.SetVertexBuffer(0, buf, 0)
	}
	p.pass.Draw(uint32(vertexCount), 1, 0, 0)
}

func (p *commandPass) vertexBuffer(vertices []float32) (hal.Buffer, error) {
	data := make([]byte, 4*len(vertices))
	for i, v := range vertices {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	b := p.backend
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.program.label + "_vertices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create vertex buffer: %w", err)
	}
	b.frame.buffers = append(b.frame.buffers, buf)
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// bind creates the bind group for the current program, uniforms and
// samplers. Samplers are bound in the program's declaration order.
func (p *commandPass) bind() error {
	prog := p.program
	if len(p.samplers) != len(prog.samplers) {
		return fmt.Errorf("native: program %s wants %d samplers, got %d", prog.label, len(prog.samplers), len(p.samplers))
	}
	b := p.backend
	entries := make([]gputypes.BindGroupEntry, 0, 1+2*len(p.samplers))

	if prog.uniformSize > 0 {
		size := alignUp(max(prog.uniformSize, uint32(len(p.uniforms))), uniformAlignment)
		data := make([]byte, size)
		copy(data, p.uniforms)
		buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: prog.label + "_uniforms",
			Size:  uint64(size),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("native: create uniform buffer: %w", err)
		}
		b.frame.buffers = append(b.frame.buffers, buf)
		b.queue.WriteBuffer(buf, 0, data)
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: uint64(size)},
		})
	}

	for i, info := range prog.samplers {
		bound := p.samplers[i]
		tex, err := b.ownTexture(bound.Texture)
		if err != nil {
			return fmt.Errorf("sampler %s: %w", info.Name, err)
		}
		if tex.released {
			return fmt.Errorf("native: sampler %s: texture released", info.Name)
		}
		s, err := b.sampler(bound.State)
		if err != nil {
			return err
		}
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  uint32(info.TextureBinding),
				Resource: gputypes.TextureViewBinding{TextureView: uintptr(tex.view.NativeHandle())},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(info.SamplerBinding),
				Resource: gputypes.SamplerBinding{Sampler: uintptr(s.NativeHandle())},
			},
		)
	}
	if len(entries) == 0 {
		return nil
	}

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   prog.label + "_bind_group",
		Layout:  prog.bindings,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("native: create bind group: %w", err)
	}
	b.frame.bindGroups = append(b.frame.bindGroups, bg)
	p.pass.SetBindGroup(0, bg, nil)
	return nil
}

// End closes the pass and leaves the target sampleable for later passes.
func (p *commandPass) End() error {
	if p.ended {
		return ErrPassEnded
	}
	p.ended = true
	p.pass.End()
	if p.target.resolved != nil {
		p.target.resolved.transition(p.encoder, gputypes.TextureUsageTextureBinding)
	}
	p.backend.active = nil
	return p.err
}
