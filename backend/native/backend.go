package native

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Registers the Vulkan HAL used by Open.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/drawpipe/backend"
	"github.com/gogpu/drawpipe/gpu"
)

// Name is the registry name of this backend.
const Name = backend.Native

const (
	// fenceTimeout bounds every CPU wait on the GPU.
	fenceTimeout = 5 * time.Second

	// maxInFlight is the number of unsynced submissions kept before the
	// oldest one is waited on and reclaimed.
	maxInFlight = 2
)

func init() {
	if err := backend.Register(Name, func() (gpu.Backend, error) { return Open() }); err != nil {
		slogger().Warn("native: registration failed", "error", err)
	}
}

// frameResources are transient objects referenced by recorded commands.
// They are destroyed once the GPU has finished the submission using them.
// programs holds released programs whose pipelines may still be in use.
type frameResources struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
	programs   []*program
}

func (f *frameResources) destroy(device hal.Device) {
	for _, bg := range f.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, buf := range f.buffers {
		device.DestroyBuffer(buf)
	}
	for _, p := range f.programs {
		p.destroy(device)
	}
	f.bindGroups = nil
	f.buffers = nil
	f.programs = nil
}

type submission struct {
	fence     hal.Fence
	cmd       hal.CommandBuffer
	resources frameResources
}

// Backend is a gpu.Backend on a HAL device.
type Backend struct {
	instance hal.Instance // nil when the device is shared
	device   hal.Device
	queue    hal.Queue
	// external devices are owned by the host application.
	external bool
	caps     *gpu.Caps

	encoder  hal.CommandEncoder
	frame    frameResources
	inFlight []*submission
	samplers map[gpu.SamplerState]hal.Sampler
	// active is the open command pass, at most one at a time.
	active *commandPass

	released bool
}

var _ gpu.Backend = (*Backend)(nil)

// New wraps a device and queue the caller owns. Release leaves both alive.
func New(device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, errors.New("native: device and queue are required")
	}
	b := newBackend(device, queue)
	b.external = true
	return b, nil
}

// NewFromProvider shares the device of a host application, such as a
// gogpu window. The provider must expose its HAL device and queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Backend, error) {
	if provider == nil {
		return nil, errors.New("native: provider is nil")
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, errors.New("native: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("native: provider HalQueue is not hal.Queue")
	}
	b, err := New(device, queue)
	if err != nil {
		return nil, err
	}
	slogger().Info("native: sharing provider device", "surfaceFormat", provider.SurfaceFormat())
	return b, nil
}

// Open creates a standalone Vulkan device, preferring a discrete or
// integrated GPU over software adapters.
func Open() (*Backend, error) {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("native: vulkan backend not available")
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	b, err := openInstance(instance)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	return b, nil
}

func openInstance(instance hal.Instance) (*Backend, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	b := newBackend(openDev.Device, openDev.Queue)
	b.instance = instance
	slogger().Info("native: device opened", "adapter", selected.Info.Name)
	return b, nil
}

func newBackend(device hal.Device, queue hal.Queue) *Backend {
	return &Backend{
		device:   device,
		queue:    queue,
		caps:     gpu.DefaultCaps(),
		samplers: make(map[gpu.SamplerState]hal.Sampler),
	}
}

// Name returns the registry name.
func (b *Backend) Name() string { return Name }

// Caps returns the device capabilities.
func (b *Backend) Caps() *gpu.Caps { return b.caps }

// Submit ends the current command encoder and hands it to the queue. With
// syncCPU it waits for every outstanding submission.
func (b *Backend) Submit(syncCPU bool) error {
	if b.released {
		return ErrBackendReleased
	}
	if b.active != nil {
		return errors.New("native: submit with an open command pass")
	}
	if b.encoder != nil {
		if err := b.submitEncoder(); err != nil {
			return err
		}
	}
	if syncCPU {
		return b.waitIdle()
	}
	for len(b.inFlight) > maxInFlight {
		if err := b.reclaim(b.inFlight[0]); err != nil {
			return err
		}
		b.inFlight = b.inFlight[1:]
	}
	return nil
}

func (b *Backend) submitEncoder() error {
	encoder := b.encoder
	b.encoder = nil
	resources := b.frame
	b.frame = frameResources{}

	cmd, err := encoder.EndEncoding()
	if err != nil {
		resources.destroy(b.device)
		return fmt.Errorf("native: end encoding: %w", err)
	}
	fence, err := b.device.CreateFence()
	if err != nil {
		b.device.FreeCommandBuffer(cmd)
		resources.destroy(b.device)
		return fmt.Errorf("native: create fence: %w", err)
	}
	if err := b.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		b.device.DestroyFence(fence)
		b.device.FreeCommandBuffer(cmd)
		resources.destroy(b.device)
		return fmt.Errorf("native: submit: %w", err)
	}
	b.inFlight = append(b.inFlight, &submission{fence: fence, cmd: cmd, resources: resources})
	return nil
}

// reclaim waits for s and frees what it kept alive. The fence is
// destroyed even on timeout so a lost device does not leak it.
func (b *Backend) reclaim(s *submission) error {
	ok, err := b.device.Wait(s.fence, 1, fenceTimeout)
	b.device.DestroyFence(s.fence)
	b.device.FreeCommandBuffer(s.cmd)
	s.resources.destroy(b.device)
	if err != nil {
		return fmt.Errorf("native: wait for GPU: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	return nil
}

func (b *Backend) waitIdle() error {
	var first error
	for _, s := range b.inFlight {
		if err := b.reclaim(s); err != nil && first == nil {
			first = err
		}
	}
	b.inFlight = nil
	return first
}

// commandEncoder returns the frame encoder, creating it on first use.
func (b *Backend) commandEncoder() (hal.CommandEncoder, error) {
	if b.encoder != nil {
		return b.encoder, nil
	}
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "drawpipe_frame"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("drawpipe_frame"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	b.encoder = encoder
	return encoder, nil
}

func (b *Backend) sampler(state gpu.SamplerState) (hal.Sampler, error) {
	if s, ok := b.samplers[state]; ok {
		return s, nil
	}
	s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "drawpipe_sampler",
		AddressModeU: addressMode(state.WrapX),
		AddressModeV: addressMode(state.WrapY),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(state.Filter),
		MinFilter:    filterMode(state.Filter),
		MipmapFilter: mipmapFilter(state.Mipmap),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}
	b.samplers[state] = s
	return s, nil
}

// Release waits for the GPU, then destroys cached samplers and, for
// devices opened by Open, the device and instance. Textures, targets and
// programs must be released by their owners before this.
func (b *Backend) Release() {
	if b.released {
		return
	}
	if b.encoder != nil {
		b.encoder.DiscardEncoding()
		b.encoder = nil
		b.frame.destroy(b.device)
	}
	if err := b.waitIdle(); err != nil {
		slogger().Warn("native: release while GPU busy", "error", err)
	}
	for state, s := range b.samplers {
		b.device.DestroySampler(s)
		delete(b.samplers, state)
	}
	b.released = true
	if b.external {
		return
	}
	b.device.Destroy()
	if b.instance != nil {
		b.instance.Destroy()
	}
}
