// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"

	"github.com/titan3d/titan/core"
	"github.com/titan3d/titan/gfx"
	"github.com/titan3d/titan/registry"
)

type frameState int

const (
	stateIdle frameState = iota
	stateRecording
	stateSubmitted
)

// Config describes the render target and resources a DrawSystem
// records against.
type Config struct {
	// RenderPass and Subpass the recorded secondary command buffers
	// will execute inside. The pass is borrowed, never owned.
	RenderPass vk.RenderPass
	Subpass    uint32

	// Precompiled SPIR-V shader binaries. Shader compilation happens
	// elsewhere; these are opaque here.
	VertexShader   []byte
	FragmentShader []byte

	// FrameCount is the number of command buffers cycled through.
	// Defaults to 2.
	FrameCount int

	// VertexPoolSize and IndexPoolSize are the transient pool byte
	// capacities. Defaults: 4 MiB and 1 MiB.
	VertexPoolSize uint
	IndexPoolSize  uint

	// MaxTextures bounds the descriptor pool: the atlas set plus user
	// registered textures. Defaults to 128.
	MaxTextures uint32
}

func (c *Config) fillDefaults() {
	if c.FrameCount == 0 {
		c.FrameCount = 2
	}
	if c.VertexPoolSize == 0 {
		c.VertexPoolSize = 4 << 20
	}
	if c.IndexPoolSize == 0 {
		c.IndexPoolSize = 1 << 20
	}
	if c.MaxTextures == 0 {
		c.MaxTextures = 128
	}
}

// DrawSystem records UI mesh batches into command buffers. One
// instance is not reentrant: callers serialize Draw/FrameComplete per
// instance, though independent instances may run concurrently.
type DrawSystem struct {
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32
	allocator   *MemoryAllocator

	pipeline            vk.Pipeline
	pipelineLayout      vk.PipelineLayout
	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	sampler             vk.Sampler

	renderPass vk.RenderPass
	subpass    uint32

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	vertexPool *BufferPool
	indexPool  *BufferPool

	// Atlas cache: the descriptor set is rebuilt only when the atlas
	// version counter moves.
	atlasVersion uint64
	atlasUploads uint64
	atlasImage   Image
	atlasSet     vk.DescriptorSet

	userSets *registry.Registry[vk.DescriptorSet]

	state frameState
	frame int
}

// NewDrawSystem initialises a draw system against a device queue and a
// render-target description. The queue family must support graphics
// work.
func NewDrawSystem(device core.DeviceHandle, queueFamily uint32, cfg Config) (*DrawSystem, error) {
	cfg.fillDefaults()

	dev, ok := core.GetDevice(device)
	if !ok {
		return nil, &core.Error{Message: "device not found"}
	}
	info, ok := core.GetPhysicalDevice(dev.PhysicalDevice())
	if !ok {
		return nil, &core.Error{Message: "physical device not found"}
	}
	if int(queueFamily) >= len(info.QueueFamilies) ||
		info.QueueFamilies[queueFamily].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
		return nil, &core.Error{Message: fmt.Sprintf("queue family %d does not support graphics", queueFamily)}
	}

	allocator, err := NewMemoryAllocator(dev.Native(), info.Native())
	if err != nil {
		return nil, err
	}

	d := &DrawSystem{
		device:      dev.Native(),
		queue:       dev.Queue(queueFamily, 0),
		queueFamily: queueFamily,
		allocator:   allocator,
		renderPass:  cfg.RenderPass,
		subpass:     cfg.Subpass,
		userSets:    registry.New[vk.DescriptorSet](),
	}

	if err := d.createSampler(); err != nil {
		return nil, err
	}
	if err := d.createDescriptorLayout(cfg.MaxTextures); err != nil {
		d.Release()
		return nil, err
	}
	if err := d.createPipeline(cfg.VertexShader, cfg.FragmentShader); err != nil {
		d.Release()
		return nil, err
	}
	if err := d.createCommandBuffers(cfg.FrameCount); err != nil {
		d.Release()
		return nil, err
	}

	d.vertexPool, err = NewBufferPool(d.device, cfg.VertexPoolSize, vk.BufferUsageVertexBufferBit, allocator)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.indexPool, err = NewBufferPool(d.device, cfg.IndexPoolSize, vk.BufferUsageIndexBufferBit, allocator)
	if err != nil {
		d.Release()
		return nil, err
	}

	return d, nil
}

// Draw records one frame of UI. It re-uploads the atlas only when its
// version moved, skips empty meshes, pulls transient buffer ranges
// from the frame pools and returns the recorded command buffer.
// Submission and semaphore signaling are the caller's responsibility;
// call FrameComplete once the submission has finished on the GPU.
func (d *DrawSystem) Draw(viewport gfx.Extent2D, scaleFactor float32, meshes []gfx.Mesh, atlas *gfx.Atlas) (vk.CommandBuffer, error) {
	if d.state != stateIdle {
		panic("vkr: Draw called while a frame is in flight")
	}
	d.state = stateRecording

	plan := planFrame(viewport, scaleFactor, meshes, atlas.Version, d.atlasVersion)
	if plan.rebuildAtlas {
		if err := d.uploadAtlas(atlas); err != nil {
			d.state = stateIdle
			return nil, err
		}
		d.atlasVersion = atlas.Version
		d.atlasUploads++
	}

	cmd := d.commandBuffers[d.frame]
	if err := core.Check("vk.ResetCommandBuffer()", vk.ResetCommandBuffer(cmd, 0)); err != nil {
		d.state = stateIdle
		return nil, err
	}

	inheritance := vk.CommandBufferInheritanceInfo{
		SType:      vk.StructureTypeCommandBufferInheritanceInfo,
		RenderPass: d.renderPass,
		Subpass:    d.subpass,
	}
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit |
			vk.CommandBufferUsageRenderPassContinueBit),
		PInheritanceInfo: &inheritance,
	}
	if err := core.Check("vk.BeginCommandBuffer()", vk.BeginCommandBuffer(cmd, &cbbi)); err != nil {
		d.state = stateIdle
		return nil, err
	}

	fullViewport := vk.Viewport{
		Width:    float32(viewport.Width),
		Height:   float32(viewport.Height),
		MaxDepth: 1,
	}

	for _, step := range plan.steps {
		mesh := &meshes[step.mesh]

		vertexOffset, err := d.vertexPool.Push(vertexBytes(mesh.Vertices))
		if err != nil {
			d.state = stateIdle
			return nil, err
		}
		indexOffset, err := d.indexPool.Push(indexBytes(mesh.Indices))
		if err != nil {
			d.state = stateIdle
			return nil, err
		}

		set := d.resolveDescriptorSet(mesh.Texture)

		vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, d.pipeline)
		vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{fullViewport})
		vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
			Offset: vk.Offset2D{X: step.scissor.X, Y: step.scissor.Y},
			Extent: vk.Extent2D{Width: step.scissor.Width, Height: step.scissor.Height},
		}})
		vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{d.vertexPool.Buffer()}, []vk.DeviceSize{vertexOffset})
		vk.CmdBindIndexBuffer(cmd, d.indexPool.Buffer(), indexOffset, vk.IndexTypeUint32)
		vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, d.pipelineLayout, 0, 1, []vk.DescriptorSet{set}, 0, nil)

		pc := plan.screenSize
		vk.CmdPushConstants(cmd, d.pipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, uint32(unsafe.Sizeof(pc)), unsafe.Pointer(&pc))
		vk.CmdDrawIndexed(cmd, step.indexCount, 1, 0, 0, 0)
	}

	if err := core.Check("vk.EndCommandBuffer()", vk.EndCommandBuffer(cmd)); err != nil {
		d.state = stateIdle
		return nil, err
	}

	d.frame = (d.frame + 1) % len(d.commandBuffers)
	d.state = stateSubmitted
	return cmd, nil
}

// FrameComplete reclaims the frame's transient buffer ranges. Call it
// once the submission of the buffer returned by Draw has completed.
func (d *DrawSystem) FrameComplete() {
	d.vertexPool.Reset()
	d.indexPool.Reset()
	d.state = stateIdle
}

// AtlasUploads returns how many times the atlas image was rebuilt.
func (d *DrawSystem) AtlasUploads() uint64 {
	return d.atlasUploads
}

// RegisterTexture builds a descriptor set over the given view and
// returns a stable texture id for it.
func (d *DrawSystem) RegisterTexture(view vk.ImageView) (gfx.TextureID, error) {
	set, err := d.imageDescriptorSet(view)
	if err != nil {
		return gfx.TextureID{}, err
	}
	handle := d.userSets.Insert(set)
	return gfx.UserTexture(handle.Key()), nil
}

// UnregisterTexture removes a previously registered texture. The
// built-in atlas id is a no-op. Using the id after unregistering it is
// a caller contract violation.
func (d *DrawSystem) UnregisterTexture(id gfx.TextureID) {
	if !id.IsUser() {
		return
	}
	handle := registry.FromKey[vk.DescriptorSet](id.Key())
	if set, ok := d.userSets.Remove(handle); ok {
		vk.FreeDescriptorSets(d.device, d.descriptorPool, 1, []vk.DescriptorSet{set})
	}
}

// Texture resolves a texture id to its descriptor set, reporting
// whether it is registered.
func (d *DrawSystem) Texture(id gfx.TextureID) (vk.DescriptorSet, bool) {
	if !id.IsUser() {
		return d.atlasSet, d.atlasSet != vk.NullDescriptorSet
	}
	return d.userSets.Get(registry.FromKey[vk.DescriptorSet](id.Key()))
}

func (d *DrawSystem) resolveDescriptorSet(id gfx.TextureID) vk.DescriptorSet {
	set, ok := d.Texture(id)
	if !ok {
		if id.IsUser() {
			panic("vkr: user texture was unregistered but is still in use")
		}
		panic("vkr: atlas texture drawn before first atlas upload")
	}
	return set
}

// Release destroys every resource the draw system owns, in reverse
// creation order, after draining the queue.
func (d *DrawSystem) Release() {
	vk.QueueWaitIdle(d.queue)

	if d.indexPool != nil {
		d.indexPool.Release()
		d.indexPool = nil
	}
	if d.vertexPool != nil {
		d.vertexPool.Release()
		d.vertexPool = nil
	}
	d.atlasImage.Release()
	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.device, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
	if d.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(d.device, d.pipeline, nil)
		d.pipeline = vk.NullPipeline
	}
	if d.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(d.device, d.pipelineLayout, nil)
		d.pipelineLayout = vk.NullPipelineLayout
	}
	if d.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(d.device, d.descriptorPool, nil)
		d.descriptorPool = vk.NullDescriptorPool
	}
	if d.descriptorSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(d.device, d.descriptorSetLayout, nil)
		d.descriptorSetLayout = vk.NullDescriptorSetLayout
	}
	if d.sampler != vk.NullSampler {
		vk.DestroySampler(d.device, d.sampler, nil)
		d.sampler = vk.NullSampler
	}
}

func vertexBytes(vertices []gfx.Vertex) []byte {
	size := len(vertices) * int(unsafe.Sizeof(gfx.Vertex{}))
	return *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(unsafe.Pointer(&vertices[0])),
		Len:  size,
		Cap:  size,
	}))
}

func indexBytes(indices []uint32) []byte {
	size := len(indices) * 4
	return *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(unsafe.Pointer(&indices[0])),
		Len:  size,
		Cap:  size,
	}))
}
