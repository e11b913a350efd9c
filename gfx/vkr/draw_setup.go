// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/devblok/vulkan"

	"github.com/titan3d/titan/core"
	"github.com/titan3d/titan/gfx"
)

func (d *DrawSystem) createSampler() error {
	sci := vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterLinear,
		MinFilter:    vk.FilterLinear,
		AddressModeU: vk.SamplerAddressModeClampToEdge,
		AddressModeV: vk.SamplerAddressModeClampToEdge,
		AddressModeW: vk.SamplerAddressModeClampToEdge,
		MipmapMode:   vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	if err := core.Check("vk.CreateSampler()", vk.CreateSampler(d.device, &sci, nil, &sampler)); err != nil {
		return err
	}
	d.sampler = sampler
	return nil
}

func (d *DrawSystem) createDescriptorLayout(maxTextures uint32) error {
	dslci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}},
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	if err := core.Check("vk.CreateDescriptorSetLayout()", vk.CreateDescriptorSetLayout(d.device, &dslci, nil, &descriptorSetLayout)); err != nil {
		return err
	}
	d.descriptorSetLayout = descriptorSetLayout

	dpci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxTextures,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: maxTextures,
		}},
	}

	var descriptorPool vk.DescriptorPool
	if err := core.Check("vk.CreateDescriptorPool()", vk.CreateDescriptorPool(d.device, &dpci, nil, &descriptorPool)); err != nil {
		return err
	}
	d.descriptorPool = descriptorPool
	return nil
}

func (d *DrawSystem) createPipeline(vertexShader, fragmentShader []byte) error {
	plci := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{d.descriptorSetLayout},
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       8,
		}},
	}

	var pipelineLayout vk.PipelineLayout
	if err := core.Check("vk.CreatePipelineLayout()", vk.CreatePipelineLayout(d.device, &plci, nil, &pipelineLayout)); err != nil {
		return err
	}
	d.pipelineLayout = pipelineLayout

	vertModule, err := shaderModule(d.device, vertexShader)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(d.device, vertModule, nil)
	fragModule, err := shaderModule(d.device, fragmentShader)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(d.device, fragModule, nil)

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vertModule,
		PName:  "main\x00",
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: fragModule,
		PName:  "main\x00",
	}}

	vertexStride := uint32(20)
	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount: 1,
			PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
				Binding:   0,
				Stride:    vertexStride,
				InputRate: vk.VertexInputRateVertex,
			}},
			VertexAttributeDescriptionCount: 3,
			PVertexAttributeDescriptions: []vk.VertexInputAttributeDescription{{
				Location: 0,
				Binding:  0,
				Format:   vk.FormatR32g32Sfloat,
				Offset:   0,
			}, {
				Location: 1,
				Binding:  0,
				Format:   vk.FormatR32g32Sfloat,
				Offset:   8,
			}, {
				Location: 2,
				Binding:  0,
				Format:   vk.FormatR8g8b8a8Unorm,
				Offset:   16,
			}},
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeNone),
			FrontFace:   vk.FrontFaceCounterClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask:      0xF,
				BlendEnable:         vk.True,
				SrcColorBlendFactor: vk.BlendFactorOne,
				DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
				ColorBlendOp:        vk.BlendOpAdd,
				SrcAlphaBlendFactor: vk.BlendFactorOneMinusDstAlpha,
				DstAlphaBlendFactor: vk.BlendFactorOne,
				AlphaBlendOp:        vk.BlendOpAdd,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     d.pipelineLayout,
		RenderPass: d.renderPass,
		Subpass:    d.subpass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := core.Check("vk.CreateGraphicsPipelines()", vk.CreateGraphicsPipelines(d.device, vk.NullPipelineCache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return err
	}
	d.pipeline = pipelines[0]
	return nil
}

func (d *DrawSystem) createCommandBuffers(count int) error {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.queueFamily,
	}

	var commandPool vk.CommandPool
	if err := core.Check("vk.CreateCommandPool()", vk.CreateCommandPool(d.device, &cpci, nil, &commandPool)); err != nil {
		return err
	}
	d.commandPool = commandPool

	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelSecondary,
		CommandPool:        d.commandPool,
		CommandBufferCount: uint32(count),
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	if err := core.Check("vk.AllocateCommandBuffers()", vk.AllocateCommandBuffers(d.device, &cbai, commandBuffers)); err != nil {
		return err
	}
	d.commandBuffers = commandBuffers
	return nil
}

// uploadAtlas replaces the atlas image and its descriptor set with the
// current font atlas contents. The upload goes through a transient
// staging buffer and blocks until the copy completes.
func (d *DrawSystem) uploadAtlas(atlas *gfx.Atlas) error {
	pixels := atlas.RGBA()
	extent := gfx.Extent2D{Width: uint32(atlas.Width), Height: uint32(atlas.Height)}

	staging, err := NewBuffer(d.device, uint(len(pixels)), vk.BufferUsageTransferSrcBit, d.allocator)
	if err != nil {
		return err
	}
	defer staging.Release()
	staging.Write(0, pixels)

	image, err := NewSampledImage(d.device, extent, vk.FormatR8g8b8a8Unorm, d.allocator)
	if err != nil {
		return err
	}

	if err := d.transitionLayout(image.Get(), vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		image.Release()
		return err
	}
	if err := d.copyBufferToImage(staging.Get(), image.Get(), extent); err != nil {
		image.Release()
		return err
	}
	if err := d.transitionLayout(image.Get(), vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		image.Release()
		return err
	}

	set, err := d.imageDescriptorSet(image.View())
	if err != nil {
		image.Release()
		return err
	}

	if d.atlasSet != vk.NullDescriptorSet {
		vk.FreeDescriptorSets(d.device, d.descriptorPool, 1, []vk.DescriptorSet{d.atlasSet})
	}
	d.atlasImage.Release()
	d.atlasImage = image
	d.atlasSet = set
	return nil
}

func (d *DrawSystem) imageDescriptorSet(view vk.ImageView) (vk.DescriptorSet, error) {
	dsai := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.descriptorSetLayout},
	}

	var set vk.DescriptorSet
	if err := core.Check("vk.AllocateDescriptorSets()", vk.AllocateDescriptorSets(d.device, &dsai, &set)); err != nil {
		return vk.NullDescriptorSet, err
	}

	wds := []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     d.sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}}
	vk.UpdateDescriptorSets(d.device, uint32(len(wds)), wds, 0, nil)
	return set, nil
}

func (d *DrawSystem) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        d.commandPool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := core.Check("vk.AllocateCommandBuffers()", vk.AllocateCommandBuffers(d.device, &cbai, commandBuffers)); err != nil {
		return nil, err
	}
	commandBuffer := commandBuffers[0]

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	if err := core.Check("vk.BeginCommandBuffer()", vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
		vk.FreeCommandBuffers(d.device, d.commandPool, 1, []vk.CommandBuffer{commandBuffer})
		return nil, err
	}

	return commandBuffer, nil
}

func (d *DrawSystem) endSingleTimeCommands(commandBuffer vk.CommandBuffer) error {
	if err := core.Check("vk.EndCommandBuffer()", vk.EndCommandBuffer(commandBuffer)); err != nil {
		return err
	}

	si := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}

	if err := core.Check("vk.QueueSubmit()", vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{si}, nil)); err != nil {
		return err
	}

	vk.QueueWaitIdle(d.queue)

	vk.FreeCommandBuffers(d.device, d.commandPool, 1, []vk.CommandBuffer{commandBuffer})
	return nil
}

func (d *DrawSystem) transitionLayout(img vk.Image, old, new vk.ImageLayout) error {
	cmd, err := d.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	if old == vk.ImageLayoutUndefined && new == vk.ImageLayoutTransferDstOptimal {
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	} else if old == vk.ImageLayoutTransferDstOptimal && new == vk.ImageLayoutShaderReadOnlyOptimal {
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	} else {
		return &core.Error{Message: "unsupported layout transition"}
	}

	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

	return d.endSingleTimeCommands(cmd)
}

func (d *DrawSystem) copyBufferToImage(buf vk.Buffer, img vk.Image, extent gfx.Extent2D) error {
	cmd, err := d.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	bic := vk.BufferImageCopy{
		ImageExtent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
	}
	vk.CmdCopyBufferToImage(cmd, buf, img, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{bic})

	return d.endSingleTimeCommands(cmd)
}

func shaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}

	var shader vk.ShaderModule
	if err := core.Check("vk.CreateShaderModule()", vk.CreateShaderModule(device, &smci, nil, &shader)); err != nil {
		return vk.NullShaderModule, err
	}
	return shader, nil
}
