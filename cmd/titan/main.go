// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"
	"runtime"
	"strconv"

	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/titan3d/titan/core"
	"github.com/titan3d/titan/gfx"
	"github.com/titan3d/titan/gfx/vkr"
	"github.com/titan3d/titan/utility/shaderpack"
)

func init() {
	runtime.LockOSThread()
}

func loadConfiguration() core.Configuration {
	// A missing .env is fine, the defaults below stand in.
	godotenv.Load()

	return core.Configuration{
		Time: core.TimeConfiguration{
			FramesPerSecond: envInt("TITAN_FPS", 60),
			EventPollDelay:  envInt("TITAN_EVENT_POLL_MS", 1),
		},
		Instance: core.InstanceConfiguration{
			Name:      "Titan",
			DebugMode: envy.Get("TITAN_DEBUG", "") != "",
		},
		Screen: core.ScreenConfiguration{
			Width:  uint32(envInt("TITAN_WIDTH", 800)),
			Height: uint32(envInt("TITAN_HEIGHT", 600)),
		},
	}
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(envy.Get(key, strconv.Itoa(fallback)))
	if err != nil {
		log.WithField("key", key).Warn("ignoring non-numeric override")
		return fallback
	}
	return value
}

func newWindow(cfg core.ScreenConfiguration) *sdl.Window {
	window, err := sdl.CreateWindow("Titan",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		log.Fatal(err)
	}
	return window
}

func loadShaders() (vert, frag []byte) {
	path := envy.Get("TITAN_SHADER_PACK", "./shaders.tsp")
	f, err := os.Open(path)
	if err != nil {
		log.WithField("path", path).Fatal(err)
	}
	defer f.Close()

	pack, err := shaderpack.Open(f)
	if err != nil {
		log.WithField("path", path).Fatal(err)
	}
	if vert, err = pack.Shader("ui.vert"); err != nil {
		log.Fatal(err)
	}
	if frag, err = pack.Shader("ui.frag"); err != nil {
		log.Fatal(err)
	}
	return vert, frag
}

// newRenderPass builds a single-subpass pass over one color attachment
// in the surface's preferred format, just enough of a target for the
// draw system's pipeline.
func newRenderPass(device vk.Device, format vk.Format) vk.RenderPass {
	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vk.AttachmentDescription{{
			Format:        format,
			Samples:       vk.SampleCount1Bit,
			LoadOp:        vk.AttachmentLoadOpClear,
			StoreOp:       vk.AttachmentStoreOpStore,
			InitialLayout: vk.ImageLayoutUndefined,
			FinalLayout:   vk.ImageLayoutPresentSrc,
		}},
		SubpassCount: 1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: 1,
			PColorAttachments: []vk.AttachmentReference{{
				Attachment: 0,
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			}},
		}},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(device, &rpci, nil, &renderPass)); err != nil {
		log.Fatalf("vk.CreateRenderPass(): %s", err.Error())
	}
	return renderPass
}

// demoFrame is one full-window quad over the font atlas, enough to
// drive the draw system through its whole per-frame path.
func demoFrame(cfg core.ScreenConfiguration) []gfx.Mesh {
	w := float32(cfg.Width)
	h := float32(cfg.Height)
	white := [4]uint8{255, 255, 255, 255}
	return []gfx.Mesh{{
		Clip: gfx.Rect{Max: glm.Vec2{w, h}},
		Vertices: []gfx.Vertex{
			{Pos: glm.Vec2{0, 0}, UV: glm.Vec2{0, 0}, Color: white},
			{Pos: glm.Vec2{w, 0}, UV: glm.Vec2{1, 0}, Color: white},
			{Pos: glm.Vec2{w, h}, UV: glm.Vec2{1, 1}, Color: white},
			{Pos: glm.Vec2{0, h}, UV: glm.Vec2{0, 1}, Color: white},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
		Texture: gfx.AtlasTexture(),
	}}
}

func main() {
	configuration := loadConfiguration()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Fatal(err)
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		log.Fatal(err)
	}
	defer sdl.VulkanUnloadLibrary()

	window := newWindow(configuration.Screen)
	defer window.Destroy()

	configuration.Instance.Extensions = window.VulkanGetInstanceExtensions()
	instance, err := core.NewInstance(configuration.Instance, sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		log.Fatal(err)
	}
	defer core.DestroyInstance(instance)

	inst, _ := core.GetInstance(instance)
	log.WithField("version", inst.Version()).Info("driver connection opened")

	rawSurface, err := window.VulkanCreateSurface(inst.Native())
	if err != nil {
		log.Fatal(err)
	}
	surface, err := core.NewSurface(instance, rawSurface)
	if err != nil {
		log.Fatal(err)
	}
	defer surface.Destroy()

	physicalDevices, err := core.EnumeratePhysicalDevices(instance)
	if err != nil {
		log.Fatal(err)
	}

	var (
		chosen      core.PhysicalDeviceHandle
		queueFamily uint32
		found       bool
	)
	for _, pd := range physicalDevices {
		info, ok := core.GetPhysicalDevice(pd)
		if !ok || info.Invalid {
			continue
		}
		family, hasGraphics := info.HasGraphicsQueue()
		if hasGraphics && surface.IsSuitable(pd) {
			chosen, queueFamily, found = pd, family, true
			log.WithField("device", info.Name).Info("accelerator selected")
			break
		}
	}
	if !found {
		log.Fatal("no suitable accelerator found")
	}

	device, err := core.OpenDevice(chosen, []uint32{queueFamily}, []string{"VK_KHR_swapchain"})
	if err != nil {
		log.Fatal(err)
	}
	defer core.DestroyDevice(device)

	renderFinished, err := core.NewSemaphore(device)
	if err != nil {
		log.Fatal(err)
	}
	defer core.DestroySemaphore(renderFinished)

	dev, _ := core.GetDevice(device)
	formats, err := surface.Formats(chosen)
	if err != nil {
		log.Fatal(err)
	}
	renderPass := newRenderPass(dev.Native(), formats[0].Format)
	defer vk.DestroyRenderPass(dev.Native(), renderPass, nil)

	vertShader, fragShader := loadShaders()
	drawSystem, err := vkr.NewDrawSystem(device, queueFamily, vkr.Config{
		RenderPass:     renderPass,
		VertexShader:   vertShader,
		FragmentShader: fragShader,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer drawSystem.Release()

	atlas := &gfx.Atlas{Width: 1, Height: 1, Version: 1, Pixels: []uint8{255}}
	meshes := demoFrame(configuration.Screen)
	viewport := gfx.Extent2D{
		Width:  configuration.Screen.Width,
		Height: configuration.Screen.Height,
	}

	engineTime := core.NewTime(configuration.Time)
	exitC := make(chan struct{}, 2)

EventLoop:
	for {
		select {
		case <-exitC:
			log.Info("event loop exited")
			break EventLoop
		case <-engineTime.FpsTicker().C:
			// The demo records but does not present; executing the
			// secondary buffer belongs to the integrating renderer.
			if _, err := drawSystem.Draw(viewport, 1, meshes, atlas); err != nil {
				log.Error(err)
				exitC <- struct{}{}
				continue EventLoop
			}
			drawSystem.FrameComplete()
		case <-engineTime.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						exitC <- struct{}{}
						continue EventLoop
					}
				case *sdl.QuitEvent:
					exitC <- struct{}{}
					continue EventLoop
				}
			}
		}
	}

	log.WithField("atlasUploads", drawSystem.AtlasUploads()).Info("draw system stopped")
}
