// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core manages the lifetime of Vulkan driver objects: the
// process-wide driver connection, logical devices, presentation
// surfaces and synchronization primitives. Every object lives in a
// generational registry and is referred to by handle; see the registry
// package for the aliasing guarantees that buys.
package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/Masterminds/semver/v3"
	vk "github.com/devblok/vulkan"
)

const (
	validationLayerName  = "VK_LAYER_LUNARG_standard_validation"
	debugReportExtension = "VK_EXT_debug_report"
)

// InstanceConfiguration configures the driver connection.
type InstanceConfiguration struct {
	// Name identifies the application to the driver.
	Name string

	// DebugMode requests the validation layer and debug-report
	// extension when the driver offers them. Their absence degrades
	// capability, it is not an error.
	DebugMode bool

	// Extensions are the mandatory windowing-surface extensions, as
	// reported by the window that rendering will present to.
	Extensions []string

	// Layers are additional instance layers to request.
	Layers []string
}

// InstanceQuerier is the read-only half of the driver connection.
// Calls are serialized; the native API forbids concurrent calls
// through one connection.
type InstanceQuerier interface {
	// PhysicalDevices returns the raw accelerator handles in driver
	// enumeration order.
	PhysicalDevices() ([]vk.PhysicalDevice, error)
}

// InstanceConn is the full driver connection, adding the calls that
// mutate connection state. Split from InstanceQuerier so read paths
// can stop being serialized later without touching callers.
type InstanceConn interface {
	InstanceQuerier

	// OpenDevice opens a logical device against a physical one.
	OpenDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error)

	// ReleaseSurface destroys a presentation surface.
	ReleaseSurface(vk.Surface)

	// Close destroys the connection.
	Close()
}

// Loader owns the exclusive-access driver connection.
type Loader struct {
	mu       sync.Mutex
	instance vk.Instance
}

var _ InstanceConn = (*Loader)(nil)

// PhysicalDevices implements InstanceQuerier.
func (l *Loader) PhysicalDevices() ([]vk.PhysicalDevice, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var deviceCount uint32
	if err := Check("vk.EnumeratePhysicalDevices()", vk.EnumeratePhysicalDevices(l.instance, &deviceCount, nil)); err != nil {
		return nil, err
	}
	available := make([]vk.PhysicalDevice, deviceCount)
	if err := Check("vk.EnumeratePhysicalDevices()", vk.EnumeratePhysicalDevices(l.instance, &deviceCount, available)); err != nil {
		return nil, err
	}
	return available, nil
}

// OpenDevice implements InstanceConn.
func (l *Loader) OpenDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var device vk.Device
	if err := Check("vk.CreateDevice()", vk.CreateDevice(pd, info, nil, &device)); err != nil {
		return nil, err
	}
	return device, nil
}

// ReleaseSurface implements InstanceConn.
func (l *Loader) ReleaseSurface(surface vk.Surface) {
	l.mu.Lock()
	defer l.mu.Unlock()
	vk.DestroySurface(l.instance, surface, nil)
}

// Close implements InstanceConn.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	vk.DestroyInstance(l.instance, nil)
	l.instance = nil
}

// Instance is the opened top-level driver context. It owns the Loader
// and the accepted layer/extension sets. Mutable only during teardown.
type Instance struct {
	version    *semver.Version
	layers     []string
	extensions []string
	loader     *Loader

	// Live child surfaces; surfaces are caller-owned and not registry
	// managed, so the teardown ordering check counts them here.
	surfaces atomic.Int32
}

// NewInstance opens the driver connection. procAddr is the loader entry
// point supplied by the windowing collaborator; pass nil to use the
// system loader.
func NewInstance(cfg InstanceConfiguration, procAddr unsafe.Pointer) (InstanceHandle, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return InstanceHandle{}, newError("vk.SetDefaultGetInstanceProcAddr()", fmt.Errorf("%w: %v", ErrDriverUnavailable, err))
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return InstanceHandle{}, newError("vk.Init()", fmt.Errorf("%w: %v", ErrDriverUnavailable, err))
	}

	// Negotiate the highest mutually supported API version. Drivers
	// predating the version query get the 1.0 baseline.
	apiVersion := uint32(vk.MakeVersion(1, 0, 0))
	var driverVersion uint32
	if vk.EnumerateInstanceVersion(&driverVersion) == vk.Success && driverVersion > apiVersion {
		apiVersion = uint32(vk.MakeVersion(1, 2, 0))
		if driverVersion < apiVersion {
			apiVersion = driverVersion
		}
	}

	availableLayers, err := instanceLayerNames()
	if err != nil {
		return InstanceHandle{}, err
	}
	availableExtensions, err := instanceExtensionNames()
	if err != nil {
		return InstanceHandle{}, err
	}

	layers := append([]string{}, cfg.Layers...)
	extensions := append([]string{}, cfg.Extensions...)
	if cfg.DebugMode {
		if contains(availableLayers, validationLayerName) {
			layers = append(layers, validationLayerName)
		}
		if contains(availableExtensions, debugReportExtension) {
			extensions = append(extensions, debugReportExtension)
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         apiVersion,
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(cfg.Name),
		PEngineName:        safeString("Titan"),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	if err := Check("vk.CreateInstance()", vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return InstanceHandle{}, err
	}
	vk.InitInstance(instance)

	return instances.Insert(&Instance{
		version:    versionFromVk(apiVersion),
		layers:     layers,
		extensions: extensions,
		loader:     &Loader{instance: instance},
	}), nil
}

// Native exposes the raw driver connection for windowing integration,
// such as surface creation. It must not be used to destroy anything
// the registries track.
func (i *Instance) Native() vk.Instance {
	return i.loader.instance
}

// Version returns the negotiated API version.
func (i *Instance) Version() *semver.Version {
	return i.version
}

// Layers returns the accepted layer set.
func (i *Instance) Layers() []string {
	return i.layers
}

// Extensions returns the accepted extension set.
func (i *Instance) Extensions() []string {
	return i.extensions
}

// EnumeratePhysicalDevices snapshots every accelerator visible through
// the instance and returns their handles in driver enumeration order.
// The order is not guaranteed stable between calls.
func EnumeratePhysicalDevices(h InstanceHandle) ([]PhysicalDeviceHandle, error) {
	inst, ok := instances.Get(h)
	if !ok {
		return nil, newError("instance not found", nil)
	}

	raw, err := inst.loader.PhysicalDevices()
	if err != nil {
		return nil, err
	}

	handles := make([]PhysicalDeviceHandle, len(raw))
	for idx, device := range raw {
		handles[idx] = physicalDevices.Insert(snapshotPhysicalDevice(h, device))
	}
	return handles, nil
}

// DestroyInstance tears down the driver connection. Destroying an
// instance while devices or surfaces opened against it still exist is a
// caller-ordering bug and panics; destruction never cascades to
// children. A handle that no longer resolves is a no-op.
func DestroyInstance(h InstanceHandle) {
	inst, ok := instances.Get(h)
	if !ok {
		return
	}

	devices.Range(func(_ DeviceHandle, d *Device) bool {
		if d.parent == h {
			panic("core: instance destroyed while a device opened against it is still live")
		}
		return true
	})
	if inst.surfaces.Load() != 0 {
		panic("core: instance destroyed while a surface opened against it is still live")
	}

	// The capability snapshots are passive data owned by enumeration;
	// drop them with the connection they describe.
	var stale []PhysicalDeviceHandle
	physicalDevices.Range(func(ph PhysicalDeviceHandle, info *PhysicalDeviceInfo) bool {
		if info.parent == h {
			stale = append(stale, ph)
		}
		return true
	})
	for _, ph := range stale {
		physicalDevices.Remove(ph)
	}

	instances.Remove(h)
	inst.loader.Close()
}

func instanceLayerNames() ([]string, error) {
	var count uint32
	if err := Check("vk.EnumerateInstanceLayerProperties()", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	properties := make([]vk.LayerProperties, count)
	if err := Check("vk.EnumerateInstanceLayerProperties()", vk.EnumerateInstanceLayerProperties(&count, properties)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for _, layer := range properties {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func instanceExtensionNames() ([]string, error) {
	var count uint32
	if err := Check("vk.EnumerateInstanceExtensionProperties()", vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := Check("vk.EnumerateInstanceExtensionProperties()", vk.EnumerateInstanceExtensionProperties("", &count, properties)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for _, ext := range properties {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func versionFromVk(version uint32) *semver.Version {
	return semver.New(uint64(version>>22), uint64(version>>12&0x3ff), uint64(version&0xfff), "", "")
}
