// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Screen   ScreenConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the delay between event queue polls,
	// in milliseconds
	EventPollDelay int
}

// ScreenConfiguration describes the initial window dimensions.
type ScreenConfiguration struct {
	Width  uint32
	Height uint32
}
