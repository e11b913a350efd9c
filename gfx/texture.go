// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

// TextureID identifies the texture a mesh samples from: either the
// built-in atlas or a texture the application registered with the draw
// system. It is a tagged value; the raw key encoding stays inside the
// draw system's handle translation.
type TextureID struct {
	user bool
	key  uint64
}

// AtlasTexture returns the id of the built-in atlas texture.
func AtlasTexture() TextureID {
	return TextureID{}
}

// UserTexture returns the id for a registered user texture key.
func UserTexture(key uint64) TextureID {
	return TextureID{user: true, key: key}
}

// IsUser reports whether the id names a registered user texture.
func (t TextureID) IsUser() bool {
	return t.user
}

// Key returns the raw user texture key. Only meaningful when IsUser.
func (t TextureID) Key() uint64 {
	return t.key
}
