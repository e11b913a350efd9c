// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4"
)

// Open reads the pack index from r. It will also check that the file
// is actually a shader pack, returning ErrFileFormat when it is not.
// The ReaderAt must stay open for as long as the pack is read from.
func Open(r io.ReaderAt) (*Pack, error) {
	gotMagic, err := readSection(r, 0, MagicLength)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(gotMagic, magic[:]) {
		return nil, ErrFileFormat
	}

	headerSizeBytes, err := readSection(r, MagicLength, HeaderSizeNumberLength)
	if err != nil {
		return nil, err
	}
	headerSize, err := binaryToInt64(headerSizeBytes)
	if err != nil || headerSize <= 0 {
		return nil, ErrFileFormat
	}

	headerBytes, err := readSection(r, MagicLength+HeaderSizeNumberLength, headerSize)
	if err != nil {
		return nil, err
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, ErrFileFormat
	}

	return &Pack{
		reader:   r,
		header:   header,
		dataBase: MagicLength + HeaderSizeNumberLength + headerSize,
	}, nil
}

// Pack provides concurrent reads of one opened shader pack.
type Pack struct {
	reader   io.ReaderAt
	header   Header
	dataBase int64
}

// Version returns the pack's version stamp.
func (p *Pack) Version() int64 {
	return p.header.Version
}

// Index returns a copy of the pack index in file order.
func (p *Pack) Index() []IndexEntry {
	index := make([]IndexEntry, len(p.header.Index))
	copy(index, p.header.Index)
	return index
}

// Entry looks up one index entry by name.
func (p *Pack) Entry(name string) (IndexEntry, bool) {
	for _, entry := range p.header.Index {
		if entry.Name == name {
			return entry, true
		}
	}
	return IndexEntry{}, false
}

// Open returns a reader of the decompressed contents of one entry.
func (p *Pack) Open(name string) (io.Reader, error) {
	entry, ok := p.Entry(name)
	if !ok {
		return nil, ErrNotFound
	}
	section := io.NewSectionReader(p.reader, p.dataBase+entry.Offset, entry.CompressedSize)
	return lz4.NewReader(section), nil
}

// Shader returns the entire decompressed contents of one entry. The
// result is fresh memory, safe to hand to the driver.
func (p *Pack) Shader(name string) ([]byte, error) {
	r, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return data, nil
}
