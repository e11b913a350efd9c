// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shaderpack is an api for an lz4 backed shader archive format.
// Its purpose is shipping precompiled SPIR-V binaries alongside the
// engine and getting them from disk to the driver as fast as possible.
// The archive itself is not compressed in any form, rather every entry
// is individually compressed, so it can be read from its place and
// decompressed on the fly. The index is known up front, so entries can
// be read concurrently and in any order.
package shaderpack

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"io"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a shader pack")
	ErrNotFound   = errors.New("no entry with that name in the pack")
)

// Sizes relevant to the preamble of the file.
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 8
)

var magic = [MagicLength]byte{'T', 'S', 'P', '\x00'}

// Stage tags an entry with the pipeline stage its SPIR-V targets.
type Stage int

// Recognized pipeline stages.
const (
	VertexStage Stage = iota
	FragmentStage
	ComputeStage
)

// IndexEntry is info for one shader in the pack index. Offset is
// relative to the end of the header, so the header's own encoded size
// never feeds back into it.
type IndexEntry struct {
	Name           string
	Stage          Stage
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the pack header, gob encoded behind the preamble.
type Header struct {
	CreatedAt int64
	Version   int64
	Index     []IndexEntry
}

func int64ToBinary(num int64) []byte {
	buf := bytes.NewBuffer([]byte{})
	if err := binary.Write(buf, binary.LittleEndian, &num); err != nil {
		panic(err) // If this thing fails you're probably having bigger problems
	}
	return buf.Bytes()
}

func binaryToInt64(bts []byte) (int64, error) {
	var num int64
	if err := binary.Read(bytes.NewReader(bts), binary.LittleEndian, &num); err != nil {
		return 0, err
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(bts)).Decode(obj)
}

func readSection(r io.ReaderAt, offset, size int64) ([]byte, error) {
	section := make([]byte, size)
	if num, err := r.ReadAt(section, offset); err != nil && err != io.EOF {
		return nil, err
	} else if int64(num) < size {
		return nil, ErrFileFormat
	}
	return section, nil
}
