// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. Do not fill the Index in the
// header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	if header.CreatedAt == 0 {
		header.CreatedAt = time.Now().Unix()
	}
	return &Builder{header: header}
}

type pendingEntry struct {
	name       string
	stage      Stage
	size       int64
	compressed []byte
}

// Builder assembles a shader pack. Packs are versioned and cannot be
// appended to, the Builder is the only way to create one. Every Add
// compresses immediately, WriteTo lays out the index and blobs.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries []pendingEntry
}

// Add compresses data and queues it under the given name. Will block
// until lz4 finishes compression. Is safe to use concurrently in
// different goroutines.
func (b *Builder) Add(name string, stage Stage, data []byte) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.entries = append(b.entries, pendingEntry{
		name:       name,
		stage:      stage,
		size:       int64(len(data)),
		compressed: compressed.Bytes(),
	})
	return nil
}

// WriteTo bundles and writes every queued entry into a pack that is
// ready to open. The Builder is drained afterwards.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = nil
	var offset int64
	for _, entry := range b.entries {
		header.Index = append(header.Index, IndexEntry{
			Name:           entry.name,
			Stage:          entry.stage,
			Offset:         offset,
			Size:           entry.size,
			CompressedSize: int64(len(entry.compressed)),
		})
		offset += int64(len(entry.compressed))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var written int64
	num, err := w.Write(magic[:])
	written += int64(num)
	if err != nil {
		return written, err
	}
	num, err = w.Write(int64ToBinary(int64(len(rawHeader))))
	written += int64(num)
	if err != nil {
		return written, err
	}
	num, err = w.Write(rawHeader)
	written += int64(num)
	if err != nil {
		return written, err
	}
	for _, entry := range b.entries {
		num, err = w.Write(entry.compressed)
		written += int64(num)
		if err != nil {
			return written, err
		}
	}

	b.entries = b.entries[:0]
	return written, nil
}
