// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/mmap"

	"github.com/titan3d/titan/utility/shaderpack"
)

func buildTestPack(t *testing.T) *bytes.Reader {
	t.Helper()

	builder := shaderpack.NewBuilder(shaderpack.Header{Version: 3})
	if err := builder.Add("ui.vert", shaderpack.VertexStage, bytes.Repeat([]byte("vertex shader body "), 64)); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("ui.frag", shaderpack.FragmentStage, []byte("fragment shader body")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := builder.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestBuildAndOpen(t *testing.T) {
	pack, err := shaderpack.Open(buildTestPack(t))
	if err != nil {
		t.Fatal(err)
	}

	if pack.Version() != 3 {
		t.Errorf("expected version 3, got %d", pack.Version())
	}
	if len(pack.Index()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(pack.Index()))
	}

	entry, ok := pack.Entry("ui.frag")
	if !ok {
		t.Fatal("ui.frag missing from index")
	}
	if entry.Stage != shaderpack.FragmentStage {
		t.Errorf("wrong stage: %d", entry.Stage)
	}
}

func TestRoundTrip(t *testing.T) {
	pack, err := shaderpack.Open(buildTestPack(t))
	if err != nil {
		t.Fatal(err)
	}

	data, err := pack.Shader("ui.vert")
	if err != nil {
		t.Fatal(err)
	}
	want := bytes.Repeat([]byte("vertex shader body "), 64)
	if !bytes.Equal(data, want) {
		t.Error("decompressed contents do not match what was added")
	}

	data, err = pack.Shader("ui.frag")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fragment shader body" {
		t.Errorf("unexpected contents: %q", data)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := shaderpack.Open(bytes.NewReader([]byte("definitely not a shader pack")))
	if err != shaderpack.ErrFileFormat {
		t.Errorf("expected ErrFileFormat, got %v", err)
	}
}

func TestOpenRejectsTruncated(t *testing.T) {
	full := buildTestPack(t)
	raw := make([]byte, full.Len())
	full.Read(raw)

	_, err := shaderpack.Open(bytes.NewReader(raw[:8]))
	if err == nil {
		t.Error("truncated pack should not open")
	}
}

func TestShaderNotFound(t *testing.T) {
	pack, err := shaderpack.Open(buildTestPack(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := pack.Shader("missing"); err != shaderpack.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenMemoryMapped(t *testing.T) {
	full := buildTestPack(t)
	raw := make([]byte, full.Len())
	full.Read(raw)

	path := filepath.Join(t.TempDir(), "ui.tsp")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := mmap.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	pack, err := shaderpack.Open(r)
	if err != nil {
		t.Fatal(err)
	}

	data, err := pack.Shader("ui.frag")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fragment shader body" {
		t.Errorf("unexpected contents: %q", data)
	}
}
