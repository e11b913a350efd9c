// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack_test

import (
	"bytes"
	"testing"

	"github.com/gobuffalo/packr"

	"github.com/titan3d/titan/utility/shaderpack"
)

// Fixture resources
var (
	StaticResources packr.Box
)

func init() {
	StaticResources = packr.NewBox("./testdata")
}

func TestBuildFromFixtures(t *testing.T) {
	vert, err := StaticResources.Find("sample.vert")
	if err != nil {
		t.Fatal(err)
	}
	frag, err := StaticResources.Find("sample.frag")
	if err != nil {
		t.Fatal(err)
	}

	builder := shaderpack.NewBuilder(shaderpack.Header{Version: 1})
	if err := builder.Add("ui.vert", shaderpack.VertexStage, vert); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("ui.frag", shaderpack.FragmentStage, frag); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := builder.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	pack, err := shaderpack.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	got, err := pack.Shader("ui.vert")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, vert) {
		t.Error("vertex fixture did not survive the round trip")
	}

	got, err = pack.Shader("ui.frag")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, frag) {
		t.Error("fragment fixture did not survive the round trip")
	}
}
