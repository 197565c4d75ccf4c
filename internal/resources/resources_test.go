package resources

import (
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"resonance/internal/graphics"
	"resonance/internal/graphics/graphicstest"
)

const (
	shaderGUID = "6f1c2a7e-0d5b-4c1e-9a57-3b2f5e8d9c10"
	meshGUID   = "0b8e4f2d-7c61-4e0a-b2d4-91f3a6c5e7d8"
	fbGUID     = "c3d9a1b7-52e4-4f86-8a0c-7e1b2d3f4a5b"
)

const vertexSrc = `#version 410 core
uniform mat4 uMVP;
void main() {}
`

const fragmentSrc = `#version 410 core
uniform vec4 uColor;
void main() {}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifestBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "basic.vert"), vertexSrc)
	writeFile(t, filepath.Join(dir, "shaders", "basic.frag"), fragmentSrc)
	manifest := filepath.Join(dir, "level1-manifest.json")
	writeFile(t, manifest, `{
		"Shader": {"`+shaderGUID+`": {"vertex": "shaders/basic.vert", "fragment": "shaders/basic.frag"}},
		"Mesh": {"`+meshGUID+`": {"primitive": "cube"}},
		"Framebuffer": {"`+fbGUID+`": {"width": 64, "height": 32, "depth": true}}
	}`)

	dev := graphicstest.New()
	m := NewManager()
	RegisterBuiltins(m, dev)

	if err := m.LoadManifest(manifest); err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	v, ok := m.Get(uuid.MustParse(shaderGUID))
	if !ok {
		t.Fatal("shader missing")
	}
	sh, ok := v.(*graphics.Shader)
	if !ok {
		t.Fatalf("shader resource is %T", v)
	}
	if _, ok := sh.Uniform("uMVP"); !ok {
		t.Error("shader not linked from manifest paths")
	}

	fb, _ := m.Get(uuid.MustParse(fbGUID))
	if f := fb.(*graphics.Framebuffer); f.Width() != 64 || f.Height() != 32 {
		t.Errorf("framebuffer %dx%d", f.Width(), f.Height())
	}

	// Loading again keeps the existing objects.
	if err := m.LoadManifest(manifest); err != nil {
		t.Fatal(err)
	}
	again, _ := m.Get(uuid.MustParse(shaderGUID))
	if again != v {
		t.Error("reloading the manifest replaced a live resource")
	}

	var shaders int
	m.Each(TypeShader, func(id uuid.UUID, value any) { shaders++ })
	if shaders != 1 {
		t.Errorf("Each(Shader) visited %d", shaders)
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if dev.LivePrograms() != 0 || dev.LiveMeshes() != 0 || dev.LiveFramebuffers() != 0 {
		t.Errorf("Close left GPU objects alive")
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	m := NewManager()
	m.RegisterType("Thing", func(ctx LoadContext, raw json.RawMessage) (any, error) {
		return string(raw), nil
	})

	if err := m.LoadManifest(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing manifest error = %v", err)
	}

	unknown := filepath.Join(dir, "unknown.json")
	writeFile(t, unknown, `{"Sound": {"`+meshGUID+`": {}}}`)
	if err := m.LoadManifest(unknown); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v", err)
	}

	badGUID := filepath.Join(dir, "bad.json")
	writeFile(t, badGUID, `{"Thing": {"not-a-guid": {}}}`)
	if err := m.LoadManifest(badGUID); err == nil {
		t.Error("expected error for malformed GUID")
	}

	garbage := filepath.Join(dir, "garbage.json")
	writeFile(t, garbage, `{`)
	if err := m.LoadManifest(garbage); err == nil {
		t.Error("expected parse error")
	}
}

type closeCounter struct{ closed *int }

func (c closeCounter) Close() error {
	*c.closed++
	return nil
}

func TestLoadManifestAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	m := NewManager()
	closed := 0
	m.RegisterType("Thing", func(ctx LoadContext, raw json.RawMessage) (any, error) {
		return closeCounter{closed: &closed}, nil
	})
	m.RegisterType("Zap", func(ctx LoadContext, raw json.RawMessage) (any, error) {
		return nil, errors.New("compile failed")
	})

	path := filepath.Join(dir, "partial.json")
	writeFile(t, path, `{"Thing": {"`+meshGUID+`": {}}, "Zap": {"`+shaderGUID+`": {}}}`)
	if err := m.LoadManifest(path); err == nil {
		t.Fatal("expected the Zap entry to fail")
	}
	if m.Len() != 0 {
		t.Errorf("%d resources kept from a failed manifest", m.Len())
	}
	if closed != 1 {
		t.Errorf("built Thing closed %d times, want 1", closed)
	}
}

func TestResolveRelativePaths(t *testing.T) {
	ctx := LoadContext{Dir: "/game/assets"}
	if got := ctx.Resolve("shaders/a.vert"); got != filepath.Join("/game/assets", "shaders/a.vert") {
		t.Errorf("Resolve relative = %q", got)
	}
	if got := ctx.Resolve("/abs/a.vert"); got != "/abs/a.vert" {
		t.Errorf("Resolve absolute = %q", got)
	}
}

func TestTexturesShareUploads(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	f, err := os.Create(filepath.Join(dir, "grid.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	const (
		plainA = "11111111-1111-4111-8111-111111111111"
		plainB = "22222222-2222-4222-8222-222222222222"
		smooth = "33333333-3333-4333-8333-333333333333"
	)
	manifest := filepath.Join(dir, "level-manifest.json")
	writeFile(t, manifest, `{"Texture2D": {
		"`+plainA+`": {"path": "grid.png"},
		"`+plainB+`": {"path": "grid.png", "filter": "nearest"},
		"`+smooth+`": {"path": "grid.png", "filter": "linear"}
	}}`)

	dev := graphicstest.New()
	m := NewManager()
	RegisterBuiltins(m, dev)
	if err := m.LoadManifest(manifest); err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	a, _ := m.Get(uuid.MustParse(plainA))
	b, _ := m.Get(uuid.MustParse(plainB))
	c, _ := m.Get(uuid.MustParse(smooth))
	if a != b {
		t.Error("identical default textures were uploaded twice")
	}
	if a == c {
		t.Error("a linear texture reused the nearest upload")
	}
	if n := dev.CallCount("CreateTexture2D"); n != 2 {
		t.Errorf("CreateTexture2D called %d times, want 2", n)
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if n := dev.LiveTextures(); n != 0 {
		t.Errorf("%d textures alive after Close", n)
	}
}
