package graphics_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/graphics"
	"resonance/internal/graphics/graphicstest"
)

const testVertex = `#version 410 core
uniform mat4 uModel;
uniform mat4 uViewProj;
layout(std140, binding = 2) uniform Lights {
    vec4 color;
    vec4 direction;
};
void main() {}
`

const testFragment = `#version 410 core
uniform vec4 uTint;
uniform sampler2D uTex;
uniform float uWeights[4];
void main() {}
`

func linkedShader(t *testing.T, dev *graphicstest.Device) *graphics.Shader {
	t.Helper()
	s := graphics.NewShader(dev)
	if err := s.LoadShaderPart(testVertex, graphics.StageVertex); err != nil {
		t.Fatalf("vertex: %v", err)
	}
	if err := s.LoadShaderPart(testFragment, graphics.StageFragment); err != nil {
		t.Fatalf("fragment: %v", err)
	}
	if err := s.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}
	return s
}

func TestLinkWithoutStagesFails(t *testing.T) {
	dev := graphicstest.New()
	s := graphics.NewShader(dev)

	if err := s.Link(); !errors.Is(err, graphics.ErrNoStages) {
		t.Fatalf("Link() error = %v, want ErrNoStages", err)
	}
	if len(s.Uniforms()) != 0 || len(s.UniformBlocks()) != 0 {
		t.Errorf("expected empty reflection maps, got %d uniforms, %d blocks", len(s.Uniforms()), len(s.UniformBlocks()))
	}
	if s.Handle() != 0 {
		t.Errorf("Handle() = %d, want 0", s.Handle())
	}
	if s.State() != graphics.ShaderEmpty {
		t.Errorf("State() = %v, want Empty", s.State())
	}
	if dev.CallCount("CreateProgram") != 0 {
		t.Errorf("no program should be created")
	}
}

func TestLinkRequiresVertexAndFragment(t *testing.T) {
	dev := graphicstest.New()
	s := graphics.NewShader(dev)
	if err := s.LoadShaderPart(testVertex, graphics.StageVertex); err != nil {
		t.Fatal(err)
	}
	if err := s.Link(); !errors.Is(err, graphics.ErrIncompleteProgram) {
		t.Fatalf("Link() error = %v, want ErrIncompleteProgram", err)
	}
	if s.State() != graphics.ShaderStagesLoaded {
		t.Errorf("State() = %v, want StagesLoaded", s.State())
	}
}

func TestUnknownStageRejected(t *testing.T) {
	s := graphics.NewShader(graphicstest.New())
	if err := s.LoadShaderPart(testVertex, graphics.StageUnknown); !errors.Is(err, graphics.ErrUnknownStage) {
		t.Fatalf("error = %v, want ErrUnknownStage", err)
	}
}

func TestLinkIntrospectsUniforms(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)

	if s.State() != graphics.ShaderLinked || s.NeedsLink() {
		t.Fatalf("State() = %v NeedsLink = %v after link", s.State(), s.NeedsLink())
	}
	if dev.LiveShaders() != 0 {
		t.Errorf("stage objects should be released after link, %d alive", dev.LiveShaders())
	}

	uniforms := s.Uniforms()
	for _, name := range []string{"uModel", "uViewProj", "uTint", "uTex", "uWeights", "uWeights[0]"} {
		u, ok := uniforms[name]
		if !ok {
			t.Errorf("uniform %q missing", name)
			continue
		}
		if u.Location < 0 {
			t.Errorf("uniform %q location = %d, want >= 0", name, u.Location)
		}
	}
	if _, ok := uniforms["color"]; ok {
		t.Errorf("block member leaked into default-block uniforms")
	}
	if w := uniforms["uWeights"]; w.ArraySize != 4 || w.Type != graphics.TypeFloat {
		t.Errorf("uWeights = %+v", w)
	}
	if u := uniforms["uTex"]; !u.Type.IsSampler() {
		t.Errorf("uTex type = %v, want a sampler", u.Type)
	}

	block, ok := s.UniformBlock("Lights")
	if !ok {
		t.Fatalf("block Lights missing")
	}
	if block.DefaultBinding != 2 || block.CurrentBinding != 2 {
		t.Errorf("bindings = %d/%d, want 2/2", block.DefaultBinding, block.CurrentBinding)
	}
	if block.NumVariables != 2 || len(block.SubUniforms) != 2 {
		t.Fatalf("block variables = %d (%d sub uniforms), want 2", block.NumVariables, len(block.SubUniforms))
	}
	if block.SubUniforms[0].Name != "color" || block.SubUniforms[1].Name != "direction" {
		t.Errorf("sub uniforms = %+v", block.SubUniforms)
	}
	if block.SizeInBytes != 32 {
		t.Errorf("SizeInBytes = %d, want 32", block.SizeInBytes)
	}
}

func TestUnknownUniformSkipsDriver(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)
	dev.ResetCalls()

	s.SetFloat("doesNotExist", 1)
	s.SetFloat("doesNotExist", 2)
	s.SetMat4("alsoMissing", mgl32.Ident4(), false)
	s.SetFloat("uWeights[9]", 1)
	s.SetFloat("uWeights[4294967295]", 1)
	s.SetFloat("uWeights[-1]", 1)

	if len(dev.UniformWrites) != 0 {
		t.Fatalf("expected no uniform writes, got %+v", dev.UniformWrites)
	}
}

func TestSettersWriteResolvedLocation(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)
	dev.ResetCalls()

	model, _ := s.Uniform("uModel")
	tint, _ := s.Uniform("uTint")
	weights, _ := s.Uniform("uWeights")

	s.SetMat4("uModel", mgl32.Translate3D(1, 2, 3), true)
	s.SetVec4("uTint", mgl32.Vec4{1, 0.5, 0.25, 1})
	s.SetFloat("uWeights[2]", 0.75)
	s.SetBool("uTex", true)

	if len(dev.UniformWrites) != 4 {
		t.Fatalf("got %d writes, want 4", len(dev.UniformWrites))
	}
	w := dev.UniformWrites[0]
	if w.Kind != "matrix" || w.Location != model.Location || !w.Transpose || len(w.Floats) != 16 || w.Floats[12] != 1 {
		t.Errorf("SetMat4 write = %+v", w)
	}
	w = dev.UniformWrites[1]
	if w.Kind != "float" || w.Location != tint.Location || w.Components != 4 {
		t.Errorf("SetVec4 write = %+v", w)
	}
	w = dev.UniformWrites[2]
	if w.Location != weights.Location+2 || w.Floats[0] != 0.75 {
		t.Errorf("array element write = %+v, base location %d", w, weights.Location)
	}
	w = dev.UniformWrites[3]
	if w.Kind != "int" || w.Ints[0] != 1 {
		t.Errorf("SetBool write = %+v", w)
	}
	for _, w := range dev.UniformWrites {
		if w.Program != s.Handle() {
			t.Errorf("write targeted program %d, want %d", w.Program, s.Handle())
		}
	}
	if dev.CallCount("UseProgram") != 0 {
		t.Errorf("setters must not bind the program")
	}
}

func TestFailedRelinkKeepsPreviousProgram(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)
	prev := s.Handle()

	broken := strings.Replace(testFragment, "void main", "// LINK_ERROR\nuniform float uExtra;\nvoid main", 1)
	if err := s.LoadShaderPart(broken, graphics.StageFragment); err != nil {
		t.Fatalf("compile should succeed: %v", err)
	}
	if !s.NeedsLink() {
		t.Fatalf("NeedsLink() = false after loading a new stage")
	}

	if err := s.Link(); !errors.Is(err, graphics.ErrLink) {
		t.Fatalf("Link() error = %v, want ErrLink", err)
	}
	if s.Handle() != prev || !dev.IsProgram(prev) {
		t.Errorf("previous program %d should remain active, got %d", prev, s.Handle())
	}
	if dev.LivePrograms() != 1 {
		t.Errorf("failed program should be deleted, %d programs alive", dev.LivePrograms())
	}
	if _, ok := s.Uniform("uExtra"); ok {
		t.Errorf("reflection should still describe the previous program")
	}
	if _, ok := s.Uniform("uTint"); !ok {
		t.Errorf("previous uniforms lost after failed link")
	}

	s.Bind()
	if dev.CurrentProg != prev {
		t.Errorf("Bind() used %d, want %d", dev.CurrentProg, prev)
	}
}

func TestCompileFailureKeepsPreviousStage(t *testing.T) {
	dev := graphicstest.New()
	s := graphics.NewShader(dev)
	if err := s.LoadShaderPart(testVertex, graphics.StageVertex); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadShaderPart(testFragment, graphics.StageFragment); err != nil {
		t.Fatal(err)
	}

	if err := s.LoadShaderPart("COMPILE_ERROR", graphics.StageFragment); !errors.Is(err, graphics.ErrCompile) {
		t.Fatalf("error = %v, want ErrCompile", err)
	}
	if got := s.Sources()[graphics.StageFragment].Source; got != testFragment {
		t.Errorf("fragment source replaced by failed compile")
	}
	if dev.LiveShaders() != 2 {
		t.Errorf("failed stage object should be deleted, %d alive", dev.LiveShaders())
	}
	if err := s.Link(); err != nil {
		t.Fatalf("Link() with previous stages: %v", err)
	}
}

func TestRelinkRecompilesRecordedStages(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)
	first := s.Handle()

	fragment := strings.Replace(testFragment, "void main", "uniform float uTime;\nvoid main", 1)
	if err := s.LoadShaderPart(fragment, graphics.StageFragment); err != nil {
		t.Fatal(err)
	}
	if err := s.Link(); err != nil {
		t.Fatalf("relink: %v", err)
	}
	if s.Handle() == first || dev.IsProgram(first) {
		t.Errorf("old program %d should be replaced and deleted", first)
	}
	if _, ok := s.Uniform("uTime"); !ok {
		t.Errorf("new uniform missing after relink")
	}
	if _, ok := s.Uniform("uModel"); !ok {
		t.Errorf("vertex uniforms missing, vertex stage not recompiled")
	}
}

func TestBindUniformBlockToSlot(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)
	dev.ResetCalls()

	s.BindUniformBlockToSlot("Missing", 3)
	if dev.CallCount("UniformBlockBinding") != 0 {
		t.Fatalf("unknown block should be ignored")
	}

	s.BindUniformBlockToSlot("Lights", 5)
	block, _ := s.UniformBlock("Lights")
	if block.CurrentBinding != 5 || block.DefaultBinding != 2 {
		t.Errorf("bindings = current %d default %d", block.CurrentBinding, block.DefaultBinding)
	}
	if slot, ok := dev.BlockBinding(s.Handle(), block.BlockIndex); !ok || slot != 5 {
		t.Errorf("driver binding = %d (%v), want 5", slot, ok)
	}

	// Returned maps are copies.
	blocks := s.UniformBlocks()
	b := blocks["Lights"]
	b.CurrentBinding = 9
	blocks["Lights"] = b
	if again, _ := s.UniformBlock("Lights"); again.CurrentBinding != 5 {
		t.Errorf("UniformBlocks() leaked internal state")
	}
}

func TestReloadRereadsFiles(t *testing.T) {
	dir := t.TempDir()
	vsPath := filepath.Join(dir, "basic.vert")
	fsPath := filepath.Join(dir, "basic.frag")
	if err := os.WriteFile(vsPath, []byte(testVertex), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fsPath, []byte(testFragment), 0o644); err != nil {
		t.Fatal(err)
	}

	dev := graphicstest.New()
	s, err := graphics.NewShaderFromFiles(dev, map[graphics.ShaderStage]string{
		graphics.StageVertex:   vsPath,
		graphics.StageFragment: fsPath,
	})
	if err != nil {
		t.Fatalf("NewShaderFromFiles: %v", err)
	}
	if src := s.Sources()[graphics.StageFragment]; !src.IsFilePath || src.Source != fsPath {
		t.Errorf("fragment source record = %+v", src)
	}
	if paths := s.FilePaths(); len(paths) != 2 || paths[0] != vsPath {
		t.Errorf("FilePaths() = %v", paths)
	}

	updated := strings.Replace(testFragment, "void main", "uniform float uTime;\nvoid main", 1)
	if err := os.WriteFile(fsPath, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := s.Uniform("uTime"); !ok {
		t.Errorf("Reload did not pick up the edited file")
	}
	if dev.LivePrograms() != 1 {
		t.Errorf("%d programs alive after reload, want 1", dev.LivePrograms())
	}
}

func TestNewShaderFromFilesMissingFile(t *testing.T) {
	dev := graphicstest.New()
	_, err := graphics.NewShaderFromFiles(dev, map[graphics.ShaderStage]string{
		graphics.StageVertex: filepath.Join(t.TempDir(), "nope.vert"),
	})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if dev.LivePrograms() != 0 || dev.LiveShaders() != 0 {
		t.Errorf("leaked GPU objects on failure")
	}
}

func TestCloseReleasesProgram(t *testing.T) {
	dev := graphicstest.New()
	s := linkedShader(t, dev)

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if dev.LivePrograms() != 0 {
		t.Errorf("%d programs alive after Close", dev.LivePrograms())
	}
	if s.State() != graphics.ShaderReleased {
		t.Errorf("State() = %v, want Released", s.State())
	}
	if err := s.Link(); !errors.Is(err, graphics.ErrReleased) {
		t.Errorf("Link after Close = %v, want ErrReleased", err)
	}
	dev.ResetCalls()
	s.SetFloat("uTint", 1)
	s.Bind()
	if len(dev.Calls) != 0 {
		t.Errorf("released shader touched the driver: %v", dev.Calls)
	}
}

func TestBindBeforeLinkIsNoop(t *testing.T) {
	dev := graphicstest.New()
	s := graphics.NewShader(dev)
	s.Bind()
	if dev.CallCount("UseProgram") != 0 {
		t.Errorf("Bind on unlinked shader called UseProgram")
	}
}
