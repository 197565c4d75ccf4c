package graphics

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"resonance/internal/logging"
)

var (
	ErrNoStages          = errors.New("shader has no stages")
	ErrIncompleteProgram = errors.New("shader needs both a vertex and a fragment stage")
	ErrUnknownStage      = errors.New("unknown shader stage")
	ErrCompile           = errors.New("shader compile failed")
	ErrLink              = errors.New("shader link failed")
	ErrReleased          = errors.New("shader already released")
)

// ShaderState is where a Shader sits in its compile/link lifecycle.
type ShaderState uint8

const (
	// ShaderEmpty has no stages and no program.
	ShaderEmpty ShaderState = iota
	// ShaderStagesLoaded has stage sources that have not been linked yet,
	// or that changed since the last successful link.
	ShaderStagesLoaded
	// ShaderLinked has a program matching its stage sources, and reflection data.
	ShaderLinked
	// ShaderReleased has given its GPU handles back.
	ShaderReleased
)

func (s ShaderState) String() string {
	switch s {
	case ShaderEmpty:
		return "Empty"
	case ShaderStagesLoaded:
		return "StagesLoaded"
	case ShaderLinked:
		return "Linked"
	case ShaderReleased:
		return "Released"
	}
	return "Unknown"
}

// ShaderSource records where a stage came from so it can be rebuilt.
// Source is the GLSL text, or the file path when IsFilePath is set.
type ShaderSource struct {
	Source     string
	IsFilePath bool
}

// UniformInfo describes one active uniform.
type UniformInfo struct {
	Name      string
	Type      ShaderDataType
	ArraySize int32
	Location  int32
}

// UniformBlockInfo describes one active uniform block. Uniform blocks are
// structures fed from uniform buffers and may be shared between programs.
type UniformBlockInfo struct {
	Name           string
	DefaultBinding int32
	CurrentBinding int32
	BlockIndex     uint32
	SizeInBytes    int32
	NumVariables   int
	SubUniforms    []UniformInfo
}

// shaderHandles is everything on the GPU a Shader owns. It lives outside the
// Shader so the cleanup fallback can reach it after the Shader is collected.
type shaderHandles struct {
	releaser Releaser
	program  uint32
	stages   map[ShaderStage]uint32
}

func releaseShaderHandles(h *shaderHandles) {
	for _, handle := range h.stages {
		h.releaser.DeleteLater(KindShader, handle)
	}
	if h.program != 0 {
		h.releaser.DeleteLater(KindProgram, h.program)
	}
}

// Shader wraps a GPU program: its stage sources, the linked program and the
// uniform / uniform block reflection taken right after linking.
type Shader struct {
	driver  ShaderDriver
	gpu     *shaderHandles
	cleanup runtime.Cleanup

	sources map[ShaderStage]ShaderSource
	dirty   bool

	uniforms      map[string]UniformInfo
	uniformBlocks map[string]UniformBlockInfo
	// names we already reported as missing, so per-frame setters stay quiet
	missing map[string]struct{}

	released bool
}

// NewShader creates an empty shader object.
func NewShader(driver ShaderDriver) *Shader {
	s := &Shader{
		driver:        driver,
		gpu:           &shaderHandles{releaser: driver, stages: make(map[ShaderStage]uint32)},
		sources:       make(map[ShaderStage]ShaderSource),
		uniforms:      make(map[string]UniformInfo),
		uniformBlocks: make(map[string]UniformBlockInfo),
		missing:       make(map[string]struct{}),
	}
	s.cleanup = runtime.AddCleanup(s, releaseShaderHandles, s.gpu)
	return s
}

// NewShaderFromFiles loads every stage in paths and links the result.
func NewShaderFromFiles(driver ShaderDriver, paths map[ShaderStage]string) (*Shader, error) {
	s := NewShader(driver)

	stages := make([]ShaderStage, 0, len(paths))
	for stage := range paths {
		stages = append(stages, stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	for _, stage := range stages {
		if err := s.LoadShaderPartFromFile(paths[stage], stage); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := s.Link(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// LoadShaderPart compiles source as the given stage. On failure the stage is
// not attached and any stage previously loaded for that kind is kept.
func (s *Shader) LoadShaderPart(source string, stage ShaderStage) error {
	return s.loadPart(stage, source, ShaderSource{Source: source})
}

// LoadShaderPartFromFile reads path and compiles it as the given stage.
func (s *Shader) LoadShaderPartFromFile(path string, stage ShaderStage) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s shader: %w", stage, err)
	}
	return s.loadPart(stage, string(data), ShaderSource{Source: path, IsFilePath: true})
}

func (s *Shader) loadPart(stage ShaderStage, code string, origin ShaderSource) error {
	if s.released {
		return ErrReleased
	}
	if stage == StageUnknown || stage > StageGeometry {
		return fmt.Errorf("%w: %d", ErrUnknownStage, stage)
	}

	handle, err := s.compile(stage, code)
	if err != nil {
		return err
	}

	if old, ok := s.gpu.stages[stage]; ok {
		s.driver.DeleteShader(old)
	}
	s.gpu.stages[stage] = handle
	s.sources[stage] = origin
	s.dirty = true
	return nil
}

func (s *Shader) compile(stage ShaderStage, code string) (uint32, error) {
	handle := s.driver.CreateShader(stage)
	if ok, infoLog := s.driver.CompileShader(handle, code); !ok {
		s.driver.DeleteShader(handle)
		logging.Error("Failed to compile %s shader: %s", stage, infoLog)
		return 0, fmt.Errorf("%w: %s stage: %s", ErrCompile, stage, infoLog)
	}
	return handle, nil
}

// ensureCompiled rebuilds stage handles that were released by an earlier
// link, so a single changed stage can be re-linked with the others.
func (s *Shader) ensureCompiled() error {
	for _, stage := range pipelineOrder {
		src, ok := s.sources[stage]
		if !ok {
			continue
		}
		if _, live := s.gpu.stages[stage]; live {
			continue
		}
		code := src.Source
		if src.IsFilePath {
			data, err := os.ReadFile(src.Source)
			if err != nil {
				return fmt.Errorf("read %s shader: %w", stage, err)
			}
			code = string(data)
		}
		handle, err := s.compile(stage, code)
		if err != nil {
			return err
		}
		s.gpu.stages[stage] = handle
	}
	return nil
}

// Link builds a program from the loaded stages. A failed link leaves the
// previously linked program and its reflection data in place.
func (s *Shader) Link() error {
	if s.released {
		return ErrReleased
	}
	if len(s.sources) == 0 {
		return ErrNoStages
	}
	_, hasVertex := s.sources[StageVertex]
	_, hasFragment := s.sources[StageFragment]
	if !hasVertex || !hasFragment {
		return ErrIncompleteProgram
	}
	if err := s.ensureCompiled(); err != nil {
		return err
	}

	program := s.driver.CreateProgram()
	attached := make([]uint32, 0, len(s.gpu.stages))
	for _, stage := range pipelineOrder {
		if handle, ok := s.gpu.stages[stage]; ok {
			s.driver.AttachShader(program, handle)
			attached = append(attached, handle)
		}
	}

	ok, infoLog := s.driver.LinkProgram(program)
	for _, handle := range attached {
		s.driver.DetachShader(program, handle)
	}
	if !ok {
		s.driver.DeleteProgram(program)
		logging.Error("Failed to link shader program: %s", infoLog)
		return fmt.Errorf("%w: %s", ErrLink, infoLog)
	}

	// The stage objects are only needed until the program exists.
	for stage, handle := range s.gpu.stages {
		s.driver.DeleteShader(handle)
		delete(s.gpu.stages, stage)
	}
	if s.gpu.program != 0 {
		s.driver.DeleteProgram(s.gpu.program)
	}
	s.gpu.program = program
	s.dirty = false

	s.introspect()
	return nil
}

// Reload recompiles every recorded stage, re-reading file-based ones, and
// re-links. The current program stays in use if anything fails.
func (s *Shader) Reload() error {
	if s.released {
		return ErrReleased
	}
	for stage, handle := range s.gpu.stages {
		s.driver.DeleteShader(handle)
		delete(s.gpu.stages, stage)
	}
	return s.Link()
}

// Bind makes this program current. It does nothing until a link succeeded.
func (s *Shader) Bind() {
	if s.gpu.program == 0 {
		return
	}
	s.driver.UseProgram(s.gpu.program)
}

// Unbind clears the current program.
func (s *Shader) Unbind() {
	s.driver.UseProgram(0)
}

// Close releases the program and any stage objects. It is safe to call twice.
func (s *Shader) Close() error {
	if s.released {
		return nil
	}
	s.released = true
	s.cleanup.Stop()

	for stage, handle := range s.gpu.stages {
		s.driver.DeleteShader(handle)
		delete(s.gpu.stages, stage)
	}
	if s.gpu.program != 0 {
		s.driver.DeleteProgram(s.gpu.program)
		s.gpu.program = 0
	}
	clear(s.uniforms)
	clear(s.uniformBlocks)
	return nil
}

// Handle is the GPU program handle, 0 before the first successful link.
func (s *Shader) Handle() uint32 { return s.gpu.program }

func (s *Shader) State() ShaderState {
	switch {
	case s.released:
		return ShaderReleased
	case len(s.sources) == 0:
		return ShaderEmpty
	case s.dirty || s.gpu.program == 0:
		return ShaderStagesLoaded
	default:
		return ShaderLinked
	}
}

// NeedsLink reports whether stages changed since the last successful link.
func (s *Shader) NeedsLink() bool { return s.dirty }

// Sources returns a copy of the stage origin records.
func (s *Shader) Sources() map[ShaderStage]ShaderSource {
	out := make(map[ShaderStage]ShaderSource, len(s.sources))
	for k, v := range s.sources {
		out[k] = v
	}
	return out
}

// FilePaths lists the files backing file-based stages.
func (s *Shader) FilePaths() []string {
	var paths []string
	for _, stage := range pipelineOrder {
		if src, ok := s.sources[stage]; ok && src.IsFilePath {
			paths = append(paths, src.Source)
		}
	}
	return paths
}
