// Package graphicstest provides an in-memory graphics.Device for tests.
//
// The fake "compiles" GLSL by scanning declarations: every
// `uniform <type> <name>;` line becomes an active uniform and every
// `uniform <Name> { ... };` block becomes an active uniform block. A source
// containing COMPILE_ERROR fails to compile, and a program with an attached
// stage containing LINK_ERROR fails to link.
package graphicstest

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"resonance/internal/graphics"
)

type shaderObject struct {
	stage  graphics.ShaderStage
	source string
}

type programObject struct {
	attached map[uint32]bool
	linked   bool
	uniforms []graphics.ActiveUniform
	blocks   []graphics.ActiveUniformBlock
	bindings map[uint32]uint32
}

// UniformWrite is one recorded uniform upload.
type UniformWrite struct {
	Program    uint32
	Location   int32
	Kind       string // "float", "int", "uint" or "matrix"
	Components int
	Floats     []float32
	Ints       []int32
	Uints      []uint32
	Transpose  bool
}

// BlitCall is one recorded framebuffer blit.
type BlitCall struct {
	Src, Dst graphics.Rect
	Mask     graphics.BufferFlags
	Filter   graphics.MagFilter
	Read     uint32
	Draw     uint32
}

// DrawCall is one recorded mesh draw and the program bound at the time.
type DrawCall struct {
	Mesh    uint32
	Mode    graphics.Primitive
	Count   int32
	Program uint32
}

// Deferred is a handle queued through DeleteLater.
type Deferred struct {
	Kind   graphics.ObjectKind
	Handle uint32
}

// Device records every call it receives. It is safe for concurrent use so
// cleanups running on the finalizer goroutine can queue deletions.
type Device struct {
	mu     sync.Mutex
	nextID uint32

	shaders      map[uint32]*shaderObject
	programs     map[uint32]*programObject
	framebuffers map[uint32]graphics.FramebufferHandles
	textures     map[uint32][2]int32
	meshes       map[uint32]int32

	// Calls lists method names in call order.
	Calls         []string
	UniformWrites []UniformWrite
	Blits         []BlitCall
	Draws         []DrawCall
	Clears        []graphics.BufferFlags
	Viewports     []graphics.Rect
	Scissors      []graphics.Rect
	ClearColor    [4]float32
	CurrentProg   uint32
	BoundRead     uint32
	BoundDraw     uint32
	BoundTextures map[uint32]uint32
	Pending       []Deferred
	Flushed       []Deferred
	Flushes       int

	// FailFramebuffer makes CreateFramebuffer return an error.
	FailFramebuffer bool
}

func New() *Device {
	return &Device{
		shaders:       make(map[uint32]*shaderObject),
		programs:      make(map[uint32]*programObject),
		framebuffers:  make(map[uint32]graphics.FramebufferHandles),
		textures:      make(map[uint32][2]int32),
		meshes:        make(map[uint32]int32),
		BoundTextures: make(map[uint32]uint32),
	}
}

var _ graphics.Device = (*Device)(nil)

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) record(name string) {
	d.Calls = append(d.Calls, name)
}

// CallCount counts how often method name was called.
func (d *Device) CallCount(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// ResetCalls clears the recorded call lists but keeps GPU objects alive.
func (d *Device) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = nil
	d.UniformWrites = nil
	d.Blits = nil
	d.Draws = nil
	d.Clears = nil
	d.Viewports = nil
	d.Scissors = nil
}

func (d *Device) LiveShaders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.shaders)
}

func (d *Device) LivePrograms() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.programs)
}

func (d *Device) LiveFramebuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.framebuffers)
}

func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

// IsProgram reports whether handle names a live program.
func (d *Device) IsProgram(handle uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.programs[handle]
	return ok
}

// BlockBinding returns the binding slot set for a program's block index.
func (d *Device) BlockBinding(program, blockIndex uint32) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[program]
	if !ok {
		return 0, false
	}
	b, ok := p.bindings[blockIndex]
	return b, ok
}

// Shaders

func (d *Device) CreateShader(stage graphics.ShaderStage) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateShader")
	h := d.id()
	d.shaders[h] = &shaderObject{stage: stage}
	return h
}

func (d *Device) CompileShader(handle uint32, source string) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CompileShader")
	sh, ok := d.shaders[handle]
	if !ok {
		return false, "invalid shader handle"
	}
	sh.source = source
	if strings.Contains(source, "COMPILE_ERROR") {
		return false, "0:1: error: syntax error"
	}
	return true, ""
}

func (d *Device) DeleteShader(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteShader")
	delete(d.shaders, handle)
}

func (d *Device) CreateProgram() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateProgram")
	h := d.id()
	d.programs[h] = &programObject{attached: make(map[uint32]bool), bindings: make(map[uint32]uint32)}
	return h
}

func (d *Device) AttachShader(program, shader uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("AttachShader")
	if p, ok := d.programs[program]; ok {
		p.attached[shader] = true
	}
}

func (d *Device) DetachShader(program, shader uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DetachShader")
	if p, ok := d.programs[program]; ok {
		delete(p.attached, shader)
	}
}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("LinkProgram")
	p, ok := d.programs[program]
	if !ok {
		return false, "invalid program handle"
	}
	handles := make([]uint32, 0, len(p.attached))
	for h := range p.attached {
		handles = append(handles, h)
	}
	slices.Sort(handles)
	var sources []string
	for _, h := range handles {
		sh := d.shaders[h]
		if sh == nil {
			continue
		}
		if strings.Contains(sh.source, "LINK_ERROR") {
			return false, "error: unresolved symbol"
		}
		sources = append(sources, sh.source)
	}
	p.uniforms, p.blocks = reflect(sources)
	p.linked = true
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteProgram")
	delete(d.programs, program)
}

func (d *Device) UseProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UseProgram")
	d.CurrentProg = program
}

func (d *Device) ActiveUniforms(program uint32) []graphics.ActiveUniform {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.programs[program]; ok {
		return append([]graphics.ActiveUniform(nil), p.uniforms...)
	}
	return nil
}

func (d *Device) ActiveUniformBlocks(program uint32) []graphics.ActiveUniformBlock {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.programs[program]; ok {
		return append([]graphics.ActiveUniformBlock(nil), p.blocks...)
	}
	return nil
}

func (d *Device) UniformBlockBinding(program, blockIndex, binding uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UniformBlockBinding")
	if p, ok := d.programs[program]; ok {
		p.bindings[blockIndex] = binding
	}
}

func (d *Device) UniformFloat(program uint32, location int32, components int, values []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UniformFloat")
	d.UniformWrites = append(d.UniformWrites, UniformWrite{
		Program: program, Location: location, Kind: "float", Components: components,
		Floats: append([]float32(nil), values...),
	})
}

func (d *Device) UniformInt(program uint32, location int32, components int, values []int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UniformInt")
	d.UniformWrites = append(d.UniformWrites, UniformWrite{
		Program: program, Location: location, Kind: "int", Components: components,
		Ints: append([]int32(nil), values...),
	})
}

func (d *Device) UniformUint(program uint32, location int32, components int, values []uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UniformUint")
	d.UniformWrites = append(d.UniformWrites, UniformWrite{
		Program: program, Location: location, Kind: "uint", Components: components,
		Uints: append([]uint32(nil), values...),
	})
}

func (d *Device) UniformMatrix(program uint32, location int32, cols, rows int, transpose bool, values []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UniformMatrix")
	d.UniformWrites = append(d.UniformWrites, UniformWrite{
		Program: program, Location: location, Kind: "matrix", Components: cols * rows,
		Floats: append([]float32(nil), values...), Transpose: transpose,
	})
}

// Framebuffers

func (d *Device) CreateFramebuffer(width, height int32, desc graphics.FramebufferDesc) (graphics.FramebufferHandles, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateFramebuffer")
	if d.FailFramebuffer {
		return graphics.FramebufferHandles{}, fmt.Errorf("framebuffer incomplete")
	}
	h := graphics.FramebufferHandles{FBO: d.id(), Color: d.id()}
	if desc.Depth {
		h.DepthStencil = d.id()
	}
	d.framebuffers[h.FBO] = h
	return h, nil
}

func (d *Device) DeleteFramebuffer(h graphics.FramebufferHandles) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteFramebuffer")
	delete(d.framebuffers, h.FBO)
}

func (d *Device) BindFramebuffer(binding graphics.FramebufferBinding, fbo uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindFramebuffer")
	switch binding {
	case graphics.BindRead:
		d.BoundRead = fbo
	case graphics.BindDraw:
		d.BoundDraw = fbo
	default:
		d.BoundRead, d.BoundDraw = fbo, fbo
	}
}

func (d *Device) BlitFramebuffer(src, dst graphics.Rect, mask graphics.BufferFlags, filter graphics.MagFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BlitFramebuffer")
	d.Blits = append(d.Blits, BlitCall{Src: src, Dst: dst, Mask: mask, Filter: filter, Read: d.BoundRead, Draw: d.BoundDraw})
}

// Textures

func (d *Device) CreateTexture2D(width, height int32, rgba []byte, desc graphics.TextureDesc) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateTexture2D")
	h := d.id()
	d.textures[h] = [2]int32{width, height}
	return h
}

func (d *Device) BindTexture(slot, texture uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindTexture")
	d.BoundTextures[slot] = texture
}

func (d *Device) DeleteTexture(texture uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteTexture")
	delete(d.textures, texture)
}

// Meshes

func (d *Device) CreateMesh(vertices []float32, attribs []int32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateMesh")
	h := d.id()
	d.meshes[h] = int32(len(vertices))
	return h
}

func (d *Device) DrawMesh(mesh uint32, mode graphics.Primitive, first, count int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DrawMesh")
	d.Draws = append(d.Draws, DrawCall{Mesh: mesh, Mode: mode, Count: count, Program: d.CurrentProg})
}

func (d *Device) DeleteMesh(mesh uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteMesh")
	delete(d.meshes, mesh)
}

func (d *Device) LiveMeshes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.meshes)
}

// Frame state

func (d *Device) Clear(mask graphics.BufferFlags) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Clear")
	d.Clears = append(d.Clears, mask)
}

func (d *Device) SetClearColor(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ClearColor = [4]float32{r, g, b, a}
}

func (d *Device) Viewport(r graphics.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Viewport")
	d.Viewports = append(d.Viewports, r)
}

func (d *Device) Scissor(r graphics.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Scissor")
	d.Scissors = append(d.Scissors, r)
}

func (d *Device) DeleteLater(kind graphics.ObjectKind, handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Pending = append(d.Pending, Deferred{Kind: kind, Handle: handle})
}

func (d *Device) FlushDeletes() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("FlushDeletes")
	d.Flushes++
	for _, p := range d.Pending {
		switch p.Kind {
		case graphics.KindShader:
			delete(d.shaders, p.Handle)
		case graphics.KindProgram:
			delete(d.programs, p.Handle)
		case graphics.KindFramebuffer:
			delete(d.framebuffers, p.Handle)
		case graphics.KindTexture:
			delete(d.textures, p.Handle)
		case graphics.KindMesh:
			delete(d.meshes, p.Handle)
		}
	}
	d.Flushed = append(d.Flushed, d.Pending...)
	d.Pending = nil
}

var (
	uniformLine = regexp.MustCompile(`^\s*uniform\s+(\w+)\s+(\w+)(?:\[(\d+)\])?\s*;`)
	blockStart  = regexp.MustCompile(`^\s*(?:layout\s*\(([^)]*)\)\s*)?uniform\s+(\w+)\s*\{?\s*$`)
	memberLine  = regexp.MustCompile(`^\s*(\w+)\s+(\w+)(?:\[(\d+)\])?\s*;`)
	bindingExpr = regexp.MustCompile(`binding\s*=\s*(\d+)`)
)

var glslTypes = map[string]graphics.ShaderDataType{
	"float":           graphics.TypeFloat,
	"vec2":            graphics.TypeFloat2,
	"vec3":            graphics.TypeFloat3,
	"vec4":            graphics.TypeFloat4,
	"double":          graphics.TypeDouble,
	"int":             graphics.TypeInt,
	"ivec2":           graphics.TypeInt2,
	"ivec3":           graphics.TypeInt3,
	"ivec4":           graphics.TypeInt4,
	"uint":            graphics.TypeUint,
	"uvec2":           graphics.TypeUint2,
	"uvec3":           graphics.TypeUint3,
	"uvec4":           graphics.TypeUint4,
	"bool":            graphics.TypeBool,
	"bvec2":           graphics.TypeBool2,
	"bvec3":           graphics.TypeBool3,
	"bvec4":           graphics.TypeBool4,
	"mat2":            graphics.TypeMat2,
	"mat3":            graphics.TypeMat3,
	"mat4":            graphics.TypeMat4,
	"sampler2D":       graphics.TypeSampler2D,
	"sampler3D":       graphics.TypeSampler3D,
	"samplerCube":     graphics.TypeSamplerCube,
	"sampler2DShadow": graphics.TypeSampler2DShadow,
}

func glslType(name string) graphics.ShaderDataType {
	if t, ok := glslTypes[name]; ok {
		return t
	}
	return graphics.TypeUnknown
}

// reflect builds the active uniform and block lists the way a driver
// would: uniforms sorted by first appearance, arrays reported as "name[0]",
// block members with location -1.
func reflect(sources []string) ([]graphics.ActiveUniform, []graphics.ActiveUniformBlock) {
	var (
		uniforms []graphics.ActiveUniform
		blocks   []graphics.ActiveUniformBlock
		seen     = make(map[string]bool)
		location int32
	)

	add := func(typ, name, count string, blockIndex int32) uint32 {
		size := int32(1)
		if count != "" {
			n, _ := strconv.Atoi(count)
			size = int32(n)
			name += "[0]"
		}
		u := graphics.ActiveUniform{
			Index:      uint32(len(uniforms)),
			Name:       name,
			Type:       glslType(typ),
			Size:       size,
			Location:   -1,
			BlockIndex: blockIndex,
		}
		if blockIndex == -1 {
			u.Location = location
			location += size
		}
		uniforms = append(uniforms, u)
		return u.Index
	}

	for _, src := range sources {
		var current *graphics.ActiveUniformBlock
		for _, line := range strings.Split(src, "\n") {
			if current != nil {
				if strings.Contains(line, "}") {
					blocks = append(blocks, *current)
					current = nil
					continue
				}
				if m := memberLine.FindStringSubmatch(line); m != nil {
					idx := add(m[1], m[2], m[3], int32(len(blocks)))
					current.UniformIndices = append(current.UniformIndices, idx)
					current.DataSize += 16
				}
				continue
			}
			if m := uniformLine.FindStringSubmatch(line); m != nil {
				if seen[m[2]] {
					continue
				}
				seen[m[2]] = true
				add(m[1], m[2], m[3], -1)
				continue
			}
			if m := blockStart.FindStringSubmatch(line); m != nil {
				if seen[m[2]] {
					continue
				}
				seen[m[2]] = true
				current = &graphics.ActiveUniformBlock{Index: uint32(len(blocks)), Name: m[2]}
				if b := bindingExpr.FindStringSubmatch(m[1]); b != nil {
					n, _ := strconv.Atoi(b[1])
					current.Binding = int32(n)
				}
			}
		}
	}
	return uniforms, blocks
}
