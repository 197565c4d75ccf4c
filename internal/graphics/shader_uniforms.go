package graphics

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/logging"
)

// introspect rebuilds the uniform and uniform block tables from the freshly
// linked program. Uniforms that live inside a block are only listed there.
func (s *Shader) introspect() {
	s.uniforms = make(map[string]UniformInfo)
	s.uniformBlocks = make(map[string]UniformBlockInfo)
	clear(s.missing)

	active := s.driver.ActiveUniforms(s.gpu.program)
	byIndex := make(map[uint32]ActiveUniform, len(active))
	for _, u := range active {
		byIndex[u.Index] = u
		if u.BlockIndex != -1 {
			continue
		}
		info := UniformInfo{Name: u.Name, Type: u.Type, ArraySize: u.Size, Location: u.Location}
		s.uniforms[u.Name] = info
		// Arrays are reported as "name[0]"; make the bare name resolve too.
		if base, ok := strings.CutSuffix(u.Name, "[0]"); ok {
			info.Name = base
			s.uniforms[base] = info
		}
	}

	for _, b := range s.driver.ActiveUniformBlocks(s.gpu.program) {
		block := UniformBlockInfo{
			Name:           b.Name,
			DefaultBinding: b.Binding,
			CurrentBinding: b.Binding,
			BlockIndex:     b.Index,
			SizeInBytes:    b.DataSize,
			NumVariables:   len(b.UniformIndices),
		}
		for _, idx := range b.UniformIndices {
			u, ok := byIndex[idx]
			if !ok {
				continue
			}
			block.SubUniforms = append(block.SubUniforms, UniformInfo{
				Name: u.Name, Type: u.Type, ArraySize: u.Size, Location: u.Location,
			})
		}
		s.uniformBlocks[b.Name] = block
	}
}

// Uniforms returns a copy of the default-block uniform table.
func (s *Shader) Uniforms() map[string]UniformInfo {
	out := make(map[string]UniformInfo, len(s.uniforms))
	for k, v := range s.uniforms {
		out[k] = v
	}
	return out
}

// UniformBlocks returns a copy of the uniform block table.
func (s *Shader) UniformBlocks() map[string]UniformBlockInfo {
	out := make(map[string]UniformBlockInfo, len(s.uniformBlocks))
	for k, v := range s.uniformBlocks {
		v.SubUniforms = append([]UniformInfo(nil), v.SubUniforms...)
		out[k] = v
	}
	return out
}

func (s *Shader) Uniform(name string) (UniformInfo, bool) {
	u, ok := s.uniforms[name]
	return u, ok
}

func (s *Shader) UniformBlock(name string) (UniformBlockInfo, bool) {
	b, ok := s.uniformBlocks[name]
	return b, ok
}

// location resolves name, including "name[i]" element syntax, to a uniform
// location. Unknown names are logged once each and report false.
func (s *Shader) location(name string) (int32, bool) {
	if s.gpu.program == 0 {
		return 0, false
	}
	if u, ok := s.uniforms[name]; ok && u.Location >= 0 {
		return u.Location, true
	}
	if open := strings.IndexByte(name, '['); open > 0 && strings.HasSuffix(name, "]") {
		idx, err := strconv.Atoi(name[open+1 : len(name)-1])
		if u, ok := s.uniforms[name[:open]]; ok && err == nil && idx >= 0 && idx < int(max(u.ArraySize, 1)) && u.Location >= 0 {
			return u.Location + int32(idx), true
		}
	}
	if _, seen := s.missing[name]; !seen {
		s.missing[name] = struct{}{}
		logging.Debug("Uniform %q not found in shader program %d", name, s.gpu.program)
	}
	return 0, false
}

func (s *Shader) setFloats(name string, components int, values []float32) {
	if loc, ok := s.location(name); ok && len(values) > 0 {
		s.driver.UniformFloat(s.gpu.program, loc, components, values)
	}
}

func (s *Shader) setInts(name string, components int, values []int32) {
	if loc, ok := s.location(name); ok && len(values) > 0 {
		s.driver.UniformInt(s.gpu.program, loc, components, values)
	}
}

func (s *Shader) SetFloat(name string, v float32) { s.setFloats(name, 1, []float32{v}) }

func (s *Shader) SetFloats(name string, v []float32) { s.setFloats(name, 1, v) }

func (s *Shader) SetVec2(name string, v mgl32.Vec2) { s.setFloats(name, 2, v[:]) }

func (s *Shader) SetVec3(name string, v mgl32.Vec3) { s.setFloats(name, 3, v[:]) }

func (s *Shader) SetVec4(name string, v mgl32.Vec4) { s.setFloats(name, 4, v[:]) }

func (s *Shader) SetVec2Array(name string, vs []mgl32.Vec2) {
	flat := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		flat = append(flat, v[:]...)
	}
	s.setFloats(name, 2, flat)
}

func (s *Shader) SetVec3Array(name string, vs []mgl32.Vec3) {
	flat := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		flat = append(flat, v[:]...)
	}
	s.setFloats(name, 3, flat)
}

func (s *Shader) SetVec4Array(name string, vs []mgl32.Vec4) {
	flat := make([]float32, 0, len(vs)*4)
	for _, v := range vs {
		flat = append(flat, v[:]...)
	}
	s.setFloats(name, 4, flat)
}

func (s *Shader) SetInt(name string, v int32) { s.setInts(name, 1, []int32{v}) }

func (s *Shader) SetInts(name string, v []int32) { s.setInts(name, 1, v) }

func (s *Shader) SetIVec2(name string, x, y int32) { s.setInts(name, 2, []int32{x, y}) }

func (s *Shader) SetIVec3(name string, x, y, z int32) { s.setInts(name, 3, []int32{x, y, z}) }

func (s *Shader) SetIVec4(name string, x, y, z, w int32) { s.setInts(name, 4, []int32{x, y, z, w}) }

func (s *Shader) SetUint(name string, v uint32) {
	if loc, ok := s.location(name); ok {
		s.driver.UniformUint(s.gpu.program, loc, 1, []uint32{v})
	}
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Booleans go through the integer setters, as GLSL accepts for bool uniforms.
func (s *Shader) SetBool(name string, v bool) { s.setInts(name, 1, []int32{boolToInt(v)}) }

func (s *Shader) SetBools(name string, vs []bool) {
	ints := make([]int32, len(vs))
	for i, v := range vs {
		ints[i] = boolToInt(v)
	}
	s.setInts(name, 1, ints)
}

func (s *Shader) SetBVec2(name string, x, y bool) {
	s.setInts(name, 2, []int32{boolToInt(x), boolToInt(y)})
}

func (s *Shader) SetBVec3(name string, x, y, z bool) {
	s.setInts(name, 3, []int32{boolToInt(x), boolToInt(y), boolToInt(z)})
}

func (s *Shader) SetBVec4(name string, x, y, z, w bool) {
	s.setInts(name, 4, []int32{boolToInt(x), boolToInt(y), boolToInt(z), boolToInt(w)})
}

// SetMat3 uploads a column-major matrix; transposed asks the driver to
// transpose on upload.
func (s *Shader) SetMat3(name string, m mgl32.Mat3, transposed bool) {
	if loc, ok := s.location(name); ok {
		s.driver.UniformMatrix(s.gpu.program, loc, 3, 3, transposed, m[:])
	}
}

func (s *Shader) SetMat4(name string, m mgl32.Mat4, transposed bool) {
	if loc, ok := s.location(name); ok {
		s.driver.UniformMatrix(s.gpu.program, loc, 4, 4, transposed, m[:])
	}
}

func (s *Shader) SetMat3Array(name string, ms []mgl32.Mat3, transposed bool) {
	loc, ok := s.location(name)
	if !ok || len(ms) == 0 {
		return
	}
	flat := make([]float32, 0, len(ms)*9)
	for _, m := range ms {
		flat = append(flat, m[:]...)
	}
	s.driver.UniformMatrix(s.gpu.program, loc, 3, 3, transposed, flat)
}

func (s *Shader) SetMat4Array(name string, ms []mgl32.Mat4, transposed bool) {
	loc, ok := s.location(name)
	if !ok || len(ms) == 0 {
		return
	}
	flat := make([]float32, 0, len(ms)*16)
	for _, m := range ms {
		flat = append(flat, m[:]...)
	}
	s.driver.UniformMatrix(s.gpu.program, loc, 4, 4, transposed, flat)
}

// BindUniformBlockToSlot points block name at a uniform buffer binding
// slot. Unknown block names are ignored.
func (s *Shader) BindUniformBlockToSlot(name string, slot uint32) {
	block, ok := s.uniformBlocks[name]
	if !ok {
		return
	}
	s.driver.UniformBlockBinding(s.gpu.program, block.BlockIndex, slot)
	block.CurrentBinding = int32(slot)
	s.uniformBlocks[name] = block
}
