// Package opengl implements graphics.Device on OpenGL 4.1 core through go-gl.
// Every method must be called on the thread that owns the GL context, except
// DeleteLater which only queues.
package opengl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"resonance/internal/graphics"
	"resonance/internal/logging"
)

type deferred struct {
	kind   graphics.ObjectKind
	handle uint32
}

// Device is the GL backend. The zero value is not usable; call New after a
// context is current.
type Device struct {
	mu      sync.Mutex
	pending []deferred

	// vertex buffers behind each vertex array
	meshBuffers map[uint32]uint32
	// framebuffer attachments keyed by framebuffer object
	attachments map[uint32]graphics.FramebufferHandles
}

// New loads GL function pointers for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	logging.Info("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.1, 0.1, 0.12, 1.0)

	return &Device{
		meshBuffers: make(map[uint32]uint32),
		attachments: make(map[uint32]graphics.FramebufferHandles),
	}, nil
}

var _ graphics.Device = (*Device)(nil)

// Shaders

var stageEnums = map[graphics.ShaderStage]uint32{
	graphics.StageVertex:      gl.VERTEX_SHADER,
	graphics.StageFragment:    gl.FRAGMENT_SHADER,
	graphics.StageTessControl: gl.TESS_CONTROL_SHADER,
	graphics.StageTessEval:    gl.TESS_EVALUATION_SHADER,
	graphics.StageGeometry:    gl.GEOMETRY_SHADER,
}

func (d *Device) CreateShader(stage graphics.ShaderStage) uint32 {
	return gl.CreateShader(stageEnums[stage])
}

func (d *Device) CompileShader(handle uint32, source string) (bool, string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(log))
		return false, strings.TrimRight(log, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteShader(handle uint32) { gl.DeleteShader(handle) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (d *Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return false, strings.TrimRight(log, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) ActiveUniforms(program uint32) []graphics.ActiveUniform {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 {
		return nil
	}

	indices := make([]uint32, count)
	for i := range indices {
		indices[i] = uint32(i)
	}
	blockIndices := make([]int32, count)
	gl.GetActiveUniformsiv(program, count, &indices[0], gl.UNIFORM_BLOCK_INDEX, &blockIndices[0])

	out := make([]graphics.ActiveUniform, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, i, maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])

		location := int32(-1)
		if blockIndices[i] == -1 {
			location = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
		}
		out = append(out, graphics.ActiveUniform{
			Index:      i,
			Name:       name,
			Type:       dataType(xtype),
			Size:       size,
			Location:   location,
			BlockIndex: blockIndices[i],
		})
	}
	return out
}

func (d *Device) ActiveUniformBlocks(program uint32) []graphics.ActiveUniformBlock {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_BLOCKS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_BLOCK_MAX_NAME_LENGTH, &maxLen)
	if count == 0 {
		return nil
	}

	out := make([]graphics.ActiveUniformBlock, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, binding, dataSize, numUniforms int32
		gl.GetActiveUniformBlockName(program, i, maxLen+1, &length, &buf[0])
		gl.GetActiveUniformBlockiv(program, i, gl.UNIFORM_BLOCK_BINDING, &binding)
		gl.GetActiveUniformBlockiv(program, i, gl.UNIFORM_BLOCK_DATA_SIZE, &dataSize)
		gl.GetActiveUniformBlockiv(program, i, gl.UNIFORM_BLOCK_ACTIVE_UNIFORMS, &numUniforms)

		block := graphics.ActiveUniformBlock{
			Index:    i,
			Name:     string(buf[:length]),
			Binding:  binding,
			DataSize: dataSize,
		}
		if numUniforms > 0 {
			raw := make([]int32, numUniforms)
			gl.GetActiveUniformBlockiv(program, i, gl.UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES, &raw[0])
			block.UniformIndices = make([]uint32, numUniforms)
			for j, idx := range raw {
				block.UniformIndices[j] = uint32(idx)
			}
		}
		out = append(out, block)
	}
	return out
}

func (d *Device) UniformBlockBinding(program, blockIndex, binding uint32) {
	gl.UniformBlockBinding(program, blockIndex, binding)
}

func (d *Device) UniformFloat(program uint32, location int32, components int, values []float32) {
	count := int32(len(values) / components)
	switch components {
	case 1:
		gl.ProgramUniform1fv(program, location, count, &values[0])
	case 2:
		gl.ProgramUniform2fv(program, location, count, &values[0])
	case 3:
		gl.ProgramUniform3fv(program, location, count, &values[0])
	case 4:
		gl.ProgramUniform4fv(program, location, count, &values[0])
	}
}

func (d *Device) UniformInt(program uint32, location int32, components int, values []int32) {
	count := int32(len(values) / components)
	switch components {
	case 1:
		gl.ProgramUniform1iv(program, location, count, &values[0])
	case 2:
		gl.ProgramUniform2iv(program, location, count, &values[0])
	case 3:
		gl.ProgramUniform3iv(program, location, count, &values[0])
	case 4:
		gl.ProgramUniform4iv(program, location, count, &values[0])
	}
}

func (d *Device) UniformUint(program uint32, location int32, components int, values []uint32) {
	count := int32(len(values) / components)
	switch components {
	case 1:
		gl.ProgramUniform1uiv(program, location, count, &values[0])
	case 2:
		gl.ProgramUniform2uiv(program, location, count, &values[0])
	case 3:
		gl.ProgramUniform3uiv(program, location, count, &values[0])
	case 4:
		gl.ProgramUniform4uiv(program, location, count, &values[0])
	}
}

func (d *Device) UniformMatrix(program uint32, location int32, cols, rows int, transpose bool, values []float32) {
	count := int32(len(values) / (cols * rows))
	switch {
	case cols == 2 && rows == 2:
		gl.ProgramUniformMatrix2fv(program, location, count, transpose, &values[0])
	case cols == 3 && rows == 3:
		gl.ProgramUniformMatrix3fv(program, location, count, transpose, &values[0])
	case cols == 4 && rows == 4:
		gl.ProgramUniformMatrix4fv(program, location, count, transpose, &values[0])
	case cols == 2 && rows == 3:
		gl.ProgramUniformMatrix2x3fv(program, location, count, transpose, &values[0])
	case cols == 3 && rows == 4:
		gl.ProgramUniformMatrix3x4fv(program, location, count, transpose, &values[0])
	case cols == 4 && rows == 3:
		gl.ProgramUniformMatrix4x3fv(program, location, count, transpose, &values[0])
	default:
		logging.Warn("Unsupported matrix uniform %dx%d", cols, rows)
	}
}
