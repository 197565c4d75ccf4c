package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"resonance/internal/graphics"
)

var uniformTypes = map[uint32]graphics.ShaderDataType{
	gl.FLOAT:                   graphics.TypeFloat,
	gl.FLOAT_VEC2:              graphics.TypeFloat2,
	gl.FLOAT_VEC3:              graphics.TypeFloat3,
	gl.FLOAT_VEC4:              graphics.TypeFloat4,
	gl.DOUBLE:                  graphics.TypeDouble,
	gl.INT:                     graphics.TypeInt,
	gl.INT_VEC2:                graphics.TypeInt2,
	gl.INT_VEC3:                graphics.TypeInt3,
	gl.INT_VEC4:                graphics.TypeInt4,
	gl.UNSIGNED_INT:            graphics.TypeUint,
	gl.UNSIGNED_INT_VEC2:       graphics.TypeUint2,
	gl.UNSIGNED_INT_VEC3:       graphics.TypeUint3,
	gl.UNSIGNED_INT_VEC4:       graphics.TypeUint4,
	gl.BOOL:                    graphics.TypeBool,
	gl.BOOL_VEC2:               graphics.TypeBool2,
	gl.BOOL_VEC3:               graphics.TypeBool3,
	gl.BOOL_VEC4:               graphics.TypeBool4,
	gl.FLOAT_MAT2:              graphics.TypeMat2,
	gl.FLOAT_MAT3:              graphics.TypeMat3,
	gl.FLOAT_MAT4:              graphics.TypeMat4,
	gl.FLOAT_MAT2x3:            graphics.TypeMat2x3,
	gl.FLOAT_MAT2x4:            graphics.TypeMat2x4,
	gl.FLOAT_MAT3x2:            graphics.TypeMat3x2,
	gl.FLOAT_MAT3x4:            graphics.TypeMat3x4,
	gl.FLOAT_MAT4x2:            graphics.TypeMat4x2,
	gl.FLOAT_MAT4x3:            graphics.TypeMat4x3,
	gl.SAMPLER_1D:              graphics.TypeSampler1D,
	gl.SAMPLER_2D:              graphics.TypeSampler2D,
	gl.SAMPLER_3D:              graphics.TypeSampler3D,
	gl.SAMPLER_CUBE:            graphics.TypeSamplerCube,
	gl.SAMPLER_2D_ARRAY:        graphics.TypeSampler2DArray,
	gl.SAMPLER_2D_SHADOW:       graphics.TypeSampler2DShadow,
	gl.SAMPLER_CUBE_SHADOW:     graphics.TypeSamplerCubeShadow,
	gl.INT_SAMPLER_2D:          graphics.TypeSampler2D,
	gl.UNSIGNED_INT_SAMPLER_2D: graphics.TypeSampler2D,
}

func dataType(glType uint32) graphics.ShaderDataType {
	if t, ok := uniformTypes[glType]; ok {
		return t
	}
	return graphics.TypeUnknown
}

func bufferMask(flags graphics.BufferFlags) uint32 {
	var mask uint32
	if flags&graphics.BufferColor != 0 {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&graphics.BufferDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if flags&graphics.BufferStencil != 0 {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	return mask
}

func filterEnum(f graphics.MagFilter) int32 {
	if f == graphics.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func bindingTarget(b graphics.FramebufferBinding) uint32 {
	switch b {
	case graphics.BindRead:
		return gl.READ_FRAMEBUFFER
	case graphics.BindDraw:
		return gl.DRAW_FRAMEBUFFER
	}
	return gl.FRAMEBUFFER
}

func primitiveMode(p graphics.Primitive) uint32 {
	switch p {
	case graphics.PrimLines:
		return gl.LINES
	case graphics.PrimPoints:
		return gl.POINTS
	}
	return gl.TRIANGLES
}
