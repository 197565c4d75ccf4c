package graphics

import "fmt"

// ShaderStage identifies one programmable pipeline stage.
type ShaderStage uint8

const (
	StageUnknown ShaderStage = iota
	StageVertex
	StageFragment
	StageTessControl
	StageTessEval
	StageGeometry
)

// pipelineOrder is the order stages are compiled and attached in.
var pipelineOrder = [...]ShaderStage{StageVertex, StageTessControl, StageTessEval, StageGeometry, StageFragment}

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "Vertex"
	case StageFragment:
		return "Fragment"
	case StageTessControl:
		return "TessControl"
	case StageTessEval:
		return "TessEval"
	case StageGeometry:
		return "Geometry"
	default:
		return "Unknown"
	}
}

// ParseShaderStage accepts the stage names used in resource manifests.
func ParseShaderStage(name string) (ShaderStage, error) {
	switch name {
	case "vertex", "Vertex", "vs":
		return StageVertex, nil
	case "fragment", "Fragment", "fs":
		return StageFragment, nil
	case "tess_control", "TessControl", "tcs":
		return StageTessControl, nil
	case "tess_eval", "TessEval", "tes":
		return StageTessEval, nil
	case "geometry", "Geometry", "gs":
		return StageGeometry, nil
	}
	return StageUnknown, fmt.Errorf("unknown shader stage %q", name)
}

// ShaderDataType is the engine-level tag for a uniform's GLSL type.
type ShaderDataType uint8

const (
	TypeNone ShaderDataType = iota
	TypeFloat
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeDouble
	TypeInt
	TypeInt2
	TypeInt3
	TypeInt4
	TypeUint
	TypeUint2
	TypeUint3
	TypeUint4
	TypeBool
	TypeBool2
	TypeBool3
	TypeBool4
	TypeMat2
	TypeMat3
	TypeMat4
	TypeMat2x3
	TypeMat2x4
	TypeMat3x2
	TypeMat3x4
	TypeMat4x2
	TypeMat4x3
	TypeSampler1D
	TypeSampler2D
	TypeSampler3D
	TypeSamplerCube
	TypeSampler2DArray
	TypeSampler2DShadow
	TypeSamplerCubeShadow
	TypeImage2D
	TypeUnknown
)

var dataTypeNames = [...]string{
	TypeNone:              "None",
	TypeFloat:             "Float",
	TypeFloat2:            "Float2",
	TypeFloat3:            "Float3",
	TypeFloat4:            "Float4",
	TypeDouble:            "Double",
	TypeInt:               "Int",
	TypeInt2:              "Int2",
	TypeInt3:              "Int3",
	TypeInt4:              "Int4",
	TypeUint:              "Uint",
	TypeUint2:             "Uint2",
	TypeUint3:             "Uint3",
	TypeUint4:             "Uint4",
	TypeBool:              "Bool",
	TypeBool2:             "Bool2",
	TypeBool3:             "Bool3",
	TypeBool4:             "Bool4",
	TypeMat2:              "Mat2",
	TypeMat3:              "Mat3",
	TypeMat4:              "Mat4",
	TypeMat2x3:            "Mat2x3",
	TypeMat2x4:            "Mat2x4",
	TypeMat3x2:            "Mat3x2",
	TypeMat3x4:            "Mat3x4",
	TypeMat4x2:            "Mat4x2",
	TypeMat4x3:            "Mat4x3",
	TypeSampler1D:         "Sampler1D",
	TypeSampler2D:         "Sampler2D",
	TypeSampler3D:         "Sampler3D",
	TypeSamplerCube:       "SamplerCube",
	TypeSampler2DArray:    "Sampler2DArray",
	TypeSampler2DShadow:   "Sampler2DShadow",
	TypeSamplerCubeShadow: "SamplerCubeShadow",
	TypeImage2D:           "Image2D",
	TypeUnknown:           "Unknown",
}

func (t ShaderDataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return "Unknown"
}

// IsSampler reports whether values of t are texture unit indices.
func (t ShaderDataType) IsSampler() bool {
	return t >= TypeSampler1D && t <= TypeImage2D
}

// Rect is a pixel rectangle given by origin and extent.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Max returns the exclusive upper corner.
func (r Rect) Max() (int32, int32) {
	return r.X + r.Width, r.Y + r.Height
}

// BufferFlags selects framebuffer attachments for clears and blits.
type BufferFlags uint8

const (
	BufferColor BufferFlags = 1 << iota
	BufferDepth
	BufferStencil

	BufferAll = BufferColor | BufferDepth | BufferStencil
)

// MagFilter is the sampling filter used when scaling.
type MagFilter uint8

const (
	FilterNearest MagFilter = iota
	FilterLinear
)

// FramebufferBinding is the target a framebuffer is bound to.
type FramebufferBinding uint8

const (
	BindReadWrite FramebufferBinding = iota
	BindRead
	BindDraw
)

// ObjectKind tags a GPU handle queued for deferred deletion.
type ObjectKind uint8

const (
	KindShader ObjectKind = iota
	KindProgram
	KindFramebuffer
	KindTexture
	KindRenderbuffer
	KindMesh
)

// Primitive is the topology DrawMesh assembles vertices into.
type Primitive uint8

const (
	PrimTriangles Primitive = iota
	PrimLines
	PrimPoints
)
