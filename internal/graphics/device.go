package graphics

// Releaser accepts handles whose owner became unreachable without being
// closed. Implementations must only touch the GPU from FlushDeletes, which
// the owning thread calls once per frame.
type Releaser interface {
	DeleteLater(kind ObjectKind, handle uint32)
}

// ActiveUniform is one entry of a linked program's active uniform list.
// BlockIndex is -1 for uniforms in the default block.
type ActiveUniform struct {
	Index      uint32
	Name       string
	Type       ShaderDataType
	Size       int32
	Location   int32
	BlockIndex int32
}

// ActiveUniformBlock describes one active uniform block of a linked program.
type ActiveUniformBlock struct {
	Index          uint32
	Name           string
	Binding        int32
	DataSize       int32
	UniformIndices []uint32
}

// ShaderDriver is the slice of the GPU API the Shader resource needs.
type ShaderDriver interface {
	Releaser

	CreateShader(stage ShaderStage) uint32
	// CompileShader compiles source into handle and returns the info log on failure.
	CompileShader(handle uint32, source string) (bool, string)
	DeleteShader(handle uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	ActiveUniforms(program uint32) []ActiveUniform
	ActiveUniformBlocks(program uint32) []ActiveUniformBlock
	UniformBlockBinding(program, blockIndex, binding uint32)

	// Uniform setters write to program without binding it. components is the
	// vector width; len(values)/components is the array count.
	UniformFloat(program uint32, location int32, components int, values []float32)
	UniformInt(program uint32, location int32, components int, values []int32)
	UniformUint(program uint32, location int32, components int, values []uint32)
	UniformMatrix(program uint32, location int32, cols, rows int, transpose bool, values []float32)
}

// FramebufferHandles are the GPU objects backing one Framebuffer.
type FramebufferHandles struct {
	FBO          uint32
	Color        uint32
	DepthStencil uint32
}

// FramebufferDriver creates, binds and blits framebuffers.
type FramebufferDriver interface {
	Releaser

	CreateFramebuffer(width, height int32, desc FramebufferDesc) (FramebufferHandles, error)
	DeleteFramebuffer(h FramebufferHandles)
	// BindFramebuffer binds fbo (0 is the default framebuffer) to binding.
	BindFramebuffer(binding FramebufferBinding, fbo uint32)
	// BlitFramebuffer copies from the read to the draw framebuffer.
	BlitFramebuffer(src, dst Rect, mask BufferFlags, filter MagFilter)
}

// TextureDriver uploads and binds 2D textures.
type TextureDriver interface {
	Releaser

	CreateTexture2D(width, height int32, rgba []byte, desc TextureDesc) uint32
	BindTexture(slot uint32, texture uint32)
	DeleteTexture(texture uint32)
}

// MeshDriver uploads interleaved vertex data and draws it.
type MeshDriver interface {
	Releaser

	// CreateMesh uploads vertices whose attributes have the given component
	// counts, interleaved in that order. It returns the vertex array handle.
	CreateMesh(vertices []float32, attribs []int32) uint32
	DrawMesh(mesh uint32, mode Primitive, first, count int32)
	DeleteMesh(mesh uint32)
}

// FrameDriver is the per-frame state the Application drives directly.
type FrameDriver interface {
	Clear(mask BufferFlags)
	SetClearColor(r, g, b, a float32)
	Viewport(r Rect)
	Scissor(r Rect)
	// FlushDeletes releases every handle queued through DeleteLater.
	FlushDeletes()
}

// Device is a complete GPU backend.
type Device interface {
	ShaderDriver
	FramebufferDriver
	TextureDriver
	MeshDriver
	FrameDriver
}
