package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"resonance/internal/graphics"
)

// Framebuffers

func (d *Device) CreateFramebuffer(width, height int32, desc graphics.FramebufferDesc) (graphics.FramebufferHandles, error) {
	var h graphics.FramebufferHandles

	gl.GenFramebuffers(1, &h.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, h.FBO)

	gl.GenTextures(1, &h.Color)
	gl.BindTexture(gl.TEXTURE_2D, h.Color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	filter := filterEnum(desc.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, h.Color, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if desc.Depth {
		gl.GenRenderbuffers(1, &h.DepthStencil)
		gl.BindRenderbuffer(gl.RENDERBUFFER, h.DepthStencil)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, width, height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, h.DepthStencil)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteFramebuffer(h)
		return graphics.FramebufferHandles{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	d.mu.Lock()
	d.attachments[h.FBO] = h
	d.mu.Unlock()
	return h, nil
}

func (d *Device) DeleteFramebuffer(h graphics.FramebufferHandles) {
	if h.Color != 0 {
		gl.DeleteTextures(1, &h.Color)
	}
	if h.DepthStencil != 0 {
		gl.DeleteRenderbuffers(1, &h.DepthStencil)
	}
	if h.FBO != 0 {
		gl.DeleteFramebuffers(1, &h.FBO)
	}
	d.mu.Lock()
	delete(d.attachments, h.FBO)
	d.mu.Unlock()
}

func (d *Device) BindFramebuffer(binding graphics.FramebufferBinding, fbo uint32) {
	gl.BindFramebuffer(bindingTarget(binding), fbo)
}

func (d *Device) BlitFramebuffer(src, dst graphics.Rect, mask graphics.BufferFlags, filter graphics.MagFilter) {
	sx1, sy1 := src.Max()
	dx1, dy1 := dst.Max()
	gl.BlitFramebuffer(src.X, src.Y, sx1, sy1, dst.X, dst.Y, dx1, dy1, bufferMask(mask), uint32(filterEnum(filter)))
}

// Textures

func (d *Device) CreateTexture2D(width, height int32, rgba []byte, desc graphics.TextureDesc) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if desc.Repeat {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)

	filter := filterEnum(desc.Filter)
	minFilter := filter
	if desc.Mipmaps {
		minFilter = gl.NEAREST_MIPMAP_LINEAR
		if desc.Filter == graphics.FilterLinear {
			minFilter = gl.LINEAR_MIPMAP_LINEAR
		}
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		width,
		height,
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba),
	)
	if desc.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}

func (d *Device) BindTexture(slot, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (d *Device) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

// Meshes

func (d *Device) CreateMesh(vertices []float32, attribs []int32) uint32 {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	var stride int32
	for _, a := range attribs {
		stride += a
	}
	var offset uintptr
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), a, gl.FLOAT, false, stride*4, offset)
		offset += uintptr(a) * 4
	}
	gl.BindVertexArray(0)

	d.mu.Lock()
	d.meshBuffers[vao] = vbo
	d.mu.Unlock()
	return vao
}

func (d *Device) DrawMesh(mesh uint32, mode graphics.Primitive, first, count int32) {
	gl.BindVertexArray(mesh)
	gl.DrawArrays(primitiveMode(mode), first, count)
	gl.BindVertexArray(0)
}

func (d *Device) DeleteMesh(mesh uint32) {
	d.mu.Lock()
	vbo, ok := d.meshBuffers[mesh]
	delete(d.meshBuffers, mesh)
	d.mu.Unlock()
	if ok {
		gl.DeleteBuffers(1, &vbo)
	}
	gl.DeleteVertexArrays(1, &mesh)
}

// Frame state

func (d *Device) Clear(mask graphics.BufferFlags) {
	gl.Clear(bufferMask(mask))
}

func (d *Device) SetClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Viewport(r graphics.Rect) {
	gl.Viewport(r.X, r.Y, r.Width, r.Height)
}

func (d *Device) Scissor(r graphics.Rect) {
	gl.Scissor(r.X, r.Y, r.Width, r.Height)
}

// SetWireframe switches polygon rasterization between fill and line.
func (d *Device) SetWireframe(on bool) {
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// DeleteLater queues a handle for release on the next FlushDeletes. It may
// be called from any goroutine, cleanups included.
func (d *Device) DeleteLater(kind graphics.ObjectKind, handle uint32) {
	d.mu.Lock()
	d.pending = append(d.pending, deferred{kind: kind, handle: handle})
	d.mu.Unlock()
}

func (d *Device) FlushDeletes() {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, p := range pending {
		h := p.handle
		switch p.kind {
		case graphics.KindShader:
			gl.DeleteShader(h)
		case graphics.KindProgram:
			gl.DeleteProgram(h)
		case graphics.KindFramebuffer:
			d.mu.Lock()
			att, ok := d.attachments[h]
			d.mu.Unlock()
			if ok {
				// attachments are queued separately by their owner
				att.Color, att.DepthStencil = 0, 0
				d.DeleteFramebuffer(att)
			} else {
				gl.DeleteFramebuffers(1, &h)
			}
		case graphics.KindTexture:
			gl.DeleteTextures(1, &h)
		case graphics.KindRenderbuffer:
			gl.DeleteRenderbuffers(1, &h)
		case graphics.KindMesh:
			d.DeleteMesh(h)
		}
	}
}
