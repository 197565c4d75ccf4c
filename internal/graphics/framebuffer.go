package graphics

import (
	"errors"
	"fmt"
	"runtime"
)

var ErrInvalidSize = errors.New("framebuffer size must be positive")

// FramebufferDesc describes the attachments of an off-screen target.
type FramebufferDesc struct {
	// Depth adds a combined depth/stencil renderbuffer.
	Depth  bool
	Filter MagFilter
}

type framebufferHandles struct {
	releaser Releaser
	h        FramebufferHandles
}

func releaseFramebuffer(f *framebufferHandles) {
	if f.h.Color != 0 {
		f.releaser.DeleteLater(KindTexture, f.h.Color)
	}
	if f.h.DepthStencil != 0 {
		f.releaser.DeleteLater(KindRenderbuffer, f.h.DepthStencil)
	}
	if f.h.FBO != 0 {
		f.releaser.DeleteLater(KindFramebuffer, f.h.FBO)
	}
}

// Framebuffer is an off-screen render target with one color attachment.
type Framebuffer struct {
	driver  FramebufferDriver
	gpu     *framebufferHandles
	cleanup runtime.Cleanup
	desc    FramebufferDesc
	width   int32
	height  int32
	closed  bool
}

func NewFramebuffer(driver FramebufferDriver, width, height int32, desc FramebufferDesc) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	h, err := driver.CreateFramebuffer(width, height, desc)
	if err != nil {
		return nil, err
	}
	fb := &Framebuffer{
		driver: driver,
		gpu:    &framebufferHandles{releaser: driver, h: h},
		desc:   desc,
		width:  width,
		height: height,
	}
	fb.cleanup = runtime.AddCleanup(fb, releaseFramebuffer, fb.gpu)
	return fb, nil
}

func (f *Framebuffer) Width() int32  { return f.width }
func (f *Framebuffer) Height() int32 { return f.height }

// Rect is the full extent of the color attachment.
func (f *Framebuffer) Rect() Rect { return Rect{Width: f.width, Height: f.height} }

// Handle is the framebuffer object name.
func (f *Framebuffer) Handle() uint32 { return f.gpu.h.FBO }

// ColorTexture is the texture holding the color attachment.
func (f *Framebuffer) ColorTexture() uint32 { return f.gpu.h.Color }

func (f *Framebuffer) Bind(binding FramebufferBinding) {
	if f.closed {
		return
	}
	f.driver.BindFramebuffer(binding, f.gpu.h.FBO)
}

// Unbind restores the default framebuffer on both targets.
func (f *Framebuffer) Unbind() {
	f.driver.BindFramebuffer(BindReadWrite, 0)
}

// Resize recreates the attachments. Contents are not preserved.
func (f *Framebuffer) Resize(width, height int32) error {
	if f.closed {
		return errors.New("framebuffer closed")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == f.width && height == f.height {
		return nil
	}
	h, err := f.driver.CreateFramebuffer(width, height, f.desc)
	if err != nil {
		return err
	}
	f.driver.DeleteFramebuffer(f.gpu.h)
	f.gpu.h = h
	f.width, f.height = width, height
	return nil
}

func (f *Framebuffer) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.cleanup.Stop()
	f.driver.DeleteFramebuffer(f.gpu.h)
	f.gpu.h = FramebufferHandles{}
	return nil
}

// Blit copies src of the bound read framebuffer into dst of the bound draw
// framebuffer.
func Blit(driver FramebufferDriver, src, dst Rect, mask BufferFlags, filter MagFilter) {
	driver.BlitFramebuffer(src, dst, mask, filter)
}
