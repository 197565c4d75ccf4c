package graphics

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureDesc controls sampling of an uploaded texture.
type TextureDesc struct {
	Filter  MagFilter
	Mipmaps bool
	Repeat  bool
}

// DefaultTextureDesc matches pixel-art style assets: nearest, clamped, no mips.
var DefaultTextureDesc = TextureDesc{Filter: FilterNearest}

type textureHandle struct {
	releaser Releaser
	id       uint32
}

// Texture2D is an RGBA8 texture living on the GPU.
type Texture2D struct {
	driver  TextureDriver
	gpu     *textureHandle
	cleanup runtime.Cleanup
	width   int
	height  int
	path    string
	closed  bool
}

// DecodeImage reads path and converts it to tightly packed RGBA.
func DecodeImage(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// LoadTexture2D decodes the image at path and uploads it.
func LoadTexture2D(driver TextureDriver, path string, desc TextureDesc) (*Texture2D, error) {
	rgba, err := DecodeImage(path)
	if err != nil {
		return nil, err
	}
	tex := NewTexture2D(driver, rgba, desc)
	tex.path = path
	return tex, nil
}

// NewTexture2D uploads an already decoded image.
func NewTexture2D(driver TextureDriver, rgba *image.RGBA, desc TextureDesc) *Texture2D {
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	id := driver.CreateTexture2D(int32(w), int32(h), rgba.Pix, desc)
	t := &Texture2D{
		driver: driver,
		gpu:    &textureHandle{releaser: driver, id: id},
		width:  w,
		height: h,
	}
	t.cleanup = runtime.AddCleanup(t, func(h *textureHandle) {
		h.releaser.DeleteLater(KindTexture, h.id)
	}, t.gpu)
	return t
}

func (t *Texture2D) Handle() uint32 { return t.gpu.id }
func (t *Texture2D) Width() int     { return t.width }
func (t *Texture2D) Height() int    { return t.height }

// Path is the file the texture was loaded from, empty for in-memory images.
func (t *Texture2D) Path() string { return t.path }

// Bind binds the texture to a texture unit.
func (t *Texture2D) Bind(slot uint32) {
	if t.closed {
		return
	}
	t.driver.BindTexture(slot, t.gpu.id)
}

func (t *Texture2D) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.cleanup.Stop()
	t.driver.DeleteTexture(t.gpu.id)
	return nil
}
