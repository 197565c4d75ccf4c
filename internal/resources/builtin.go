package resources

import (
	"encoding/json"
	"fmt"

	"resonance/internal/graphics"
)

const (
	TypeShader      = "Shader"
	TypeTexture2D   = "Texture2D"
	TypeFramebuffer = "Framebuffer"
	TypeMesh        = "Mesh"
)

type textureEntry struct {
	Path    string `json:"path"`
	Filter  string `json:"filter"`
	Mipmaps bool   `json:"mipmaps"`
	Repeat  bool   `json:"repeat"`
}

type framebufferEntry struct {
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
	Depth  bool   `json:"depth"`
	Filter string `json:"filter"`
}

type meshEntry struct {
	Primitive string `json:"primitive"`
}

func parseFilter(name string) (graphics.MagFilter, error) {
	switch name {
	case "", "nearest":
		return graphics.FilterNearest, nil
	case "linear":
		return graphics.FilterLinear, nil
	}
	return 0, fmt.Errorf("unknown filter %q", name)
}

// RegisterBuiltins installs the Shader, Texture2D, Framebuffer and Mesh
// types backed by dev. Texture2D entries with the default sampling share
// one upload per file.
func RegisterBuiltins(m *Manager, dev graphics.Device) {
	textures := graphics.NewTextureCache(dev, graphics.DefaultTextureDesc)

	m.RegisterType(TypeShader, func(ctx LoadContext, raw json.RawMessage) (any, error) {
		var stages map[string]string
		if err := json.Unmarshal(raw, &stages); err != nil {
			return nil, err
		}
		paths := make(map[graphics.ShaderStage]string, len(stages))
		for name, path := range stages {
			stage, err := graphics.ParseShaderStage(name)
			if err != nil {
				return nil, err
			}
			paths[stage] = ctx.Resolve(path)
		}
		return graphics.NewShaderFromFiles(dev, paths)
	})

	m.RegisterType(TypeTexture2D, func(ctx LoadContext, raw json.RawMessage) (any, error) {
		var e textureEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		filter, err := parseFilter(e.Filter)
		if err != nil {
			return nil, err
		}
		desc := graphics.TextureDesc{Filter: filter, Mipmaps: e.Mipmaps, Repeat: e.Repeat}
		if desc == graphics.DefaultTextureDesc {
			return textures.Get(ctx.Resolve(e.Path))
		}
		return graphics.LoadTexture2D(dev, ctx.Resolve(e.Path), desc)
	})

	m.RegisterType(TypeFramebuffer, func(ctx LoadContext, raw json.RawMessage) (any, error) {
		var e framebufferEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		filter, err := parseFilter(e.Filter)
		if err != nil {
			return nil, err
		}
		return graphics.NewFramebuffer(dev, e.Width, e.Height, graphics.FramebufferDesc{Depth: e.Depth, Filter: filter})
	})

	m.RegisterType(TypeMesh, func(ctx LoadContext, raw json.RawMessage) (any, error) {
		var e meshEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return graphics.NewPrimitiveMesh(dev, e.Primitive)
	})
}
