package graphics

import (
	"sync"
)

// TextureCache hands out one Texture2D per file path.
type TextureCache struct {
	driver TextureDriver
	desc   TextureDesc

	mu       sync.RWMutex
	textures map[string]*Texture2D
}

func NewTextureCache(driver TextureDriver, desc TextureDesc) *TextureCache {
	return &TextureCache{
		driver:   driver,
		desc:     desc,
		textures: make(map[string]*Texture2D),
	}
}

// Get returns the cached texture for path, loading it on first use or
// after the cached one was closed by another owner.
func (c *TextureCache) Get(path string) (*Texture2D, error) {
	c.mu.RLock()
	if tex, ok := c.textures[path]; ok && !tex.closed {
		c.mu.RUnlock()
		return tex, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double check locking
	if tex, ok := c.textures[path]; ok && !tex.closed {
		return tex, nil
	}

	tex, err := LoadTexture2D(c.driver, path, c.desc)
	if err != nil {
		return nil, err
	}
	c.textures[path] = tex
	return tex, nil
}

func (c *TextureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.textures)
}

// Close releases every cached texture.
func (c *TextureCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, tex := range c.textures {
		tex.Close()
		delete(c.textures, path)
	}
	return nil
}
