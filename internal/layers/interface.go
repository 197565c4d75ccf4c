package layers

import (
	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/app"
	"resonance/internal/graphics"
	"resonance/internal/scene"
	"resonance/internal/settings"
)

// InterfaceLayer draws enabled GuiPanels as full-screen overlays on top of
// the render output.
type InterfaceLayer struct {
	app.LayerBase
	app    *app.Application
	shader *graphics.Shader
	quad   *graphics.Mesh
	drawn  int
}

func NewInterfaceLayer(a *app.Application) *InterfaceLayer {
	return &InterfaceLayer{
		LayerBase: app.LayerBase{
			LayerName: "Interface",
			Hooks:     app.HookAppLoad | app.HookPostRender | app.HookAppUnload,
		},
		app: a,
	}
}

func (l *InterfaceLayer) OnAppLoad(settings.Settings) error {
	dev := l.app.Device()
	sh, err := buildShader(dev, panelVertexShader, panelFragmentShader)
	if err != nil {
		return err
	}
	l.shader = sh
	l.quad, err = graphics.NewPrimitiveMesh(dev, "quad")
	return err
}

func (l *InterfaceLayer) OnPostRender(current *graphics.Framebuffer) (*graphics.Framebuffer, error) {
	l.drawn = 0
	s := l.app.CurrentScene()
	dev := l.app.Device()

	if current != nil {
		current.Bind(graphics.BindReadWrite)
		dev.Viewport(current.Rect())
		defer current.Unbind()
	}
	dev.Clear(graphics.BufferDepth)

	l.shader.Bind()
	defer l.shader.Unbind()
	scene.Visit(s, func(_ *scene.GameObject, p *scene.GuiPanel) {
		color := p.Color
		if color == (mgl32.Vec4{}) {
			color = mgl32.Vec4{0, 0, 0, 1}
		}
		l.shader.SetVec4("uColor", color)
		l.quad.Draw()
		l.drawn++
	})
	return nil, nil
}

// Drawn is the number of panels drawn in the last frame.
func (l *InterfaceLayer) Drawn() int { return l.drawn }

func (l *InterfaceLayer) OnAppUnload() error {
	if l.quad != nil {
		l.quad.Close()
	}
	if l.shader != nil {
		return l.shader.Close()
	}
	return nil
}
