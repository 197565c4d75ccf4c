package layers

import (
	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/app"
	"resonance/internal/config"
	"resonance/internal/graphics"
	"resonance/internal/input"
	"resonance/internal/logging"
	"resonance/internal/scene"
	"resonance/internal/settings"
)

// wireframer is implemented by devices that can rasterize as lines.
type wireframer interface {
	SetWireframe(on bool)
}

// RenderLayer draws every RenderComponent of the current scene from its
// main camera into an off-screen framebuffer and returns it as the frame's
// render output.
type RenderLayer struct {
	app.LayerBase
	app *app.Application

	fb         *graphics.Framebuffer
	fallback   *graphics.Shader
	clearColor mgl32.Vec4
	drawn      int
}

const renderHooks = app.HookAppLoad | app.HookUpdate | app.HookRender | app.HookWindowResize | app.HookAppUnload

func NewRenderLayer(a *app.Application) *RenderLayer {
	return &RenderLayer{
		LayerBase: app.LayerBase{
			LayerName: "Render",
			Hooks:     renderHooks,
			Defaults: settings.Settings{
				"clear_color": []any{0.1, 0.1, 0.12, 1.0},
				"depth":       true,
			},
		},
		app: a,
	}
}

func (l *RenderLayer) OnAppLoad(cfg settings.Settings) error {
	own := cfg.Section(l.Name())
	l.clearColor = mgl32.Vec4{0.1, 0.1, 0.12, 1}
	if c, ok := own["clear_color"].([]any); ok && len(c) == 4 {
		for i, v := range c {
			if f, ok := v.(float64); ok {
				l.clearColor[i] = float32(f)
			}
		}
	}

	dev := l.app.Device()
	size := l.app.WindowSize()
	fb, err := graphics.NewFramebuffer(dev, int32(size.Width), int32(size.Height), graphics.FramebufferDesc{
		Depth: own.Bool("depth", true),
	})
	if err != nil {
		return err
	}
	l.fb = fb

	l.fallback, err = buildShader(dev, litVertexShader, litFragmentShader)
	return err
}

// OnUpdate toggles wireframe rendering.
func (l *RenderLayer) OnUpdate() error {
	if l.app.Input().JustPressed(input.ActionToggleWireframe) {
		logging.Info("Wireframe %v", config.ToggleWireframeMode())
	}
	return nil
}

func (l *RenderLayer) OnWindowResize(_, size app.Size) error {
	// Minimized windows report 0x0; keep the old target until restored.
	// Before OnAppLoad there is no target yet and it is later sized from
	// the window.
	if l.fb == nil || size.Width <= 0 || size.Height <= 0 {
		return nil
	}
	return l.fb.Resize(int32(size.Width), int32(size.Height))
}

func (l *RenderLayer) OnRender(_ *graphics.Framebuffer) (*graphics.Framebuffer, error) {
	s := l.app.CurrentScene()
	dev := l.app.Device()

	l.fb.Bind(graphics.BindReadWrite)
	dev.Viewport(l.fb.Rect())
	dev.Scissor(l.fb.Rect())
	dev.SetClearColor(l.clearColor[0], l.clearColor[1], l.clearColor[2], l.clearColor[3])
	dev.Clear(graphics.BufferAll)
	defer l.fb.Unbind()

	l.drawn = 0
	camObj, cam := s.MainCamera()
	if cam == nil {
		return l.fb, nil
	}
	cam.SetViewport(int(l.fb.Width()), int(l.fb.Height()))
	viewProj := cam.Projection().Mul4(cam.View(camObj))

	wf, canWireframe := dev.(wireframer)
	if canWireframe {
		wf.SetWireframe(config.GetWireframeMode())
		defer wf.SetWireframe(false)
	}

	scene.Visit(s, func(obj *scene.GameObject, rc *scene.RenderComponent) {
		if rc.Mesh == nil {
			return
		}
		sh := rc.Shader
		if sh == nil {
			sh = l.fallback
		}
		model := obj.Transform()
		sh.Bind()
		sh.SetMat4("uMVP", viewProj.Mul4(model), false)
		sh.SetMat4("uModel", model, false)
		sh.SetVec4("uColor", rc.Color)
		if rc.Texture != nil {
			rc.Texture.Bind(0)
			sh.SetInt("uTexture", 0)
		}
		sh.SetBool("uHasTexture", rc.Texture != nil)
		rc.Mesh.Draw()
		l.drawn++
	})
	l.fallback.Unbind()
	return l.fb, nil
}

// Drawn is the number of components drawn in the last frame.
func (l *RenderLayer) Drawn() int { return l.drawn }

func (l *RenderLayer) OnAppUnload() error {
	if l.fallback != nil {
		l.fallback.Close()
	}
	if l.fb != nil {
		return l.fb.Close()
	}
	return nil
}
