package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"resonance/internal/graphics"
	"resonance/internal/graphics/graphicstest"
	"resonance/internal/input"
	"resonance/internal/resources"
)

const levelJSON = `{
	"name": "level1",
	"objects": [
		{
			"guid": "2f0a7c4e-5b1d-4e3a-9c8f-6d7e8a9b0c1d",
			"name": "Main Camera",
			"position": [0, 2, 5],
			"components": [
				{"type": "Camera", "fov": 70, "main": true},
				{"type": "FlyController", "speed": 10}
			]
		},
		{
			"name": "Spinner",
			"scale": [2, 2, 2],
			"components": [
				{"type": "Rotator", "speed": [0, 90, 0]},
				{"type": "KillPlane", "min_y": -10}
			]
		},
		{
			"name": "PauseScreen",
			"components": [{"type": "GuiPanel", "enabled": false}]
		}
	]
}`

func newRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

func TestParseScene(t *testing.T) {
	s, err := Parse([]byte(levelJSON), newRegistry(), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "level1" || len(s.Objects) != 3 {
		t.Fatalf("scene %q with %d objects", s.Name, len(s.Objects))
	}

	cam := s.FindObjectByName("Main Camera")
	if cam == nil {
		t.Fatal("camera object missing")
	}
	if cam.GUID != uuid.MustParse("2f0a7c4e-5b1d-4e3a-9c8f-6d7e8a9b0c1d") {
		t.Errorf("GUID = %s", cam.GUID)
	}
	if cam.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("default scale = %v", cam.Scale)
	}

	spinner := s.FindObjectByName("Spinner")
	if spinner.GUID == uuid.Nil {
		t.Error("objects without a GUID should get one")
	}
	if spinner.Scale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("scale = %v", spinner.Scale)
	}

	panel, ok := Get[*GuiPanel](s.FindObjectByName("PauseScreen"))
	if !ok || panel.Enabled() {
		t.Errorf("pause panel should load disabled")
	}
	if s.FindObjectByName("Nobody") != nil {
		t.Error("FindObjectByName invented an object")
	}
}

func TestMainCamera(t *testing.T) {
	s, err := Parse([]byte(levelJSON), newRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	obj, cam := s.MainCamera()
	if obj == nil || obj.Name != "Main Camera" {
		t.Fatalf("MainCamera() = %v", obj)
	}
	if cam.FOV != 70 || cam.Near != 0.1 || cam.Far != 1000 {
		t.Errorf("camera = fov %v near %v far %v", cam.FOV, cam.Near, cam.Far)
	}
	cam.SetViewport(800, 400)
	p := cam.Projection()
	if p[0] == 0 || p[5] == 0 || p[5]/p[0] != 2 {
		t.Errorf("projection ignores the 2:1 aspect: %v", p)
	}
}

func TestUpdateOnlyWhilePlaying(t *testing.T) {
	s, err := Parse([]byte(levelJSON), newRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	spinner := s.FindObjectByName("Spinner")

	s.Update(&FrameContext{DeltaTime: 1})
	if spinner.Rotation.Y() != 0 {
		t.Fatalf("scene updated while not playing")
	}

	s.IsPlaying = true
	s.Update(&FrameContext{DeltaTime: 0.5})
	if spinner.Rotation.Y() != 45 {
		t.Errorf("rotation = %v, want 45", spinner.Rotation.Y())
	}

	spinner.Position = mgl32.Vec3{0, -20, 0}
	s.LateUpdate(&FrameContext{DeltaTime: 0.1})
	if !s.RequestReload {
		t.Error("kill plane should request a reload")
	}
}

type keysDown map[input.Key]bool

func (k keysDown) KeyPressed(key input.Key) bool { return k[key] }

func TestFlyControllerMoves(t *testing.T) {
	s, err := Parse([]byte(levelJSON), newRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.IsPlaying = true
	cam := s.FindObjectByName("Main Camera")

	im := input.NewManager()
	im.Poll(keysDown{input.KeyW: true})
	s.Update(&FrameContext{DeltaTime: 0.5, Input: im})

	// Yaw 0 faces -Z, speed 10 for half a second.
	want := mgl32.Vec3{0, 2, 0}
	if !cam.Position.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("position = %v, want %v", cam.Position, want)
	}
}

func TestUnknownComponent(t *testing.T) {
	_, err := Parse([]byte(`{"objects":[{"name":"x","components":[{"type":"Teleporter"}]}]}`), newRegistry(), nil)
	if !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("error = %v, want ErrUnknownComponent", err)
	}
}

func TestRenderComponentResolvesResources(t *testing.T) {
	dev := graphicstest.New()
	res := resources.NewManager()
	meshID := uuid.New()
	mesh, err := graphics.NewPrimitiveMesh(dev, "cube")
	if err != nil {
		t.Fatal(err)
	}
	res.Add(resources.TypeMesh, meshID, mesh)

	doc := `{"objects":[{"name":"Box","components":[{"type":"RenderComponent","mesh":"` + meshID.String() + `"}]}]}`
	s, err := Parse([]byte(doc), newRegistry(), res)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rc, ok := Get[*RenderComponent](s.FindObjectByName("Box"))
	if !ok || rc.Mesh != mesh {
		t.Fatalf("mesh not resolved: %+v", rc)
	}
	if rc.Color != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("default color = %v", rc.Color)
	}

	missing := `{"objects":[{"name":"Box","components":[{"type":"RenderComponent","shader":"` + uuid.NewString() + `"}]}]}`
	if _, err := Parse([]byte(missing), newRegistry(), res); !errors.Is(err, resources.ErrNotFound) {
		t.Errorf("missing shader error = %v", err)
	}
}

func TestToJSONRoundTrip(t *testing.T) {
	reg := newRegistry()
	s, err := Parse([]byte(levelJSON), reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.FindObjectByName("Spinner").Position = mgl32.Vec3{1, 2, 3}

	data, err := s.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	again, err := Parse(data, reg, nil)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	spinner := again.FindObjectByName("Spinner")
	if spinner.Position != (mgl32.Vec3{1, 2, 3}) || spinner.Scale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("spinner transform lost: %v %v", spinner.Position, spinner.Scale)
	}
	if _, ok := Get[*Rotator](spinner); !ok {
		t.Error("rotator lost")
	}
	if panel, _ := Get[*GuiPanel](again.FindObjectByName("PauseScreen")); panel.Enabled() {
		t.Error("disabled flag lost")
	}
	if again.FindObjectByName("Main Camera").GUID != s.FindObjectByName("Main Camera").GUID {
		t.Error("GUID changed")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.json")
	if err := os.WriteFile(path, []byte(`{"objects":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path, newRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "menu" || s.Path != path {
		t.Errorf("Name = %q Path = %q", s.Name, s.Path)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), newRegistry(), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestTransformComposes(t *testing.T) {
	obj := NewGameObject("box")
	obj.Position = mgl32.Vec3{1, 0, 0}
	obj.Rotation = mgl32.Vec3{0, 90, 0}
	obj.Scale = mgl32.Vec3{2, 2, 2}

	p := obj.Transform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	// scale to (2,0,0), yaw 90 turns +X into -Z, then translate.
	want := mgl32.Vec4{1, 0, -2, 1}
	if !p.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Transform() * (1,0,0) = %v, want %v", p, want)
	}
}
