package layers

import (
	"resonance/internal/graphics"
)

const litVertexShader = `#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec2 vUV;

void main() {
	vNormal = mat3(uModel) * inNormal;
	vUV = inUV;
	gl_Position = uMVP * vec4(inPosition, 1.0);
}
`

const litFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vUV;

uniform vec4 uColor;
uniform sampler2D uTexture;
uniform bool uHasTexture;

out vec4 outColor;

void main() {
	vec4 color = uColor;
	if (uHasTexture) {
		color *= texture(uTexture, vUV);
	}
	float light = 0.35 + 0.65 * max(dot(normalize(vNormal), normalize(vec3(0.4, 1.0, 0.3))), 0.0);
	outColor = vec4(color.rgb * light, color.a);
}
`

const panelVertexShader = `#version 410 core
layout(location = 0) in vec3 inPosition;

void main() {
	gl_Position = vec4(inPosition.xy * 2.0, 0.0, 1.0);
}
`

const panelFragmentShader = `#version 410 core
uniform vec4 uColor;

out vec4 outColor;

void main() {
	outColor = uColor;
}
`

// buildShader compiles and links an engine shader from inline sources.
func buildShader(dev graphics.ShaderDriver, vertex, fragment string) (*graphics.Shader, error) {
	sh := graphics.NewShader(dev)
	if err := sh.LoadShaderPart(vertex, graphics.StageVertex); err != nil {
		sh.Close()
		return nil, err
	}
	if err := sh.LoadShaderPart(fragment, graphics.StageFragment); err != nil {
		sh.Close()
		return nil, err
	}
	if err := sh.Link(); err != nil {
		sh.Close()
		return nil, err
	}
	return sh, nil
}
