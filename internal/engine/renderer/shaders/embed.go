// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ClothVertexShader is the vertex shader for cloth rendering.
//
//go:embed cloth.vert
var ClothVertexShader string

// ClothFragmentShader is the fragment shader for cloth rendering.
//
//go:embed cloth.frag
var ClothFragmentShader string
