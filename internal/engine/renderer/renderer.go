// Package renderer provides OpenGL rendering of the simulated cloth.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/engine/cloth"
	"github.com/Faultbox/clothsim/internal/engine/renderer/shaders"
	"github.com/Faultbox/clothsim/internal/engine/shader"
	"github.com/Faultbox/clothsim/internal/logger"
)

const floatSize = 4

// VertexSource supplies interleaved vertex data and triangle indices.
type VertexSource interface {
	VertexCount() int
	WriteVertices(dst []float32, layout cloth.VertexLayout) error
	Indices() []uint32
}

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// View holds the per-frame camera and light state.
type View struct {
	ViewProj mgl32.Mat4
	Camera   mgl32.Vec3
	LightDir mgl32.Vec3
}

// Renderer draws one cloth mesh with a two-sided lit shader.
type Renderer struct {
	config Config
	log    *zap.Logger

	program *shader.Program

	vao, vbo, ebo uint32
	indexCount    int32
	vertexCount   int

	// Interleaved upload buffer, reused every frame
	vertices []float32

	FrontColor mgl32.Vec3
	BackColor  mgl32.Vec3
	Ambient    float32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		log:        logger.Named("renderer"),
		FrontColor: mgl32.Vec3{0.80, 0.25, 0.20},
		BackColor:  mgl32.Vec3{0.55, 0.18, 0.15},
		Ambient:    0.25,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.New(shaders.ClothVertexShader, shaders.ClothFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("cloth shader: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	return r, nil
}

// Load allocates GPU buffers for src and uploads its indices.
// Vertex data is streamed by Upload each frame.
func (r *Renderer) Load(src VertexSource) error {
	r.vertexCount = src.VertexCount()
	stride := cloth.PositionNormalLayout.Stride
	r.vertices = make([]float32, r.vertexCount*stride)
	if err := src.WriteVertices(r.vertices, cloth.PositionNormalLayout); err != nil {
		return fmt.Errorf("writing vertices: %w", err)
	}
	indices := src.Indices()
	r.indexCount = int32(len(indices))

	gl.BindVertexArray(r.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.vertices)*floatSize, glPtr(r.vertices), gl.DYNAMIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	}

	// Position (location = 0), normal (location = 1)
	strideBytes := int32(stride * floatSize)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, strideBytes,
		uintptr(cloth.PositionNormalLayout.PositionOffset*floatSize))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, strideBytes,
		uintptr(cloth.PositionNormalLayout.NormalOffset*floatSize))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	r.log.Debug("cloth buffers created",
		zap.Int("vertices", r.vertexCount),
		zap.Int32("indices", r.indexCount),
		zap.Uint32("vao", r.vao),
	)
	return nil
}

// Upload streams the current positions and normals of src to the GPU.
func (r *Renderer) Upload(src VertexSource) error {
	if src.VertexCount() != r.vertexCount {
		return fmt.Errorf("vertex count changed from %d to %d, call Load", r.vertexCount, src.VertexCount())
	}
	if err := src.WriteVertices(r.vertices, cloth.PositionNormalLayout); err != nil {
		return fmt.Errorf("writing vertices: %w", err)
	}
	if len(r.vertices) == 0 {
		return nil
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(r.vertices)*floatSize, glPtr(r.vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// SetWireframe switches between filled and line rendering.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Wireframe reports whether line rendering is enabled.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders the loaded cloth from view.
func (r *Renderer) Draw(view View) {
	if r.indexCount == 0 {
		return
	}

	model := mgl32.Ident4()

	r.program.Use()
	r.program.SetMat4("uModel", model)
	r.program.SetMat4("uViewProj", view.ViewProj)
	r.program.SetMat3("uNormalMatrix", model.Mat3().Inv().Transpose())
	r.program.SetVec3("uLightDir", view.LightDir)
	r.program.SetVec3("uCameraPos", view.Camera)
	r.program.SetVec3("uFrontColor", r.FrontColor)
	r.program.SetVec3("uBackColor", r.BackColor)
	r.program.SetFloat("uAmbient", r.Ambient)

	if r.config.Wireframe {
		r.program.SetFloat("uWireframe", 1)
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		r.program.SetFloat("uWireframe", 0)
	}

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

func glPtr(data []float32) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
