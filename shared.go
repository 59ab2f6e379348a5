package render

import "github.com/go-gl/mathgl/mgl32"

// Shared uniform IDs understood by SharedProgramState.
const (
	SharedModel SharedID = iota
	SharedView
	SharedProjection
	SharedModelView
	SharedViewProjection
	SharedModelViewProjection
	SharedInverseModel
	SharedInverseView
	SharedInverseProjection
	SharedInverseModelView
	SharedInverseViewProjection
	SharedInverseModelViewProjection
	SharedCameraNearZ
	SharedCameraFarZ
	SharedCameraAspectRatio
	SharedCameraFOV
	SharedCameraPosition
	SharedViewportWidth
	SharedViewportHeight
	SharedTime
)

// DefaultSharedUniforms lists the GLSL names RegisterSharedUniforms declares.
var DefaultSharedUniforms = []struct {
	Name string
	Type Type
	ID   SharedID
}{
	{"model", TypeMat4, SharedModel},
	{"view", TypeMat4, SharedView},
	{"projection", TypeMat4, SharedProjection},
	{"modelView", TypeMat4, SharedModelView},
	{"viewProjection", TypeMat4, SharedViewProjection},
	{"modelViewProjection", TypeMat4, SharedModelViewProjection},
	{"inverseModel", TypeMat4, SharedInverseModel},
	{"inverseView", TypeMat4, SharedInverseView},
	{"inverseProjection", TypeMat4, SharedInverseProjection},
	{"inverseModelView", TypeMat4, SharedInverseModelView},
	{"inverseViewProjection", TypeMat4, SharedInverseViewProjection},
	{"inverseModelViewProjection", TypeMat4, SharedInverseModelViewProjection},
	{"cameraNearZ", TypeFloat, SharedCameraNearZ},
	{"cameraFarZ", TypeFloat, SharedCameraFarZ},
	{"cameraAspectRatio", TypeFloat, SharedCameraAspectRatio},
	{"cameraFOV", TypeFloat, SharedCameraFOV},
	{"cameraPosition", TypeVec3, SharedCameraPosition},
	{"viewportWidth", TypeFloat, SharedViewportWidth},
	{"viewportHeight", TypeFloat, SharedViewportHeight},
	{"time", TypeFloat, SharedTime},
}

// RegisterSharedUniforms declares DefaultSharedUniforms on ctx. Programs
// linked afterwards have matching uniforms filled in automatically.
func RegisterSharedUniforms(ctx *Context) {
	for _, s := range DefaultSharedUniforms {
		ctx.CreateSharedUniform(s.Name, s.Type, s.ID)
	}
}

// derived is a bit set of derived matrices needing recomputation.
type derived uint16

const (
	dirtyModelView derived = 1 << iota
	dirtyViewProj
	dirtyModelViewProj
	dirtyInvModel
	dirtyInvView
	dirtyInvProj
	dirtyInvModelView
	dirtyInvViewProj
	dirtyInvModelViewProj

	dependsOnModel = dirtyModelView | dirtyModelViewProj | dirtyInvModel | dirtyInvModelView | dirtyInvModelViewProj
	dependsOnView  = dirtyModelView | dirtyViewProj | dirtyModelViewProj | dirtyInvView |
		dirtyInvModelView | dirtyInvViewProj | dirtyInvModelViewProj
	dependsOnProj = dirtyViewProj | dirtyModelViewProj | dirtyInvProj | dirtyInvViewProj | dirtyInvModelViewProj
)

// SharedProgramState supplies camera, transform, viewport and time values
// to shared uniforms. Derived matrices are computed on first read after one
// of their inputs changed and cached until the next change.
type SharedProgramState struct {
	model      mgl32.Mat4
	view       mgl32.Mat4
	projection mgl32.Mat4

	modelView        mgl32.Mat4
	viewProj         mgl32.Mat4
	modelViewProj    mgl32.Mat4
	invModel         mgl32.Mat4
	invView          mgl32.Mat4
	invProj          mgl32.Mat4
	invModelView     mgl32.Mat4
	invViewProj      mgl32.Mat4
	invModelViewProj mgl32.Mat4
	dirty            derived

	cameraPosition    mgl32.Vec3
	cameraNearZ       float32
	cameraFarZ        float32
	cameraAspectRatio float32
	cameraFOV         float32
	viewportWidth     float32
	viewportHeight    float32
	time              float32

	recomputes int // Derived matrices computed; observed by tests
}

// NewSharedProgramState returns a state with identity transforms.
func NewSharedProgramState() *SharedProgramState {
	return &SharedProgramState{
		model:             mgl32.Ident4(),
		view:              mgl32.Ident4(),
		projection:        mgl32.Ident4(),
		dirty:             dependsOnModel | dependsOnView | dependsOnProj,
		cameraNearZ:       0.1,
		cameraFarZ:        100,
		cameraAspectRatio: 1,
		cameraFOV:         90,
	}
}

// SetModelMatrix sets the object-to-world transform.
func (s *SharedProgramState) SetModelMatrix(m mgl32.Mat4) {
	s.model = m
	s.dirty |= dependsOnModel
}

// SetViewMatrix sets the world-to-camera transform.
func (s *SharedProgramState) SetViewMatrix(m mgl32.Mat4) {
	s.view = m
	s.dirty |= dependsOnView
}

// SetProjectionMatrix sets the camera-to-clip transform.
func (s *SharedProgramState) SetProjectionMatrix(m mgl32.Mat4) {
	s.projection = m
	s.dirty |= dependsOnProj
}

// SetOrthoProjection sets a pixel projection with the origin at the top
// left corner of a width by height area.
func (s *SharedProgramState) SetOrthoProjection(width, height float32) {
	s.SetProjectionMatrix(mgl32.Ortho(0, width, height, 0, -1, 1))
}

// SetPerspectiveProjection sets a perspective projection and records the
// camera properties it was built from. fov is the vertical field of view in
// degrees.
func (s *SharedProgramState) SetPerspectiveProjection(fov, aspectRatio, nearZ, farZ float32) {
	s.SetProjectionMatrix(mgl32.Perspective(mgl32.DegToRad(fov), aspectRatio, nearZ, farZ))
	s.cameraFOV = fov
	s.cameraAspectRatio = aspectRatio
	s.cameraNearZ = nearZ
	s.cameraFarZ = farZ
}

// SetCameraProperties records camera values exposed as shared uniforms.
func (s *SharedProgramState) SetCameraProperties(position mgl32.Vec3, fov, aspectRatio, nearZ, farZ float32) {
	s.cameraPosition = position
	s.cameraFOV = fov
	s.cameraAspectRatio = aspectRatio
	s.cameraNearZ = nearZ
	s.cameraFarZ = farZ
}

// SetViewportSize records the size of the area being rendered to.
func (s *SharedProgramState) SetViewportSize(width, height float32) {
	s.viewportWidth = width
	s.viewportHeight = height
}

// SetTime records the time in seconds exposed to shaders.
func (s *SharedProgramState) SetTime(seconds float32) {
	s.time = seconds
}

// ModelMatrix returns the model matrix.
func (s *SharedProgramState) ModelMatrix() mgl32.Mat4 { return s.model }

// ViewMatrix returns the view matrix.
func (s *SharedProgramState) ViewMatrix() mgl32.Mat4 { return s.view }

// ProjectionMatrix returns the projection matrix.
func (s *SharedProgramState) ProjectionMatrix() mgl32.Mat4 { return s.projection }

// refresh reports whether flag was dirty, clearing it.
func (s *SharedProgramState) refresh(flag derived) bool {
	if s.dirty&flag == 0 {
		return false
	}
	s.dirty &^= flag
	s.recomputes++
	return true
}

// ModelViewMatrix returns view * model.
func (s *SharedProgramState) ModelViewMatrix() mgl32.Mat4 {
	if s.refresh(dirtyModelView) {
		s.modelView = s.view.Mul4(s.model)
	}
	return s.modelView
}

// ViewProjectionMatrix returns projection * view.
func (s *SharedProgramState) ViewProjectionMatrix() mgl32.Mat4 {
	if s.refresh(dirtyViewProj) {
		s.viewProj = s.projection.Mul4(s.view)
	}
	return s.viewProj
}

// ModelViewProjectionMatrix returns projection * view * model.
func (s *SharedProgramState) ModelViewProjectionMatrix() mgl32.Mat4 {
	if s.refresh(dirtyModelViewProj) {
		s.modelViewProj = s.projection.Mul4(s.ModelViewMatrix())
	}
	return s.modelViewProj
}

// InverseModelMatrix returns the inverse of the model matrix.
func (s *SharedProgramState) InverseModelMatrix() mgl32.Mat4 {
	if s.refresh(dirtyInvModel) {
		s.invModel = s.model.Inv()
	}
	return s.invModel
}

// InverseViewMatrix returns the inverse of the view matrix.
func (s *SharedProgramState) InverseViewMatrix() mgl32.Mat4 {
	if s.refresh(dirtyInvView) {
		s.invView = s.view.Inv()
	}
	return s.invView
}

// InverseProjectionMatrix returns the inverse of the projection matrix.
func (s *SharedProgramState) InverseProjectionMatrix() mgl32.Mat4 {
	if s.refresh(dirtyInvProj) {
		s.invProj = s.projection.Inv()
	}
	return s.invProj
}

// InverseModelViewMatrix returns the inverse of the model-view matrix.
func (s *SharedProgramState) InverseModelViewMatrix() mgl32.Mat4 {
	if s.refresh(dirtyInvModelView) {
		s.invModelView = s.ModelViewMatrix().Inv()
	}
	return s.invModelView
}

// InverseViewProjectionMatrix returns the inverse of the view-projection
// matrix.
func (s *SharedProgramState) InverseViewProjectionMatrix() mgl32.Mat4 {
	if s.refresh(dirtyInvViewProj) {
		s.invViewProj = s.ViewProjectionMatrix().Inv()
	}
	return s.invViewProj
}

// InverseModelViewProjectionMatrix returns the inverse of the
// model-view-projection matrix.
func (s *SharedProgramState) InverseModelViewProjectionMatrix() mgl32.Mat4 {
	if s.refresh(dirtyInvModelViewProj) {
		s.invModelViewProj = s.ModelViewProjectionMatrix().Inv()
	}
	return s.invModelViewProj
}

// UpdateTo writes the value matching u's shared ID into u. An ID the state
// does not know is logged and the uniform is left unset.
func (s *SharedProgramState) UpdateTo(u *Uniform) {
	switch u.SharedID {
	case SharedModel:
		u.SetMat4(s.model)
	case SharedView:
		u.SetMat4(s.view)
	case SharedProjection:
		u.SetMat4(s.projection)
	case SharedModelView:
		u.SetMat4(s.ModelViewMatrix())
	case SharedViewProjection:
		u.SetMat4(s.ViewProjectionMatrix())
	case SharedModelViewProjection:
		u.SetMat4(s.ModelViewProjectionMatrix())
	case SharedInverseModel:
		u.SetMat4(s.InverseModelMatrix())
	case SharedInverseView:
		u.SetMat4(s.InverseViewMatrix())
	case SharedInverseProjection:
		u.SetMat4(s.InverseProjectionMatrix())
	case SharedInverseModelView:
		u.SetMat4(s.InverseModelViewMatrix())
	case SharedInverseViewProjection:
		u.SetMat4(s.InverseViewProjectionMatrix())
	case SharedInverseModelViewProjection:
		u.SetMat4(s.InverseModelViewProjectionMatrix())
	case SharedCameraNearZ:
		u.SetFloat(s.cameraNearZ)
	case SharedCameraFarZ:
		u.SetFloat(s.cameraFarZ)
	case SharedCameraAspectRatio:
		u.SetFloat(s.cameraAspectRatio)
	case SharedCameraFOV:
		u.SetFloat(s.cameraFOV)
	case SharedCameraPosition:
		u.SetVec3(s.cameraPosition)
	case SharedViewportWidth:
		u.SetFloat(s.viewportWidth)
	case SharedViewportHeight:
		u.SetFloat(s.viewportHeight)
	case SharedTime:
		u.SetFloat(s.time)
	default:
		logger.Error("unknown shared uniform", "uniform", u.Name, "id", int(u.SharedID))
	}
}
