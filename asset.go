package render

import (
	"fmt"
	"io/fs"
)

// ReadProgram reads GLSL sources from fsys and links them into a program.
func ReadProgram(ctx *Context, fsys fs.FS, vertexPath, fragmentPath string) (*Program, error) {
	vertexSource, err := fs.ReadFile(fsys, vertexPath)
	if err != nil {
		return nil, fmt.Errorf("read vertex shader: %w", err)
	}
	fragmentSource, err := fs.ReadFile(fsys, fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("read fragment shader: %w", err)
	}

	p, err := CreateProgramFromSource(ctx, string(vertexSource), string(fragmentSource))
	if err != nil {
		return nil, fmt.Errorf("program %s + %s: %w", vertexPath, fragmentPath, err)
	}
	if renderVerbose() {
		logger.Debug("program loaded", "vertex", vertexPath, "fragment", fragmentPath,
			"attributes", len(p.attributes), "uniforms", len(p.uniforms), "samplers", len(p.samplers))
	}
	return p, nil
}

// ReadProgramInterface reads a program like ReadProgram and rejects it if it
// does not satisfy pi.
func ReadProgramInterface(ctx *Context, fsys fs.FS, vertexPath, fragmentPath string, pi *ProgramInterface) (*Program, error) {
	p, err := ReadProgram(ctx, fsys, vertexPath, fragmentPath)
	if err != nil {
		return nil, err
	}
	if err := pi.Check(p); err != nil {
		logger.Error("program does not match interface", "vertex", vertexPath, "fragment", fragmentPath, "error", err)
		p.Delete()
		return nil, fmt.Errorf("program %s + %s: %w", vertexPath, fragmentPath, err)
	}
	return p, nil
}
