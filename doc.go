/*
Package render is a thin OpenGL rendering layer built around a Context that
remembers what the GPU is currently set to and only issues the calls needed
to move it to the next requested state.

# Overview

All GPU work goes through a Device. The opengl backend implements it on an
OpenGL 4.1 core context; rendertest implements it as a recording fake so the
package can be tested without a GPU. A Context owns one Device and holds:

  - a StateCache that diffs RenderState values against the last applied one
  - the bound program, textures, buffers, framebuffer, viewport and scissor
  - a SharedProgramState feeding camera matrices into program uniforms
  - a VertexPool for per-frame streamed vertices
  - Stats counting operations, state changes and primitives per frame

# Quick Start

	window, _ := opengl.NewWindow(render.DefaultConfig().Window)
	device, _ := opengl.NewDevice()
	ctx := render.NewContext(device, window)
	render.RegisterSharedUniforms(ctx)

	program, _ := render.CreateProgramFromSource(ctx, vertexSrc, fragmentSrc)
	pass := render.NewPass(program)

	for window.PollEvents() {
	    ctx.ClearBuffers(render.ClearColor|render.ClearDepth, mgl32.Vec4{0, 0, 0, 1}, 1, 0)
	    pass.Apply(ctx)
	    if err := ctx.Render(triangles); err != nil {
	        log.Fatal(err)
	    }
	    ctx.EndFrame()
	}

# Render State

RenderState is a plain value. Setting it on a Context compares each axis
(culling, depth, blending, stencil, color mask, polygon mode, line width)
with the cached state and emits only what differs. The first render after
creation or Invalidate forces every axis once. Clearing a framebuffer
enables the depth and color writes it needs and restores the cached masks
afterwards, so clears never invalidate the cache.

# Programs

Programs are reflected after linking: every active attribute, uniform and
sampler is recorded with its type and location. Sampler units are assigned
in declaration order when the program is first bound. Uniforms whose name
and type match a shared uniform registered on the Context are refreshed
from the SharedProgramState before each draw, and derived matrices are only
recomputed when one of their inputs changed.

A ProgramInterface lists what calling code expects from a program. Check
compares it with the reflected program and reports mismatches; CheckFormat
does the same for a VertexFormat.

# Shader Hot Reload

ProgramWatcher watches a shader directory with fsnotify. Poll drains the
pending file events on the render thread and relinks the affected programs
in place. A failed compile logs the error and keeps the previous program.

# Logging

Diagnostics go through log/slog. SetLogger replaces the package logger and
SetVerbose toggles debug output at runtime.
*/
package render
