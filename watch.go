package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watchedProgram is a program and the files it was read from, relative to
// the watcher's directory.
type watchedProgram struct {
	program      *Program
	vertexPath   string
	fragmentPath string
}

// ProgramWatcher relinks programs when their shader files change on disk.
//
// File events are collected by a background goroutine, but programs are only
// relinked inside Poll, which must be called from the context's thread. A
// program that fails to rebuild keeps its previous GPU program.
type ProgramWatcher struct {
	ctx      *Context
	dir      string
	watcher  *fsnotify.Watcher
	programs []watchedProgram
	done     chan struct{}

	mu      sync.Mutex
	changed map[string]bool // Files changed since the last Poll
}

// NewProgramWatcher watches shader files under dir.
func NewProgramWatcher(ctx *Context, dir string) (*ProgramWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	pw := &ProgramWatcher{
		ctx:     ctx,
		dir:     dir,
		watcher: w,
		changed: make(map[string]bool),
		done:    make(chan struct{}),
	}
	go pw.run()
	return pw, nil
}

func (pw *ProgramWatcher) run() {
	defer close(pw.done)
	for {
		select {
		case ev, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			rel, err := filepath.Rel(pw.dir, ev.Name)
			if err != nil {
				continue
			}
			pw.mu.Lock()
			pw.changed[filepath.ToSlash(rel)] = true
			pw.mu.Unlock()
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("shader watcher error", "dir", pw.dir, "error", err)
		}
	}
}

// Load reads a program from the watched directory and registers it for
// reloading. Paths are relative to the directory, slash separated.
func (pw *ProgramWatcher) Load(vertexPath, fragmentPath string) (*Program, error) {
	p, err := ReadProgram(pw.ctx, os.DirFS(pw.dir), vertexPath, fragmentPath)
	if err != nil {
		return nil, err
	}
	pw.programs = append(pw.programs, watchedProgram{program: p, vertexPath: vertexPath, fragmentPath: fragmentPath})
	return p, nil
}

// Poll relinks every registered program whose sources changed since the
// last call and returns how many were relinked.
func (pw *ProgramWatcher) Poll() int {
	pw.mu.Lock()
	changed := pw.changed
	if len(changed) > 0 {
		pw.changed = make(map[string]bool)
	}
	pw.mu.Unlock()
	if len(changed) == 0 {
		return 0
	}

	reloaded := 0
	fsys := os.DirFS(pw.dir)
	for _, wp := range pw.programs {
		if wp.program.id == 0 || (!changed[wp.vertexPath] && !changed[wp.fragmentPath]) {
			continue
		}
		next, err := ReadProgram(pw.ctx, fsys, wp.vertexPath, wp.fragmentPath)
		if err != nil {
			logger.Error("shader reload failed, keeping previous program",
				"vertex", wp.vertexPath, "fragment", wp.fragmentPath, "error", err)
			continue
		}
		wp.program.replace(next)
		reloaded++
		logger.Info("shader reloaded", "vertex", wp.vertexPath, "fragment", wp.fragmentPath)
	}
	return reloaded
}

// Close stops watching. Loaded programs stay valid.
func (pw *ProgramWatcher) Close() error {
	err := pw.watcher.Close()
	<-pw.done
	return err
}

// replace moves next's GPU program and reflection into p and releases p's
// previous GPU program. next must not be used afterwards.
func (p *Program) replace(next *Program) {
	wasCurrent := p.ctx.currentProgram == p
	if wasCurrent {
		p.ctx.SetCurrentProgram(nil)
	}
	p.ctx.device.DeleteProgram(p.id)
	p.ctx.stats.ProgramCount--

	p.id = next.id
	p.attributes = next.attributes
	p.uniforms = p.adoptUniforms(next.uniforms)
	p.samplers = p.adoptSamplers(next.samplers)
	next.id = 0

	if wasCurrent {
		p.ctx.SetCurrentProgram(p)
	}
}

// adoptUniforms returns the reflected uniforms of a relinked program, reusing
// p's handles by name so that callers holding them write to the new
// locations. Handles whose uniform is gone are deactivated.
func (p *Program) adoptUniforms(next []*Uniform) []*Uniform {
	old := make(map[string]*Uniform, len(p.uniforms))
	for _, u := range p.uniforms {
		old[u.Name] = u
	}
	uniforms := make([]*Uniform, 0, len(next))
	for _, n := range next {
		u, ok := old[n.Name]
		if !ok {
			n.program = p
			uniforms = append(uniforms, n)
			continue
		}
		delete(old, n.Name)
		u.Type = n.Type
		u.Location = n.Location
		u.SharedID = n.SharedID
		uniforms = append(uniforms, u)
	}
	for _, u := range old {
		u.removed = true
	}
	return uniforms
}

// adoptSamplers is adoptUniforms for samplers.
func (p *Program) adoptSamplers(next []*Sampler) []*Sampler {
	old := make(map[string]*Sampler, len(p.samplers))
	for _, s := range p.samplers {
		old[s.Name] = s
	}
	samplers := make([]*Sampler, 0, len(next))
	for _, n := range next {
		s, ok := old[n.Name]
		if !ok {
			samplers = append(samplers, n)
			continue
		}
		delete(old, n.Name)
		s.Type = n.Type
		s.Location = n.Location
		samplers = append(samplers, s)
	}
	for _, s := range old {
		s.removed = true
	}
	return samplers
}
