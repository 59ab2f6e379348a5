package opengl

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/render"
)

// newTestDevice opens a hidden window and its device, skipping when no
// display or GL driver is available.
func newTestDevice(t *testing.T) *Device {
	t.Helper()
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		t.Skip("no display")
	}
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)

	cfg := render.DefaultConfig().Window
	cfg.Width, cfg.Height = 64, 64
	cfg.Hidden = true
	window, err := NewWindow(cfg)
	if err != nil {
		t.Skipf("no OpenGL 4.1 context: %v", err)
	}
	t.Cleanup(window.Destroy)

	d, err := NewDevice()
	require.NoError(t, err)
	t.Cleanup(d.Delete)
	return d
}

func TestDevice_CreateBufferIsZeroed(t *testing.T) {
	d := newTestDevice(t)

	const size = 4096
	id, err := d.CreateBuffer(render.TargetVertex, size, render.UsageStatic)
	require.NoError(t, err)
	defer d.DeleteBuffer(id)

	got := make([]byte, size)
	for i := range got {
		got[i] = 0xFF
	}
	d.BindBuffer(render.TargetVertex, id)
	d.GetBufferSubData(render.TargetVertex, 0, got)
	assert.Equal(t, make([]byte, size), got)
}

func TestDevice_CreateEmptyBuffer(t *testing.T) {
	d := newTestDevice(t)

	id, err := d.CreateBuffer(render.TargetIndex, 0, render.UsageDynamic)
	require.NoError(t, err)
	d.DeleteBuffer(id)
}
