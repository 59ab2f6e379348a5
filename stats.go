package render

import "time"

// frameHistory is the number of completed frames kept for FrameRate.
const frameHistory = 60

// Frame holds counters for a single frame.
type Frame struct {
	Operations   int // Draw calls
	StateChanges int // StateCache applies
	Vertices     int
	Points       int
	Lines        int
	Triangles    int
	Duration     time.Duration
}

// Stats collects per-frame counters and GPU resource totals for one Context.
type Stats struct {
	clock      func() time.Time
	frameStart time.Time
	current    Frame
	history    []Frame // Ring of completed frames, newest last
	frameCount uint64

	VertexBufferCount int
	VertexBufferSize  int // Bytes
	IndexBufferCount  int
	IndexBufferSize   int // Bytes
	ProgramCount      int
	TextureCount      int
	TextureSize       int // Bytes
}

// NewStats creates a Stats using clock for frame timing. A nil clock uses
// time.Now.
func NewStats(clock func() time.Time) *Stats {
	if clock == nil {
		clock = time.Now
	}
	return &Stats{
		clock:      clock,
		frameStart: clock(),
		history:    make([]Frame, 0, frameHistory),
	}
}

// AddFrame closes the current frame and starts a new one.
func (s *Stats) AddFrame() {
	now := s.clock()
	s.current.Duration = now.Sub(s.frameStart)
	s.frameStart = now

	if len(s.history) == frameHistory {
		copy(s.history, s.history[1:])
		s.history = s.history[:frameHistory-1]
	}
	s.history = append(s.history, s.current)
	s.current = Frame{}
	s.frameCount++
}

// CurrentFrame returns the counters of the frame in progress.
func (s *Stats) CurrentFrame() Frame {
	return s.current
}

// LastFrame returns the most recently completed frame.
func (s *Stats) LastFrame() Frame {
	if len(s.history) == 0 {
		return Frame{}
	}
	return s.history[len(s.history)-1]
}

// FrameCount returns the number of completed frames.
func (s *Stats) FrameCount() uint64 {
	return s.frameCount
}

// FrameRate returns the average frames per second over the recent history.
func (s *Stats) FrameRate() float64 {
	var total time.Duration
	for _, f := range s.history {
		total += f.Duration
	}
	if total <= 0 {
		return 0
	}
	return float64(len(s.history)) / total.Seconds()
}

func (s *Stats) addStateChange() {
	s.current.StateChanges++
}

func (s *Stats) addPrimitives(mode PrimitiveType, count int) {
	s.current.Operations++
	s.current.Vertices += count

	switch mode {
	case PointList:
		s.current.Points += count
	case LineList:
		s.current.Lines += count / 2
	case LineStrip:
		if count > 1 {
			s.current.Lines += count - 1
		}
	case LineLoop:
		if count > 1 {
			s.current.Lines += count
		}
	case TriangleList:
		s.current.Triangles += count / 3
	case TriangleStrip, TriangleFan:
		if count > 2 {
			s.current.Triangles += count - 2
		}
	}
}

func (s *Stats) addBuffer(target BufferTarget, size int) {
	switch target {
	case TargetVertex:
		s.VertexBufferCount++
		s.VertexBufferSize += size
	case TargetIndex:
		s.IndexBufferCount++
		s.IndexBufferSize += size
	}
}

func (s *Stats) removeBuffer(target BufferTarget, size int) {
	switch target {
	case TargetVertex:
		s.VertexBufferCount--
		s.VertexBufferSize -= size
	case TargetIndex:
		s.IndexBufferCount--
		s.IndexBufferSize -= size
	}
}

func (s *Stats) addTexture(size int) {
	s.TextureCount++
	s.TextureSize += size
}

func (s *Stats) removeTexture(size int) {
	s.TextureCount--
	s.TextureSize -= size
}
