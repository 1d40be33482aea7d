package gesture

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source yields detection samples without blocking. ok is false when no new
// sample is available this frame.
type Source interface {
	Poll() (f Frame, ok bool)
}

// Mailbox holds the newest frame pushed by an asynchronous detector. Older
// unread frames are overwritten; the render loop only ever sees the latest.
type Mailbox struct {
	mu     sync.Mutex
	frame  Frame
	fresh  bool
	pushed int64
}

// Push stores f as the latest sample. Safe for concurrent use with Poll.
func (m *Mailbox) Push(f Frame) {
	m.mu.Lock()
	m.frame = f
	m.fresh = true
	m.pushed++
	m.mu.Unlock()
}

// Poll returns the latest unread sample.
func (m *Mailbox) Poll() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fresh {
		return Frame{}, false
	}
	m.fresh = false
	return m.frame, true
}

// Pushed returns the number of frames pushed so far.
func (m *Mailbox) Pushed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushed
}

// Step is one segment of a scripted gesture sequence.
type Step struct {
	Pose   string  `yaml:"pose"`   // open, fist, sword, pinch, palms or none
	Frames int     `yaml:"frames"` // Samples to emit
	Pinch  float32 `yaml:"pinch"`  // Thumb/index gap in hand sizes for pinch
	Gap    float32 `yaml:"gap"`    // Palm-center gap in hand sizes for palms
	X      float32 `yaml:"x"`
	Y      float32 `yaml:"y"`
	Every  int     `yaml:"every"` // Emit a sample every N polls (0 or 1 = every poll)
}

// Script replays a fixed gesture sequence, one sample per poll.
type Script struct {
	Name  string `yaml:"name"`
	Loop  bool   `yaml:"loop"`
	Steps []Step `yaml:"steps"`

	synth Synth
	step  int
	frame int
	polls int64
	ts    int64
}

// LoadScript reads a YAML gesture script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gesture script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML gesture script and validates its steps.
func ParseScript(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing gesture script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("gesture script %q has no steps", s.Name)
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.Frames <= 0 {
			return nil, fmt.Errorf("gesture script step %d: frames must be positive", i)
		}
		if !KnownPose(st.Pose) {
			return nil, fmt.Errorf("gesture script step %d: unknown pose %q", i, st.Pose)
		}
		if st.X == 0 && st.Y == 0 {
			st.X, st.Y = 0.5, 0.5
		}
	}
	s.synth = DefaultSynth()
	return s, nil
}

// Done reports whether a non-looping script has emitted every sample.
func (s *Script) Done() bool {
	return !s.Loop && s.step >= len(s.Steps)
}

// Length returns the total number of samples in one pass.
func (s *Script) Length() int {
	n := 0
	for _, st := range s.Steps {
		n += st.Frames
	}
	return n
}

// Poll returns the next scripted sample. Timestamps advance by one
// millisecond per poll so every sample is distinct.
func (s *Script) Poll() (Frame, bool) {
	s.polls++
	if s.step >= len(s.Steps) {
		if !s.Loop {
			return Frame{}, false
		}
		s.step = 0
	}
	st := s.Steps[s.step]
	if st.Every > 1 && s.polls%int64(st.Every) != 0 {
		return Frame{}, false
	}

	s.ts++
	f := Frame{Timestamp: s.ts, Hands: s.hands(st)}
	s.frame++
	if s.frame >= st.Frames {
		s.frame = 0
		s.step++
	}
	return f, true
}

func (s *Script) hands(st Step) []Hand {
	hands, _ := s.synth.Hands(st.Pose, st.X, st.Y, st.Pinch, st.Gap)
	return hands
}

//go:embed demo.yaml
var demoScript []byte

// DemoScript returns the built-in looping sequence that visits every mode.
func DemoScript() *Script {
	s, err := ParseScript(demoScript)
	if err != nil {
		panic(fmt.Sprintf("gesture: invalid demo script: %v", err))
	}
	return s
}
