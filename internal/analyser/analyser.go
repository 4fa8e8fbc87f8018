package analyser

import (
	"math"
	"sync"
)

// smoothing is the exponential weight of the previous frame; higher means
// slower band movement.
const smoothing = 0.8

// FrameSource supplies raw 8-bit frequency band frames from the audio
// transport. A source may return fewer bands than requested; missing bands
// read as silence.
type FrameSource interface {
	Frame() ([]byte, error)
}

// Analyser maintains a fixed-length band array smoothed across frames,
// feeding whatever visualization the host renders. A disconnected or
// failing source decays the bands toward zero instead of freezing them.
type Analyser struct {
	mu     sync.Mutex
	source FrameSource
	bands  []float64
}

// New creates an Analyser with size bands, initially silent.
func New(source FrameSource, size int) *Analyser {
	if size <= 0 {
		size = 64
	}
	return &Analyser{source: source, bands: make([]float64, size)}
}

// SetSource swaps the frame source; nil disconnects.
func (a *Analyser) SetSource(source FrameSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = source
}

// Update pulls one frame and folds it into the band array with
// exponential smoothing.
func (a *Analyser) Update() {
	a.mu.Lock()
	defer a.mu.Unlock()

	var frame []byte
	if a.source != nil {
		if f, err := a.source.Frame(); err == nil {
			frame = f
		}
	}

	for i := range a.bands {
		var target float64
		if i < len(frame) {
			target = float64(frame[i])
		}
		a.bands[i] = smoothing*a.bands[i] + (1-smoothing)*target
	}
}

// Data returns the current band values as 8-bit samples.
func (a *Analyser) Data() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]byte, len(a.bands))
	for i, v := range a.bands {
		out[i] = byte(math.Min(255, math.Round(v)))
	}
	return out
}

// Peak returns the loudest current band.
func (a *Analyser) Peak() byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	var peak float64
	for _, v := range a.bands {
		if v > peak {
			peak = v
		}
	}
	return byte(math.Min(255, math.Round(peak)))
}

// Average returns the mean band level.
func (a *Analyser) Average() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.bands) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.bands {
		sum += v
	}
	return sum / float64(len(a.bands))
}
