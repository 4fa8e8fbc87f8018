package analyser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"orcavox/internal/analyser"
)

type stubSource struct {
	frame []byte
	err   error
}

func (s *stubSource) Frame() ([]byte, error) { return s.frame, s.err }

func TestAnalyser_SmoothsTowardFrame(t *testing.T) {
	src := &stubSource{frame: []byte{100, 100}}
	a := analyser.New(src, 2)

	a.Update()
	data := a.Data()
	// 0.8*0 + 0.2*100
	assert.Equal(t, byte(20), data[0])

	a.Update()
	// 0.8*20 + 0.2*100
	assert.Equal(t, byte(36), a.Data()[0])
}

func TestAnalyser_ConvergesToSteadyFrame(t *testing.T) {
	src := &stubSource{frame: []byte{200}}
	a := analyser.New(src, 1)

	for i := 0; i < 100; i++ {
		a.Update()
	}
	assert.Equal(t, byte(200), a.Data()[0])
	assert.Equal(t, byte(200), a.Peak())
	assert.InDelta(t, 200.0, a.Average(), 0.5)
}

func TestAnalyser_ShortFrameZeroFills(t *testing.T) {
	src := &stubSource{frame: []byte{100}}
	a := analyser.New(src, 4)

	a.Update()
	data := a.Data()
	assert.Equal(t, byte(20), data[0])
	assert.Equal(t, byte(0), data[1])
	assert.Equal(t, byte(0), data[3])
}

func TestAnalyser_DisconnectedDecaysToSilence(t *testing.T) {
	src := &stubSource{frame: []byte{250, 250}}
	a := analyser.New(src, 2)
	for i := 0; i < 50; i++ {
		a.Update()
	}
	assert.Equal(t, byte(250), a.Peak())

	a.SetSource(nil)
	for i := 0; i < 100; i++ {
		a.Update()
	}
	assert.Equal(t, byte(0), a.Peak())
	assert.InDelta(t, 0.0, a.Average(), 1e-3)
}

func TestAnalyser_SourceErrorTreatedAsSilence(t *testing.T) {
	src := &stubSource{frame: []byte{100}}
	a := analyser.New(src, 1)
	a.Update()
	assert.Equal(t, byte(20), a.Data()[0])

	src.err = errors.New("transport gone")
	a.Update()
	// 0.8*20 + 0.2*0
	assert.Equal(t, byte(16), a.Data()[0])
}

func TestAnalyser_DefaultSize(t *testing.T) {
	a := analyser.New(nil, 0)
	assert.Len(t, a.Data(), 64)
}
