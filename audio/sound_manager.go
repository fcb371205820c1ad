// Package audio plays short feedback cues for the interaction loop
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// Cue timings
const (
	ChimeNote    = 60 * time.Millisecond
	ChimeGap     = 20 * time.Millisecond
	BuzzDuration = 150 * time.Millisecond
)

// SoundManager plays the target-commit chime and the control-failure buzz
// Every method is a no-op until Initialize succeeds, so the loop runs without an audio device
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return errors.Wrap(err, "init speaker")
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Enabled reports whether cues reach a device
func (sm *SoundManager) Enabled() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	// beep has no speaker shutdown that allows a later Init, clearing the mixer silences it
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// TargetCommitted plays a rising two-note chime
func (sm *SoundManager) TargetCommitted() {
	sm.play(Chime(sampleRate))
}

// ControlFailed plays a short low-pitched buzz
func (sm *SoundManager) ControlFailed() {
	sm.play(Buzz(sampleRate))
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Chime returns two sine notes a fifth apart separated by a short gap
func Chime(sr beep.SampleRate) beep.Streamer {
	low, err := generators.SineTone(sr, 660)
	if err != nil {
		return nil
	}
	high, err := generators.SineTone(sr, 990)
	if err != nil {
		return nil
	}
	return beep.Seq(
		attenuate(beep.Take(sr.N(ChimeNote), low), 0.2),
		beep.Silence(sr.N(ChimeGap)),
		attenuate(beep.Take(sr.N(ChimeNote), high), 0.2),
	)
}

// Buzz returns the failure cue
func Buzz(sr beep.SampleRate) beep.Streamer {
	return beep.Take(sr.N(BuzzDuration), NewBuzzGenerator(sr, 120))
}

// attenuate scales a streamer's amplitude
func attenuate(s beep.Streamer, gain float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
		return n, ok
	})
}

// BuzzGenerator generates a harsh low buzz
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz generator at the given fundamental
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fundamental plus two harmonics
		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		// 20ms fade in
		envelope := math.Min(t/0.02, 1.0)
		sample *= envelope * 0.2

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}
