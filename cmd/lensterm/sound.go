package main

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	// maxQueuedBlips caps overlapping blips so a capture burst stays a chirp.
	maxQueuedBlips = 6
)

// blipGenerator is a sine tone with a linear fade-out.
type blipGenerator struct {
	freq  float64
	gain  float64
	pos   int
	total int
	sr    beep.SampleRate
}

func newBlipGenerator(sr beep.SampleRate, freq float64, dur time.Duration, gain float64) *blipGenerator {
	return &blipGenerator{freq: freq, gain: gain, total: sr.N(dur), sr: sr}
}

func (g *blipGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.total {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)
		fade := 1 - float64(g.pos)/float64(g.total)
		v := g.gain * fade * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *blipGenerator) Err() error { return nil }

// SoundManager plays a short blip when rays cross the event horizon.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	freq        float64
	dur         time.Duration
	initialized bool
}

// NewSoundManager creates a manager for blips of freq Hz lasting dur.
func NewSoundManager(freq float64, dur time.Duration) *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
		freq:  freq,
		dur:   dur,
	}
}

// Initialize opens the audio device.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences pending blips and closes the audio device.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// PlayAbsorptions plays one blip for a frame in which n rays were absorbed.
// Louder for bigger bursts, pitched up slightly so bursts are audible.
func (sm *SoundManager) PlayAbsorptions(n int) {
	if n <= 0 {
		return
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	gain, freq := blipShape(n, sm.freq)
	blip := beep.Take(sampleRate.N(sm.dur), newBlipGenerator(sampleRate, freq, sm.dur, gain))

	speaker.Lock()
	if sm.mixer.Len() < maxQueuedBlips {
		sm.mixer.Add(blip)
	}
	speaker.Unlock()
}

// blipShape maps an absorption count to blip gain and frequency.
func blipShape(n int, base float64) (gain, freq float64) {
	gain = math.Min(0.6, 0.15+0.05*math.Log2(float64(n)))
	freq = base * (1 + 0.1*math.Min(4, math.Log2(float64(n))))
	return gain, freq
}
