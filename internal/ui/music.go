package ui

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// MusicPlayer loops a synthesized rendition of Korobeiniki. The track
// is rendered once into a PCM buffer with the same tone renderer the
// effect sounds use, then looped by a wrapping reader.
type MusicPlayer struct {
	ctx     *oto.Context
	mu      sync.Mutex
	player  *oto.Player
	volume  float64
	enabled bool
	track   []byte
}

func NewMusicPlayer(ctx *oto.Context, volume float64, enabled bool) *MusicPlayer {
	if ctx == nil {
		return nil
	}
	return &MusicPlayer{
		ctx:     ctx,
		volume:  clampVolume(volume),
		enabled: enabled,
	}
}

func (m *MusicPlayer) SetVolume(volume float64) {
	m.mu.Lock()
	m.volume = clampVolume(volume)
	m.mu.Unlock()
}

func (m *MusicPlayer) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	shouldStop := !enabled
	m.mu.Unlock()
	if shouldStop {
		m.Stop()
	}
}

// Start begins looping the theme; it is a no-op while already playing
// or when music is disabled.
func (m *MusicPlayer) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.player != nil {
		return
	}
	if m.track == nil {
		m.track = renderToneSequence(korobeiniki(), audioSampleRate, 1)
	}
	reader := &loopReader{data: m.track, getVolume: m.volumeValue}
	player := m.ctx.NewPlayer(reader)
	player.Play()
	m.player = player
}

func (m *MusicPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player != nil {
		_ = m.player.Close()
		m.player = nil
	}
}

func (m *MusicPlayer) volumeValue() float64 {
	m.mu.Lock()
	volume := m.volume
	m.mu.Unlock()
	return volume
}

// loopReader serves the track endlessly and applies the master volume
// to each 16-bit sample on the way out.
type loopReader struct {
	data      []byte
	pos       int
	getVolume func() float64
}

func (l *loopReader) Read(p []byte) (int, error) {
	if len(l.data) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := 0
	for n < len(p) {
		if l.pos >= len(l.data) {
			l.pos = 0
		}
		copied := copy(p[n:], l.data[l.pos:])
		l.pos += copied
		n += copied
	}
	volume := clampVolume(l.getVolume()) * 0.5
	for i := 0; i+1 < n; i += 2 {
		sample := int16(uint16(p[i]) | uint16(p[i+1])<<8)
		scaled := int16(float64(sample) * volume)
		p[i] = byte(scaled)
		p[i+1] = byte(scaled >> 8)
	}
	return n, nil
}

// Note frequencies used by the theme.
const (
	noteA4 = 440.00
	noteB4 = 493.88
	noteC5 = 523.25
	noteD5 = 587.33
	noteE5 = 659.25
	noteF5 = 698.46
	noteG5 = 783.99
	noteA5 = 880.00
	rest   = 0
)

// korobeiniki returns the melody as a tone sequence; one beat is
// 280ms.
func korobeiniki() []toneSpec {
	beat := 280 * time.Millisecond
	notes := []struct {
		freq  float64
		beats float64
	}{
		{noteE5, 1}, {noteB4, 0.5}, {noteC5, 0.5}, {noteD5, 1}, {noteC5, 0.5}, {noteB4, 0.5},
		{noteA4, 1}, {noteA4, 0.5}, {noteC5, 0.5}, {noteE5, 1}, {noteD5, 0.5}, {noteC5, 0.5},
		{noteB4, 1.5}, {noteC5, 0.5}, {noteD5, 1}, {noteE5, 1},
		{noteC5, 1}, {noteA4, 1}, {noteA4, 2},
		{rest, 0.5}, {noteD5, 1}, {noteF5, 0.5}, {noteA5, 1}, {noteG5, 0.5}, {noteF5, 0.5},
		{noteE5, 1.5}, {noteC5, 0.5}, {noteE5, 1}, {noteD5, 0.5}, {noteC5, 0.5},
		{noteB4, 1}, {noteB4, 0.5}, {noteC5, 0.5}, {noteD5, 1}, {noteE5, 1},
		{noteC5, 1}, {noteA4, 1}, {noteA4, 2},
	}
	sequence := make([]toneSpec, 0, len(notes))
	for _, note := range notes {
		sequence = append(sequence, toneSpec{
			frequency: note.freq,
			duration:  time.Duration(note.beats * float64(beat)),
			volume:    0.22,
		})
	}
	return sequence
}
