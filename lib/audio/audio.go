// Package audio turns the raw PCM returned by speech synthesis into something
// a browser can play.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"
)

var ErrNoAudio = errors.New("no audio to play")

const bitsPerSample = 16

// Clip is signed 16-bit little-endian PCM.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

func (c Clip) Duration() float64 {
	frame := c.Channels * bitsPerSample / 8
	if frame == 0 || c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.PCM)/frame) / float64(c.SampleRate)
}

// WAV wraps the PCM in a canonical 44-byte RIFF header.
func (c Clip) WAV() []byte {
	blockAlign := c.Channels * bitsPerSample / 8
	dataLen := len(c.PCM) - len(c.PCM)%max(blockAlign, 1)

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(c.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(c.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(c.SampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(c.PCM[:dataLen])
	return buf.Bytes()
}

// Player plays a clip once. The returned channel closes when playback has
// ended, whether it finished or failed part way.
type Player interface {
	Play(ctx context.Context, clip Clip) (<-chan struct{}, error)
}

// StreamPlayer "plays" by streaming the clip as WAV to a client.
type StreamPlayer struct {
	W           io.Writer
	BeforeWrite func(size int)

	mu  sync.Mutex
	err error
}

func (p *StreamPlayer) Play(ctx context.Context, clip Clip) (<-chan struct{}, error) {
	if len(clip.PCM) == 0 {
		return nil, ErrNoAudio
	}
	done := make(chan struct{})
	wav := clip.WAV()

	go func() {
		defer close(done)
		if ctx.Err() != nil {
			p.setErr(ctx.Err())
			return
		}
		if p.BeforeWrite != nil {
			p.BeforeWrite(len(wav))
		}
		_, err := p.W.Write(wav)
		p.setErr(errors.Wrap(err, "streaming audio"))
	}()
	return done, nil
}

// Err is the outcome of the last Play, valid once its channel has closed.
func (p *StreamPlayer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *StreamPlayer) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}
