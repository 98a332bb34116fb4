package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClip_WAVHeader(t *testing.T) {
	pcm := make([]byte, 48000) // one second of 24kHz mono
	clip := Clip{PCM: pcm, SampleRate: 24000, Channels: 1}

	wav := clip.WAV()
	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.InDelta(t, 1.0, clip.Duration(), 0.0001)
}

func TestClip_WAVDropsPartialFrame(t *testing.T) {
	clip := Clip{PCM: []byte{1, 2, 3}, SampleRate: 24000, Channels: 1}
	wav := clip.WAV()
	assert.Len(t, wav, 46)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestStreamPlayer_SignalsOnce(t *testing.T) {
	var out bytes.Buffer
	var announced int
	p := &StreamPlayer{W: &out, BeforeWrite: func(n int) { announced = n }}

	done, err := p.Play(context.Background(), Clip{PCM: []byte{0, 0, 1, 0}, SampleRate: 24000, Channels: 1})
	require.NoError(t, err)

	<-done
	_, open := <-done
	assert.False(t, open)
	assert.NoError(t, p.Err())
	assert.Equal(t, 48, out.Len())
	assert.Equal(t, 48, announced)
}

func TestStreamPlayer_NoAudio(t *testing.T) {
	p := &StreamPlayer{W: &bytes.Buffer{}}
	_, err := p.Play(context.Background(), Clip{SampleRate: 24000, Channels: 1})
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestStreamPlayer_CancelledContext(t *testing.T) {
	var out bytes.Buffer
	p := &StreamPlayer{W: &out}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done, err := p.Play(ctx, Clip{PCM: []byte{0, 0}, SampleRate: 24000, Channels: 1})
	require.NoError(t, err)
	<-done
	assert.ErrorIs(t, p.Err(), context.Canceled)
	assert.Zero(t, out.Len())
}
