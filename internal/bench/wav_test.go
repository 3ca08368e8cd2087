package bench

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWav builds a minimal PCM WAV: 16kHz mono 16-bit, dataLen bytes.
// extraChunk, when non-empty, is inserted between fmt and data as a
// LIST chunk (odd sizes get the RIFF pad byte).
func writeWav(t *testing.T, dataLen uint32, extraChunk []byte) string {
	t.Helper()

	var sampleRate uint32 = 16000
	var byteRate uint32 = sampleRate * 2

	buf := make([]byte, 0, 44+int(dataLen))
	le := binary.LittleEndian

	buf = append(buf, "RIFF"...)
	buf = le.AppendUint32(buf, 36+dataLen)
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = le.AppendUint32(buf, 16)
	buf = le.AppendUint16(buf, 1) // PCM
	buf = le.AppendUint16(buf, 1) // mono
	buf = le.AppendUint32(buf, sampleRate)
	buf = le.AppendUint32(buf, byteRate)
	buf = le.AppendUint16(buf, 2)  // block align
	buf = le.AppendUint16(buf, 16) // bits per sample

	if len(extraChunk) > 0 {
		buf = append(buf, "LIST"...)
		buf = le.AppendUint32(buf, uint32(len(extraChunk)))
		buf = append(buf, extraChunk...)
		if len(extraChunk)%2 == 1 {
			buf = append(buf, 0)
		}
	}

	buf = append(buf, "data"...)
	buf = le.AppendUint32(buf, dataLen)
	buf = append(buf, make([]byte, dataLen)...)

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestWavDuration(t *testing.T) {
	// 64000 bytes at 32000 bytes/s is two seconds.
	path := writeWav(t, 64000, nil)
	dur, err := WavDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, dur, 1e-9)
}

func TestWavDurationSkipsOddSizedChunks(t *testing.T) {
	// An odd-sized chunk before data must not misalign the walk.
	path := writeWav(t, 32000, []byte("INFO!"))
	dur, err := WavDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dur, 1e-9)
}

func TestWavDurationRejectsNonWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is definitely not a riff file"), 0o644))

	_, err := WavDuration(path)
	require.Error(t, err)
}
