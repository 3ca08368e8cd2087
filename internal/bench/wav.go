package bench

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WavDuration reads the duration of an uncompressed PCM WAV file from
// its RIFF header. Used only to report fixture length before a
// benchmark; non-WAV fixtures simply skip the report.
func WavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return 0, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a wav file")
	}

	var byteRate uint32

	// Walk chunks until we have both fmt (byte rate) and data (size).
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return 0, fmt.Errorf("read chunk header: %w", err)
		}
		chunkID := string(hdr[0:4])
		chunkSize := binary.LittleEndian.Uint32(hdr[4:8])
		// RIFF chunks are word-aligned: odd sizes carry a pad byte.
		pad := int64(chunkSize % 2)

		switch chunkID {
		case "fmt ":
			var fmtChunk [16]byte
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return 0, fmt.Errorf("read fmt chunk: %w", err)
			}
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if rest := int64(chunkSize) - 16 + pad; rest > 0 {
				if _, err := f.Seek(rest, io.SeekCurrent); err != nil {
					return 0, err
				}
			}
		case "data":
			if byteRate == 0 {
				return 0, fmt.Errorf("data chunk before fmt chunk")
			}
			return float64(chunkSize) / float64(byteRate), nil
		default:
			if _, err := f.Seek(int64(chunkSize)+pad, io.SeekCurrent); err != nil {
				return 0, err
			}
		}
	}
}
