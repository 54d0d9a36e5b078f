package track

import (
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

const (
	mp3ReadChunk = 8192
	mp3Channels  = 2
)

// LoadMP3 decodes an MP3 file fully into memory and returns one clip per
// channel. go-mp3 always produces stereo 16-bit little-endian PCM.
func LoadMP3(path string) ([]*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	var data []float64
	buf := make([]byte, mp3ReadChunk)
	for {
		n, err := dec.Read(buf)
		// Bytes to interleaved samples, two bytes per int16.
		for i := 0; i+1 < n; i += 2 {
			v := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			data = append(data, float64(v)/32768.0)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	return splitChannels(data, mp3Channels, float64(dec.SampleRate()), baseName(path))
}
