package track

import (
	"fmt"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// LoadOgg decodes an Ogg Vorbis file fully into memory and returns one
// clip per channel.
func LoadOgg(path string) ([]*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	samples, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	data := make([]float64, len(samples))
	for i, v := range samples {
		data[i] = float64(v)
	}

	return splitChannels(data, format.Channels, float64(format.SampleRate), baseName(path))
}
