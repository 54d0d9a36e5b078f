package track

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
)

// LoadWAV decodes a WAV file fully into memory and returns one clip per
// channel, with samples normalized to [-1, 1].
func LoadWAV(path string) ([]*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := dec.Format()
	bitDepth := int(dec.BitDepth)
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, bitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	invMaxVal := 1.0 / float64(uint64(1)<<(bitDepth-1))
	data := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = float64(v) * invMaxVal
	}

	return splitChannels(data, format.NumChannels,
		float64(format.SampleRate), baseName(path))
}

func baseName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}
