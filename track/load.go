package track

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Load decodes an audio file by extension. Supported: .wav, .mp3, .ogg
// and .oga.
func Load(path string) ([]*Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return LoadWAV(path)
	case ".mp3":
		return LoadMP3(path)
	case ".ogg", ".oga":
		return LoadOgg(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", path)
	}
}
