// Command mixdown mixes multiple audio files into one WAV file or plays
// the mix on the default audio device.
//
// Usage:
//
//	mixdown -o mix.wav drums.wav bass.mp3 pad.ogg
//	mixdown -rate 48 -bits 24 -o mix.wav take1.wav take2.wav
//	mixdown -play intro.wav loop.ogg
//
// Each input contributes one track per channel. Stereo files keep their
// left/right placement; mono files are routed to every output channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	mixer "github.com/tphakala/go-audio-mixer"
	pa "github.com/tphakala/go-audio-mixer/portaudio"
	"github.com/tphakala/go-audio-mixer/render"
	"github.com/tphakala/go-audio-mixer/track"
)

const (
	// Conversion constants
	kHzToHz = 1000

	// CLI defaults
	defaultRateKHz  = 44.1
	defaultChannels = 2
	defaultBitDepth = 16
	minRequiredArgs = 1

	// Supported output bit depths
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rateKHz := flag.Float64("rate", defaultRateKHz, "Output sample rate in kHz (e.g., 16, 44.1, 48, 96)")
	channels := flag.Int("channels", defaultChannels, "Output channel count")
	bits := flag.Int("bits", defaultBitDepth, "Output bit depth: 16, 24, or 32 (float)")
	quality := flag.String("quality", "best", "Resampling quality: low, medium, high, best")
	output := flag.String("o", "", "Output WAV file path")
	play := flag.Bool("play", false, "Play the mix instead of writing a file")
	gain := flag.Float64("gain", 1.0, "Master gain applied to every track")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input1 input2 ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -o mix.wav a.wav b.mp3          # Mix two files to WAV\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rate 48 -o mix.wav *.wav       # Mix at 48kHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -play a.ogg b.ogg               # Play the mix\n", os.Args[0])
		return fmt.Errorf("no input files")
	}
	if !*play && *output == "" {
		return fmt.Errorf("either -o or -play is required")
	}

	format, err := parseFormat(*bits)
	if err != nil {
		return err
	}
	q, err := mixer.ParseQuality(*quality)
	if err != nil {
		return err
	}

	tracks, stopTime, err := loadTracks(args, *gain, *verbose)
	if err != nil {
		return err
	}

	rate := *rateKHz * kHzToHz
	m, err := mixer.New(&mixer.Config{
		Tracks:      tracks,
		StopTime:    stopTime,
		NumChannels: *channels,
		Interleaved: true,
		Rate:        rate,
		Format:      format,
		HighQuality: true,
		Quality:     mixer.QualityConfig{Fast: q, Best: q},
	})
	if err != nil {
		return err
	}

	var sink render.Sink
	if *play {
		sink = pa.NewSink(0)
	} else {
		sink = render.NewWAVSink(*output)
	}
	session, err := render.NewSession(m, sink)
	if err != nil {
		return err
	}

	start := time.Now()
	frames, err := session.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if *play {
		fmt.Printf("Played %d tracks, %.2fs of audio\n", len(tracks), float64(frames)/rate)
		return nil
	}
	fmt.Printf("Mixed %d tracks -> %s\n", len(tracks), filepath.Base(*output))
	fmt.Printf("  %.0f Hz, %d channels, %d-bit, %d frames\n", rate, *channels, *bits, frames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(), float64(frames)/rate/elapsed.Seconds())
	return nil
}

func parseFormat(bits int) (mixer.SampleFormat, error) {
	switch bits {
	case bitsPerSample16:
		return mixer.FormatInt16, nil
	case bitsPerSample24:
		return mixer.FormatInt24, nil
	case bitsPerSample32:
		return mixer.FormatFloat32, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d (use 16, 24 or 32)", bits)
	}
}

// loadTracks decodes every input file and returns the mixer tracks plus
// the latest clip end time.
func loadTracks(paths []string, gain float64, verbose bool) ([]mixer.Track, float64, error) {
	var tracks []mixer.Track
	stopTime := 0.0
	for _, path := range paths {
		clips, err := track.Load(path)
		if err != nil {
			return nil, 0, err
		}
		for _, c := range clips {
			c.SetGain(gain)
			if c.EndTime() > stopTime {
				stopTime = c.EndTime()
			}
			tracks = append(tracks, c)
		}
		if verbose {
			log.Printf("Loaded %s: %d channels, %.0f Hz, %.2fs",
				path, len(clips), clips[0].Rate(), clips[0].EndTime())
		}
	}
	return tracks, stopTime, nil
}
