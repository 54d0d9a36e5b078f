// Package mixer mixes an arbitrary number of independently timed and
// independently rated audio tracks into a single fixed-rate, fixed-channel
// stream of sample blocks, suitable for playback, export, or rendering back
// to a track.
//
// A Mixer is built from a Config describing the input tracks, the time range
// to mix, the output rate, channel count and sample format, and optional
// channel routing (MixerSpec) and time warping (WarpOptions). Output is
// produced by repeated Process calls in caller-specified chunk sizes; the
// produced samples are read back with Buffer or ChannelBuffer and are valid
// until the next Process call. Tracks whose native rate differs from the
// output rate, and all tracks when a warp is active, are pulled through a
// streaming RateConverter with one of four quality grades.
//
// Basic usage:
//
//	m, err := mixer.New(&mixer.Config{
//		Tracks:      tracks,
//		StopTime:    10,
//		NumChannels: 2,
//		BufferSize:  4096,
//		Interleaved: true,
//		Rate:        44100,
//		Format:      mixer.FormatInt16,
//	})
//	if err != nil {
//		return err
//	}
//	for {
//		n, err := m.Process(4096)
//		if err != nil {
//			return err
//		}
//		if n == 0 {
//			break
//		}
//		write(m.Buffer())
//	}
//
// A Mixer is not safe for concurrent use; callers that need non-blocking
// behavior should run it on a dedicated goroutine (see the render package).
package mixer
