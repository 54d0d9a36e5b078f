package mixer

// MixerSpec is an explicit track-to-channel routing matrix. Entry (t, c)
// true means input track t contributes to output channel c, overriding the
// default pan/down-mix behavior. Zero-mapped tracks are legal and
// contribute silence.
//
// A MixerSpec is owned by the caller and referenced by the mixer; it must
// not be modified during a mix session.
type MixerSpec struct {
	numTracks      int
	numChannels    int
	maxNumChannels int
	routes         [][]bool
}

// NewMixerSpec creates a routing matrix for numTracks tracks and up to
// maxNumChannels output channels, initially using all of them. The default
// map routes track t to channel t mod numChannels.
func NewMixerSpec(numTracks, maxNumChannels int) *MixerSpec {
	s := &MixerSpec{
		numTracks:      numTracks,
		numChannels:    maxNumChannels,
		maxNumChannels: maxNumChannels,
	}
	s.alloc()
	return s
}

func (s *MixerSpec) alloc() {
	s.routes = make([][]bool, s.numTracks)
	for t := range s.routes {
		s.routes[t] = make([]bool, s.maxNumChannels)
		for c := 0; c < s.numChannels; c++ {
			s.routes[t][c] = t%s.numChannels == c
		}
	}
}

// NumTracks returns the number of tracks the matrix routes.
func (s *MixerSpec) NumTracks() int { return s.numTracks }

// NumChannels returns the active number of output channels.
func (s *MixerSpec) NumChannels() int { return s.numChannels }

// MaxNumChannels returns the allocated channel capacity.
func (s *MixerSpec) MaxNumChannels() int { return s.maxNumChannels }

// SetNumChannels resizes the active channel count within the allocated
// maximum. Resizing reallocates the matrix and restores the default map.
// It reports whether the new count was accepted.
func (s *MixerSpec) SetNumChannels(numChannels int) bool {
	if numChannels < 1 || numChannels > s.maxNumChannels {
		return false
	}
	if numChannels == s.numChannels {
		return true
	}
	s.numChannels = numChannels
	s.alloc()
	return true
}

// Set marks whether track t contributes to channel c. It reports whether
// the indices were in range.
func (s *MixerSpec) Set(t, c int, routed bool) bool {
	if t < 0 || t >= s.numTracks || c < 0 || c >= s.numChannels {
		return false
	}
	s.routes[t][c] = routed
	return true
}

// Routed reports whether track t contributes to channel c.
func (s *MixerSpec) Routed(t, c int) bool {
	if t < 0 || t >= s.numTracks || c < 0 || c >= s.numChannels {
		return false
	}
	return s.routes[t][c]
}

// Clone returns a deep copy of the spec.
func (s *MixerSpec) Clone() *MixerSpec {
	c := &MixerSpec{
		numTracks:      s.numTracks,
		numChannels:    s.numChannels,
		maxNumChannels: s.maxNumChannels,
		routes:         make([][]bool, s.numTracks),
	}
	for t := range s.routes {
		c.routes[t] = append([]bool(nil), s.routes[t]...)
	}
	return c
}
