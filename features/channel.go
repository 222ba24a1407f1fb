package features

import (
	"fmt"
	"strings"
)

// Channel names a feature source.
type Channel string

const (
	F0              Channel = "f0"
	F0Mask          Channel = "f0_mask"
	MGC             Channel = "mgc"
	Spectrum        Channel = "spectrum"
	Voicing         Channel = "voicing_str"
	Transcripts     Channel = "transcripts"
	TranscriptsMask Channel = "transcripts_mask"
	StartFlag       Channel = "start_flag"
	Voiced          Channel = "voiced"
)

// AllChannels lists every channel a segment can carry, in output order.
var AllChannels = []Channel{F0, F0Mask, MGC, Spectrum, Voicing, Transcripts, TranscriptsMask, StartFlag, Voiced}

// DefaultSources is the output subset used when none is requested.
var DefaultSources = []Channel{F0, F0Mask, Spectrum, StartFlag, Voiced, Transcripts, TranscriptsMask}

// ParseChannel resolves a source name.
func ParseChannel(name string) (Channel, error) {
	c := Channel(strings.TrimSpace(name))
	for _, known := range AllChannels {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", name)
}

// ParseChannels resolves a list of source names, rejecting duplicates.
func ParseChannels(names []string) ([]Channel, error) {
	out := make([]Channel, 0, len(names))
	seen := make(map[Channel]bool, len(names))
	for _, n := range names {
		c, err := ParseChannel(n)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate source %q", n)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// IsTimeSeries reports whether the channel is indexed by time step.
func (c Channel) IsTimeSeries() bool {
	switch c {
	case Transcripts, TranscriptsMask:
		return false
	}
	return true
}

// IsFrameFeature reports whether the channel is an acoustic feature read from
// the dataset (as opposed to masks and flags derived by the pipeline).
func (c Channel) IsFrameFeature() bool {
	switch c {
	case F0, MGC, Spectrum, Voicing:
		return true
	}
	return false
}
