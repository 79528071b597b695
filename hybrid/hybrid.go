// Package hybrid implements Opus Hybrid mode decoding (RFC 6716 Section
// 4.4): SILK at wideband over the shared range decoder's first portion,
// CELT over the same decoder continuing from band 17, summed sample by
// sample at the target 48kHz rate.
package hybrid

import (
	"errors"

	"github.com/opuscore/opus/celt"
	"github.com/opuscore/opus/rangecoder"
	"github.com/opuscore/opus/silk"
)

// ErrInvalidFrameSize is returned for a frame size hybrid mode doesn't
// support; RFC 6716 restricts hybrid mode to 10ms and 20ms frames.
var ErrInvalidFrameSize = errors.New("hybrid: invalid frame size")

// celtStartBand is the first CELT band hybrid mode decodes, leaving bands
// 0-16 (0-8kHz) to SILK, per spec.md's "Shared entropy coder in hybrid
// mode" design note.
const celtStartBand = 17

// Decoder wraps one SILK decoder and one CELT decoder sharing a single
// range-coder bitstream. Grounded on the teacher's hybrid/hybrid.go and
// hybrid/decoder.go Decoder, condensed from the teacher's
// resampler-backed multi-path struct (mono/stereo/PLC/bandwidth-transition
// variants) to the single shared-range-decoder handoff spec.md's hybrid
// section actually requires.
type Decoder struct {
	channels int
	silk     *silk.Decoder
	celt     *celt.Decoder
}

// NewDecoder constructs a Hybrid decoder for 1 or 2 channels.
func NewDecoder(channels int) *Decoder {
	return &Decoder{
		channels: channels,
		silk:     silk.NewDecoder(channels),
		celt:     celt.NewDecoder(channels),
	}
}

// Reset clears both sub-decoders' state, e.g. after packet loss or a mode
// switch into hybrid.
func (d *Decoder) Reset() {
	d.silk.Reset()
	d.celt.Reset()
}

func validFrameSize(frameSize int) bool {
	return frameSize == 480 || frameSize == 960
}

// DecodeFrame decodes one hybrid frame from frameBytes of packet payload
// (TOC already stripped) and returns frameSize samples (interleaved if
// stereo) at 48kHz. SILK decodes first over the shared decoder at 16kHz
// native rate, its output is upsampled to 48kHz by linear interpolation
// (spec.md's Open Question on the exact resampler is left undecided;
// DESIGN.md records this choice), CELT then continues over the same
// decoder with startBand=17 and decodes directly at 48kHz, and the two
// signals are summed with saturation to the PCM range.
func (d *Decoder) DecodeFrame(data []byte, frameSize int) ([]float32, error) {
	if !validFrameSize(frameSize) {
		return nil, ErrInvalidFrameSize
	}

	rd := rangecoder.New(data)

	silkSamples := frameSize / 3 // 48kHz -> 16kHz native SILK rate
	silkOut, err := d.silk.DecodeFrame(rd, silk.Wideband, silkSamples, true)
	if err != nil {
		return nil, err
	}
	silkUp := upsampleLinear(silkOut, d.channels, frameSize)

	d.celt.SetBandRange(celtStartBand, celt.MaxBands)
	celtOut, err := d.celt.DecodeFrame(rd, frameSize, 48000, len(data))
	if err != nil {
		return nil, err
	}

	out := make([]float32, frameSize*d.channels)
	for i := range out {
		v := float64(silkUp[i]) + float64(celtOut[i])
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = float32(v)
	}
	return out, nil
}

// upsampleLinear resamples interleaved multi-channel samples from their
// native SILK rate up to the target sample count by linear interpolation,
// the documented stand-in for a full polyphase resampler (see DESIGN.md).
func upsampleLinear(in []float32, channels, targetFrames int) []float32 {
	srcFrames := len(in) / channels
	out := make([]float32, targetFrames*channels)
	if srcFrames == 0 {
		return out
	}
	ratio := float64(srcFrames) / float64(targetFrames)
	for t := 0; t < targetFrames; t++ {
		pos := float64(t) * ratio
		i0 := int(pos)
		if i0 >= srcFrames-1 {
			i0 = srcFrames - 2
			if i0 < 0 {
				i0 = 0
			}
		}
		i1 := i0 + 1
		if i1 >= srcFrames {
			i1 = srcFrames - 1
		}
		frac := pos - float64(i0)
		if frac > 1 {
			frac = 1
		}
		for ch := 0; ch < channels; ch++ {
			a := float64(in[i0*channels+ch])
			b := float64(in[i1*channels+ch])
			out[t*channels+ch] = float32(a + (b-a)*frac)
		}
	}
	return out
}
