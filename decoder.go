// decoder.go implements the public Decoder API: mode dispatch per packet
// TOC, packet-loss concealment, and output buffering. Grounded on the
// teacher's top-level decoder.go Decoder (NewDecoder/Decode/DecodeInt16/
// DecodeFloat32/Reset/Channels/SampleRate), adapted to drive this
// module's celt/silk/hybrid packages instead of the teacher's.

package opus

import (
	"github.com/opuscore/opus/celt"
	"github.com/opuscore/opus/hybrid"
	"github.com/opuscore/opus/rangecoder"
	"github.com/opuscore/opus/silk"
)

// Decoder decodes Opus packets into PCM. A Decoder is not safe for
// concurrent use; each goroutine needs its own instance.
type Decoder struct {
	sampleRate int
	channels   int

	silkDecoder   *silk.Decoder
	celtDecoder   *celt.Decoder
	hybridDecoder *hybrid.Decoder

	lastFrameSize int
	lastMode      Mode
	haveDecoded   bool
}

// NewDecoder constructs an Opus decoder for the given sample rate (8000,
// 12000, 16000, 24000, or 48000) and channel count (1 or 2). The sample
// rate is validated and reported by SampleRate; decoded output is at
// 48 kHz whatever rate is given.
func NewDecoder(sampleRate, channels int) (*Decoder, error) {
	if !validSampleRate(sampleRate) {
		return nil, ErrUnsupportedConfig
	}
	if !validChannels(channels) {
		return nil, ErrUnsupportedConfig
	}
	return &Decoder{
		sampleRate:    sampleRate,
		channels:      channels,
		silkDecoder:   silk.NewDecoder(channels),
		celtDecoder:   celt.NewDecoder(channels),
		hybridDecoder: hybrid.NewDecoder(channels),
		lastFrameSize: 960,
		lastMode:      ModeHybrid,
	}, nil
}

// Reset clears all decoder state, for use when starting a new stream or
// recovering from a severe stream discontinuity.
func (d *Decoder) Reset() {
	d.silkDecoder.Reset()
	d.celtDecoder.Reset()
	d.hybridDecoder.Reset()
	d.lastFrameSize = 960
	d.lastMode = ModeHybrid
	d.haveDecoded = false
}

// Channels returns the configured channel count.
func (d *Decoder) Channels() int { return d.channels }

// SampleRate returns the configured output sample rate.
func (d *Decoder) SampleRate() int { return d.sampleRate }

// DecodeFrame decodes a single Opus frame (one element of the slice
// ParsePacket returns) into float32 PCM in [-1, 1], interleaved if
// stereo. A nil or empty frame triggers packet loss concealment: silence
// of the last successfully decoded frame's size.
func (d *Decoder) DecodeFrame(frame []byte) ([]float32, error) {
	if len(frame) == 0 {
		return d.concealLoss()
	}

	toc := ParseTOC(frame[0])
	payload := frame[1:]

	// A change of mode resets the sub-decoder being switched into, so it
	// does not predict from state left over from its last use.
	if d.haveDecoded && toc.Mode != d.lastMode {
		switch toc.Mode {
		case ModeSILK:
			d.silkDecoder.Reset()
		case ModeCELT:
			d.celtDecoder.Reset()
		case ModeHybrid:
			d.hybridDecoder.Reset()
		}
	}

	var out []float32
	var err error
	switch toc.Mode {
	case ModeSILK:
		out, err = d.decodeSILKFrame(payload, toc)
	case ModeCELT:
		out, err = d.decodeCELTFrame(payload, toc)
	case ModeHybrid:
		out, err = d.decodeHybridFrame(payload, toc)
	default:
		return nil, ErrInvalidTOC
	}
	if err != nil {
		return nil, err
	}

	d.lastFrameSize = toc.FrameSize
	d.lastMode = toc.Mode
	d.haveDecoded = true
	return out, nil
}

func (d *Decoder) decodeSILKFrame(payload []byte, toc TOC) ([]float32, error) {
	bw, err := silkBandwidthFrom(toc.Bandwidth)
	if err != nil {
		return nil, err
	}
	rd := rangecoder.New(payload)
	return d.silkDecoder.DecodeFrame(rd, bw, toc.FrameSize, true)
}

func (d *Decoder) decodeCELTFrame(payload []byte, toc TOC) ([]float32, error) {
	rd := rangecoder.New(payload)
	samples, err := d.celtDecoder.DecodeFrame(rd, toc.FrameSize, 48000, len(payload))
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(samples))
	for i, v := range samples {
		out[i] = float32(v)
	}
	return out, nil
}

func (d *Decoder) decodeHybridFrame(payload []byte, toc TOC) ([]float32, error) {
	return d.hybridDecoder.DecodeFrame(payload, toc.FrameSize)
}

// concealLoss synthesizes output for a missing frame. This module does
// not implement libopus's waveform-continuation PLC (Non-goal); it
// outputs silence of the last known frame size and channel count, leaving
// sub-decoder history untouched so the next real frame still predicts
// from genuine state.
func (d *Decoder) concealLoss() ([]float32, error) {
	n := d.lastFrameSize * d.channels
	return make([]float32, n), nil
}

func silkBandwidthFrom(bw Bandwidth) (silk.Bandwidth, error) {
	switch bw {
	case BandwidthNarrowband:
		return silk.Narrowband, nil
	case BandwidthMediumband:
		return silk.Mediumband, nil
	case BandwidthWideband:
		return silk.Wideband, nil
	default:
		return 0, ErrInvalidTOC
	}
}

// DecodePacket splits data into its constituent frames (per ParsePacket)
// and decodes each in turn, concatenating their PCM. A nil or empty data
// triggers whole-packet loss concealment.
func (d *Decoder) DecodePacket(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return d.concealLoss()
	}
	toc := ParseTOC(data[0])
	frames, err := ParsePacket(toc, data[1:])
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, toc.FrameSize*d.channels*len(frames))
	for _, f := range frames {
		full := append([]byte{data[0]}, f...)
		samples, err := d.DecodeFrame(full)
		if err != nil {
			return nil, err
		}
		out = append(out, samples...)
	}
	return out, nil
}

// DecodeInt16 decodes a packet and converts the result to int16 PCM with
// clamping, applying libopus-style soft clipping first.
func (d *Decoder) DecodeInt16(data []byte) ([]int16, error) {
	samples, err := d.DecodePacket(data)
	if err != nil {
		return nil, err
	}
	declip := make([]float32, d.channels)
	n := len(samples) / d.channels
	opusPCMSoftClip(samples, n, d.channels, declip)

	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = float32ToInt16(s)
	}
	return out, nil
}
