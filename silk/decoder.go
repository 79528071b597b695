package silk

import (
	"math"

	"github.com/opuscore/opus/rangecoder"
)

const (
	maxLPCOrder  = 16
	ltpOrder     = 5
	shellBlockN  = 16
	historyLen   = 320 + maxLPCOrder
	maxSubframes = 4
)

// channelState persists across frames for one SILK logical channel (mid or
// side), per spec.md's per-lifetime state list: previous gain index for
// delta coding, previous LSF for interpolation and prediction, previous
// pitch lag, the LCG seed for excitation sign inversion, and the output
// history the LTP filter looks back into.
type channelState struct {
	haveDecoded      bool
	previousLogGain  int
	previousLSF      []float64 // radians, length == lpcOrder
	previousPitchLag int
	lcgSeed          uint32
	history          []float64 // ring buffer, historyLen samples
	historyPos       int
	signalType       int
}

func newChannelState() *channelState {
	return &channelState{history: make([]float64, historyLen)}
}

func (c *channelState) reset() {
	c.haveDecoded = false
	c.previousLogGain = 0
	c.previousLSF = nil
	c.previousPitchLag = 0
	c.lcgSeed = 0
	for i := range c.history {
		c.history[i] = 0
	}
	c.historyPos = 0
	c.signalType = 0
}

// Decoder decodes SILK frames (RFC 6716 Section 4.2), carrying the state
// RFC 6716 Section 4.2's decoder description requires across frames:
// per-channel gain/LSF/pitch history plus the shared stereo prediction
// weights. Grounded on the teacher's top-level silk/decoder.go Decoder
// struct; mid/side state is kept as two channelState values rather than the
// teacher's state[2] array of a much larger libopus-mirroring struct, since
// this module represents signals as plain float64/float32 slices rather
// than libopus's fixed-point Q-format scratch buffers (see DESIGN.md).
type Decoder struct {
	channels int

	mid  *channelState
	side *channelState

	previousStereoWeights  [2]float64
	uncodedSideChannel     bool
	decoderReset           bool
	previousStereoMidOnly  bool
	stereoSmoothState      float64
}

// NewDecoder constructs a SILK decoder for 1 or 2 channels.
func NewDecoder(channels int) *Decoder {
	d := &Decoder{
		channels: channels,
		mid:      newChannelState(),
	}
	if channels == 2 {
		d.side = newChannelState()
	}
	return d
}

// Reset clears all persisted state, as required after a packet loss event
// or a mode switch into SILK (spec.md's decoderReset flag).
func (d *Decoder) Reset() {
	d.mid.reset()
	if d.side != nil {
		d.side.reset()
	}
	d.previousStereoWeights = [2]float64{}
	d.uncodedSideChannel = false
	d.decoderReset = true
	d.previousStereoMidOnly = false
	d.stereoSmoothState = 0
}

func (d *Decoder) Channels() int { return d.channels }

// DecodeFrame runs one SILK frame's full decode sequence (RFC 6716 Table 5):
// stereo prediction weights and mid-only flag (stereo only), then per
// channel: frame type, subframe gains, LSF stage 1+2 and interpolation,
// LSF->LPC, pitch lags and LTP parameters (voiced only), LCG seed,
// shell-block excitation, and LTP+LPC synthesis; finally stereo unmixing.
// vadFlag and bandwidth/frame duration are supplied by the caller; the
// hybrid and root packages take bandwidth and duration from the TOC and
// always pass vadFlag=true.
func (d *Decoder) DecodeFrame(rd *rangecoder.Decoder, bandwidth Bandwidth, frameSize int, vadFlag bool) ([]float32, error) {
	cfg := ConfigFor(bandwidth)
	nbSubfr := maxSubframes
	subframeLen := frameSize / nbSubfr
	if subframeLen <= 0 {
		nbSubfr = 2
		subframeLen = frameSize / nbSubfr
	}

	midOnly := false
	if d.channels == 2 {
		w0, w1 := d.decodeStereoWeights(rd)
		midOnly = rd.DecodeICDF16(icdfStereoOnlyFlag, 8) == 1
		d.previousStereoWeights = [2]float64{w0, w1}
	}

	mid := d.decodeChannel(rd, d.mid, cfg, nbSubfr, subframeLen, vadFlag)

	var out []float32
	if d.channels == 1 {
		out = make([]float32, frameSize)
		for i, v := range mid {
			out[i] = float32(clamp(v, -1, 1))
		}
		d.decoderReset = false
		return out, nil
	}

	var side []float64
	if !midOnly {
		side = d.decodeChannel(rd, d.side, cfg, nbSubfr, subframeLen, vadFlag)
	} else {
		side = make([]float64, frameSize)
		d.side.reset()
	}
	d.uncodedSideChannel = midOnly

	left := make([]float32, frameSize)
	right := make([]float32, frameSize)
	w0, w1 := d.previousStereoWeights[0], d.previousStereoWeights[1]
	prevMid := 0.0
	for i := 0; i < frameSize; i++ {
		m := mid[i]
		s := side[i]
		if w0 != 0 || w1 != 0 {
			s += w0*m + w1*prevMid
		}
		left[i] = float32(clamp(m+s, -1, 1))
		right[i] = float32(clamp(m-s, -1, 1))
		prevMid = m
	}
	out = make([]float32, frameSize*2)
	for i := 0; i < frameSize; i++ {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	d.decoderReset = false
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// decodeChannel decodes one SILK logical channel's frame: frame type,
// gains, LSF/LPC, per-subframe pitch+LTP (voiced), excitation, and
// synthesis. Returns frameLength samples in [-1,1] float64.
func (d *Decoder) decodeChannel(rd *rangecoder.Decoder, st *channelState, cfg Config, nbSubfr, subframeLen int, vadFlag bool) []float64 {
	signalType, quantOffsetType := decodeFrameType(rd, vadFlag)
	st.signalType = signalType
	voiced := signalType == 2

	gains := d.decodeGains(rd, st, signalType, nbSubfr)
	lsf := decodeLSF(rd, st, cfg, signalType)
	lpc := lsfToLPC(lsf)
	lpc = limitLPC(lpc)

	pitchLags := make([]int, nbSubfr)
	ltpCoeffs := make([][ltpOrder]float64, nbSubfr)
	ltpScale := 1.0
	if voiced {
		basePitch := decodePitchLags(rd, cfg)
		for i := range pitchLags {
			pitchLags[i] = basePitch
		}
		periodicity := ltpPeriodicityClass(basePitch, cfg)
		for i := 0; i < nbSubfr; i++ {
			ltpCoeffs[i] = decodeLTPFilter(rd, periodicity)
		}
		ltpScale = decodeLTPScale(rd, st.haveDecoded)
		st.previousPitchLag = basePitch
	}

	out := make([]float64, nbSubfr*subframeLen)
	for sf := 0; sf < nbSubfr; sf++ {
		exc := decodeExcitation(rd, st, subframeLen, signalType, quantOffsetType)
		frame := synthesizeSubframe(st, lpc, exc, gains[sf], pitchLags[sf], ltpCoeffs[sf], ltpScale, voiced)
		copy(out[sf*subframeLen:(sf+1)*subframeLen], frame)
	}

	st.haveDecoded = true
	return out
}

// decodeStereoWeights decodes the stereo prediction weight pair w0/w1 in
// Q13-equivalent float (RFC 6716 Section 4.2.8), grounded on the teacher's
// silk/stereo.go decodeStereoWeights.
func (d *Decoder) decodeStereoWeights(rd *rangecoder.Decoder) (w0, w1 float64) {
	var idx int
	if d.mid.haveDecoded {
		delta := rd.DecodeICDF16(icdfStereoPredWeightDelta, 8)
		prevIdx := weightToIndex(d.previousStereoWeights[0])
		idx = prevIdx + delta - 4
	} else {
		idx = rd.DecodeICDF16(icdfStereoPredWeight, 8)
	}
	if idx < 0 {
		idx = 0
	}
	if idx > 7 {
		idx = 7
	}
	return stereoPredWeights[idx], stereoPredWeights[7-idx]
}

func weightToIndex(w float64) int {
	best, bestDiff := 0, math.MaxFloat64
	for i, v := range stereoPredWeights {
		diff := math.Abs(v - w)
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

func decodeFrameType(rd *rangecoder.Decoder, vadFlag bool) (signalType, quantOffsetType int) {
	var idx int
	if vadFlag {
		idx = rd.DecodeICDF16(icdfFrameTypeActive, 8) + 2
	} else {
		idx = rd.DecodeICDF16(icdfFrameTypeInactive, 8)
	}
	return idx >> 1, idx & 1
}

// ltpPeriodicityClass picks which of the three LTP filter-index codebooks
// (low/mid/high periodicity) applies, per RFC 6716 Section 4.2.7.6.2's
// primary-lag-dependent codebook selection. Grounded on the teacher's
// three separate icdfLTPFilterIndex{Low,Mid,High}Period tables; the exact
// RFC boundary condition is replaced with a proportional split of the
// bandwidth's lag range, a documented condensation (see DESIGN.md).
func ltpPeriodicityClass(pitchLag int, cfg Config) int {
	span := cfg.PitchLagMax - cfg.PitchLagMin
	switch {
	case pitchLag < cfg.PitchLagMin+span/3:
		return 2 // short lag, high periodicity
	case pitchLag < cfg.PitchLagMin+2*span/3:
		return 1
	default:
		return 0
	}
}
