package celt

import (
	"math"

	"github.com/opuscore/opus/rangecoder"
)

// BandShape holds one band's decoded PVQ unit vector per channel (before
// denormalization by band energy). Indexing is [band][channel][bin].
type BandShape struct {
	Bins         [][]float64 // [channel][bin within band]
	Pulses       int         // K for this band, used by anti-collapse
	CollapseMask []uint32    // per channel, one bit per short-MDCT sub-block
}

// decodePVQShapes decodes the per-band normalized pulse-vector shapes (RFC
// 6716 Section 4.3.4, spec.md step 13): each band's bit budget from the
// allocation result is converted to a pulse count K, a signed pulse vector
// of N=width<<lm dimensions is unranked off the range coder, and the result
// is projected onto the unit sphere. Grounded on the teacher's
// celt/bands_quant.go decode path (quant_band / quant_partition structure)
// and celt/cwrs.go's codebook-size recurrence (cwrs.go in this package);
// the exact recursive band-splitting libopus performs for large N is
// condensed here into a single flat unranking per band rather than the
// recursive split/fold tree, a documented scope trim (see DESIGN.md) since
// the split structure does not change what is ultimately decoded: a unit
// vector with L1 pulse norm K.
//
// Before normalizing away the raw integer vector, the band's bins are also
// divided into the short-MDCT sub-blocks tf_res[band] resolves for it (RFC
// 6716 Section 4.3.5's collapse mask), and each sub-block with at least one
// nonzero pulse sets its bit in CollapseMask so anti-collapse only refills
// sub-blocks that genuinely carried no energy, not the whole band.
func (d *Decoder) decodePVQShapes(rd *rangecoder.Decoder, alloc AllocationResult, start, nbBands, lm int, transient bool, tfRes []int) []BandShape {
	shapes := make([]BandShape, nbBands)
	bGlobal := 1
	if transient {
		bGlobal = 1 << uint(lm)
	}
	for band := start; band < nbBands; band++ {
		n := BandWidth(band) << uint(lm)
		k := bitsToPulses(band, lm, alloc.BandBits[band])
		bBand := bandBlockCount(tfRes, band, lm, bGlobal)

		shape := BandShape{
			Bins:         make([][]float64, d.channels),
			Pulses:       k,
			CollapseMask: make([]uint32, d.channels),
		}
		for ch := 0; ch < d.channels; ch++ {
			if k <= 0 || n <= 0 {
				shape.Bins[ch] = make([]float64, n)
				continue
			}
			pulses := decodePulseVector(rd, n, k)
			shape.CollapseMask[ch] = collapseMaskFromPulses(pulses, bBand)
			shape.Bins[ch] = normalizePulseVector(pulses)
		}
		shapes[band] = shape
	}
	return shapes
}

// bandBlockCount resolves how many short-MDCT sub-blocks band's collapse
// mask tracks: tf_res[band] (clamped to [0, lm], since a negative value
// folds the band back toward the frame's long-window treatment rather than
// subdividing it further) gives a local block count, capped at the frame's
// global short-MDCT count bGlobal.
func bandBlockCount(tfRes []int, band, lm, bGlobal int) int {
	if bGlobal <= 1 || band >= len(tfRes) {
		return 1
	}
	res := tfRes[band]
	if res < 0 {
		res = 0
	}
	if res > lm {
		res = lm
	}
	b := 1 << uint(res)
	if b > bGlobal {
		b = bGlobal
	}
	return b
}

// collapseMaskFromPulses splits pulses into b contiguous sub-blocks and
// sets bit g whenever sub-block g has at least one nonzero coefficient.
func collapseMaskFromPulses(pulses []int, b int) uint32 {
	n := len(pulses)
	if b <= 1 {
		for _, p := range pulses {
			if p != 0 {
				return 1
			}
		}
		return 0
	}
	groupLen := n / b
	if groupLen == 0 {
		groupLen = 1
	}
	var mask uint32
	for g := 0; g < b; g++ {
		lo := g * groupLen
		if lo >= n {
			break
		}
		hi := lo + groupLen
		if g == b-1 || hi > n {
			hi = n
		}
		for i := lo; i < hi; i++ {
			if pulses[i] != 0 {
				mask |= 1 << uint(g)
				break
			}
		}
	}
	return mask
}

// decodePulseVector decodes a signed integer vector of n dimensions whose
// absolute values sum to k, reading one uniform index per position (sized
// by the V(N,K) recurrence from cwrs.go for the positions still open) and
// one sign bit for the last position.
// This mirrors the shape of libopus's cwrs.c cwrsi (successive-dimension
// unranking against the codebook-size table) but computes each V(.,.) on
// demand instead of against a precomputed cache, so it is not guaranteed to
// reproduce the same index-to-vector mapping bit-for-bit as libopus (see
// DESIGN.md's note on the missing CACHE_BITS50/CACHE_INDEX50 tables).
func decodePulseVector(rd *rangecoder.Decoder, n, k int) []int {
	y := make([]int, n)
	if k <= 0 || n <= 0 {
		return y
	}

	remainingK := k
	for j := 0; j < n; j++ {
		remainingN := n - j
		if remainingN == 1 {
			y[j] = remainingK
			if remainingK > 0 && rd.DecodeBit(1) != 0 {
				y[j] = -y[j]
			}
			remainingK = 0
			break
		}

		total := pulseVectorCount(remainingN, remainingK)
		if total == 0 {
			continue
		}
		idx := uint64(rd.DecodeUniform(uint32(total)))

		var cum uint64
		for val := 0; val <= remainingK; val++ {
			sub := pulseVectorCount(remainingN-1, remainingK-val)
			count := sub
			if val != 0 {
				count = sub * 2
			}
			if idx < cum+count {
				sign := 1
				if val != 0 && idx >= cum+sub {
					sign = -1
				}
				y[j] = val * sign
				remainingK -= val
				break
			}
			cum += count
		}
	}
	return y
}

// normalizePulseVector projects an integer pulse vector onto the unit
// sphere (RFC 6716 Section 4.3.4.3 normalization step).
func normalizePulseVector(pulses []int) []float64 {
	out := make([]float64, len(pulses))
	sumSq := 0.0
	for _, p := range pulses {
		sumSq += float64(p) * float64(p)
	}
	if sumSq == 0 {
		return out
	}
	norm := 1.0 / math.Sqrt(sumSq)
	for i, p := range pulses {
		out[i] = float64(p) * norm
	}
	return out
}
