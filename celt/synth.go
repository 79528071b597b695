package celt

import "math"

// denormalize scales each band's unit-norm PVQ shape by its decoded
// energy, per RFC 6716 Section 4.3.6 and spec.md's "Denormalization":
// amplitude = sqrt(2^energy), applied per band per channel. Grounded on
// the teacher's celt/bands.go denormalise_bands; this module's energies
// are already plain log2 floats (not Q8-scaled fixed point, matching the
// float-based energy representation this package uses throughout — see
// DESIGN.md), so the /256 Q8 unscaling the spec describes for the
// integer representation doesn't apply here.
func (d *Decoder) denormalize(shapes []BandShape, energies []float64, start, nbBands, lm int) {
	for band := start; band < nbBands; band++ {
		for ch := 0; ch < d.channels; ch++ {
			idx := band*d.channels + ch
			if ch >= len(shapes[band].Bins) {
				continue
			}
			bins := shapes[band].Bins[ch]
			if len(bins) == 0 {
				continue
			}
			amp := math.Exp2(energies[idx] / 2)
			for i := range bins {
				bins[i] *= amp
			}
		}
	}
}

// applyAntiCollapse injects pseudorandom noise into the short-MDCT
// sub-blocks whose CollapseMask bit is unset, per RFC 6716 Section 4.3.5
// and spec.md's "Anti-collapse" / "CELT anti-collapse operates per-MDCT"
// design note: only sub-blocks that carried no PVQ energy are refilled,
// not bands that simply had few total pulses, so a band with some live
// sub-blocks and some collapsed ones is repaired selectively. Grounded on
// the teacher's celt/bands.go anti_collapse, using the CollapseMask
// decodePVQShapes tracked through the raw pulse-vector decode.
func (d *Decoder) applyAntiCollapse(shapes []BandShape, energies []float64, start, nbBands, lm int, transient bool, tfRes []int) {
	bGlobal := 1
	if transient {
		bGlobal = 1 << uint(lm)
	}
	for band := start; band < nbBands; band++ {
		bBand := bandBlockCount(tfRes, band, lm, bGlobal)
		for ch := 0; ch < d.channels; ch++ {
			if ch >= len(shapes[band].Bins) {
				continue
			}
			bins := shapes[band].Bins[ch]
			n := len(bins)
			if n == 0 {
				continue
			}
			var mask uint32
			if ch < len(shapes[band].CollapseMask) {
				mask = shapes[band].CollapseMask[ch]
			}
			full := uint32(1)<<uint(bBand) - 1
			if mask == full {
				continue // every sub-block already carried energy
			}

			idx := band*d.channels + ch
			prevMin := math.Min(d.prevEnergy[idx], d.prevPrevEnergy[idx])
			r := 2 * math.Exp2(-(energies[idx] - prevMin))
			if lm == 3 {
				r *= math.Sqrt2
			}

			groupLen := n / bBand
			if groupLen == 0 {
				groupLen = 1
			}
			for g := 0; g < bBand; g++ {
				if mask&(1<<uint(g)) != 0 {
					continue
				}
				lo := g * groupLen
				if lo >= n {
					continue
				}
				hi := lo + groupLen
				if g == bBand-1 || hi > n {
					hi = n
				}
				sumSq := 0.0
				for i := lo; i < hi; i++ {
					seed := d.nextRNG()
					v := r
					if seed&0x8000 != 0 {
						v = -v
					}
					bins[i] = v
					sumSq += v * v
				}
				if sumSq > 0 {
					norm := 1 / math.Sqrt(sumSq)
					for i := lo; i < hi; i++ {
						bins[i] *= norm
					}
				}
			}
		}
	}
}

// synthesize runs the inverse MDCT and windowed overlap-add (RFC 6716
// Section 4.3.7, spec.md "Inverse MDCT and overlap-add"): the per-band
// shapes are scattered into a frameSize-bin frequency array (bands above
// nbBands are left at zero, realizing the frequency-domain rate
// decimation spec.md describes). For a transient frame the array is split
// into B=1<<lm contiguous short-MDCT blocks, each inverse-transformed and
// windowed independently, chained through an internal overlap-add between
// consecutive blocks (spec.md's "CELT short-MDCT splitting" design note);
// for a non-transient frame B=1 and this reduces to the previous single
// long transform. The final block's tail feeds the cross-frame overlap
// buffer exactly as the long-transform case did. Grounded on the
// teacher's celt/mdct.go RunMDCT per-block call sites (compute_inv_mdcts
// loops over B sub-blocks) and celt/window.go; this module's local overlap
// length (min(Overlap, blockLen), with the fixed window table resampled to
// that length) stands in for the teacher's exact per-size window variants
// (see DESIGN.md).
func (d *Decoder) synthesize(shapes []BandShape, frameSize, lm int, silence, transient bool) []float32 {
	B := 1
	if transient {
		B = 1 << uint(lm)
	}
	if B > frameSize {
		B = frameSize
	}
	blockLen := frameSize / B

	chSamples := make([][]float64, d.channels)
	newOverlap := make([]float64, Overlap*d.channels)

	for ch := 0; ch < d.channels; ch++ {
		freq := make([]float64, frameSize)
		if !silence {
			for band := range shapes {
				if ch >= len(shapes[band].Bins) {
					continue
				}
				bins := shapes[band].Bins[ch]
				if len(bins) == 0 {
					continue
				}
				s := ScaledBandStart(band, frameSize)
				for i, v := range bins {
					pos := s + i
					if pos >= 0 && pos < frameSize {
						freq[pos] = v
					}
				}
			}
		}

		localOverlap := Overlap
		if localOverlap > blockLen {
			localOverlap = blockLen
		}

		samples := make([]float64, frameSize)
		var prevTail []float64 // windowed second half of the previous short block
		for b := 0; b < B; b++ {
			blockFreq := freq[b*blockLen : (b+1)*blockLen]
			td := inverseMDCT(blockFreq) // length 2*blockLen

			block := samples[b*blockLen : (b+1)*blockLen]
			for i := 0; i < localOverlap; i++ {
				wi := i * len(celtWindowTable) / localOverlap
				lead := td[i] * celtWindowTable[wi]
				var tail float64
				if b == 0 {
					tail = d.overlapBuffer[ch*Overlap+i]
				} else {
					tail = prevTail[i]
				}
				block[i] = lead + tail
			}
			for i := localOverlap; i < blockLen; i++ {
				block[i] = td[i]
			}

			tail := make([]float64, localOverlap)
			for i := 0; i < localOverlap; i++ {
				wi := (localOverlap - 1 - i) * len(celtWindowTable) / localOverlap
				tail[i] = td[blockLen+i] * celtWindowTable[wi]
			}
			prevTail = tail
		}

		for i := 0; i < localOverlap; i++ {
			newOverlap[ch*Overlap+i] = prevTail[i]
		}
		chSamples[ch] = samples
	}

	d.overlapBuffer = newOverlap

	out := make([]float32, frameSize*d.channels)
	for i := 0; i < frameSize; i++ {
		for ch := 0; ch < d.channels; ch++ {
			v := chSamples[ch][i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			out[i*d.channels+ch] = float32(v)
		}
	}
	return out
}
