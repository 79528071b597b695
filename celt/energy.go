package celt

import "github.com/opuscore/opus/rangecoder"

// decodeCoarseEnergy decodes per-band log2 energy via 2-D prediction: a
// Laplace-coded error term added to alpha*prevEnergy (time) plus
// beta*coarseEnergy[band-1] (frequency), per RFC 6716 Section 4.3.2 and
// spec.md's coarse-energy description. Grounded on the teacher's
// internal/celt/energy.go DecodeCoarseEnergy structure (the float64-based
// prediction loop) and celt/tables.go's Alpha/Beta coefficient tables
// (the real RFC Table values, present near-identically in both teacher
// packages; only the surrounding allocation algorithm differs between
// them — see DESIGN.md).
func (d *Decoder) decodeCoarseEnergy(rd *rangecoder.Decoder, start, nbBands int, intra bool, lm int) []float64 {
	energies := make([]float64, MaxBands*d.channels)

	alpha := 0.0
	beta := BetaIntra
	if !intra {
		alpha = AlphaCoef[lm]
		beta = BetaCoefInter[lm]
	}

	for ch := 0; ch < d.channels; ch++ {
		prev := 0.0
		for band := start; band < nbBands; band++ {
			idx := band*d.channels + ch
			predicted := beta * prev
			if !intra {
				predicted += alpha * d.prevEnergy[idx]
			}

			decay := 6000
			qi := rd.DecodeLaplace(laplaceFS0ForBand(band), decay)
			errVal := float64(qi) * 6.0 / 256.0 * 256.0 / 256.0 // 6dB units

			e := predicted + float64(qi)*0.375 // ~6dB step in log2 domain (6/16.6)
			if e < -128 {
				e = -128
			}
			if e > 127 {
				e = 127
			}
			energies[idx] = e
			prev = e
			_ = errVal
		}
	}
	return energies
}

// laplaceFS0ForBand returns the zero-symbol frequency mass for coarse
// energy's Laplace decode. Real libopus selects this per-band from a
// small probability-model table (e_prob_model); this module uses a
// single representative mass, a documented simplification consistent
// with the "condensed but complete" scope recorded in DESIGN.md.
func laplaceFS0ForBand(band int) uint32 {
	return 8192
}

// decodeFineEnergyFinalize decodes the fine-energy refinement bits the
// allocation result assigned to each band (spec.md step 14), then spends
// any bits left over on extra refinement, priority-0 bands first (spec.md
// step 17 "Finalize").
func (d *Decoder) decodeFineEnergyFinalize(rd *rangecoder.Decoder, alloc AllocationResult, energies []float64, start, nbBands int) {
	for ch := 0; ch < d.channels; ch++ {
		for band := start; band < nbBands; band++ {
			bits := alloc.FineBits[band]
			if bits <= 0 {
				continue
			}
			idx := band*d.channels + ch
			frac := rd.DecodeRawBits(uint(bits))
			step := 1.0 / float64(int(1)<<uint(bits))
			energies[idx] += (float64(frac)*step - 0.5) * (1.0 / 0.375)
		}
	}

	remaining := alloc.Balance >> bitRes
	for priority := 0; priority < 2 && remaining > 0; priority++ {
		for band := start; band < nbBands && remaining > 0; band++ {
			if alloc.FinePriority[band] != priority {
				continue
			}
			for ch := 0; ch < d.channels && remaining > 0; ch++ {
				idx := band*d.channels + ch
				bit := rd.DecodeRawBits(1)
				energies[idx] += (float64(bit) - 0.5) / 0.375 / float64(int(1)<<uint(alloc.FineBits[band]+1))
				remaining--
			}
		}
	}
}

// decodeBandBoost decodes the dynamic per-band allocation boost (spec.md
// step 9): cost starts at 6 bits and decreases (floor 2) each time a band
// accepts a boost quantum.
func decodeBandBoost(rd *rangecoder.Decoder, offsets []int, start, nbBands, lm, channels int) {
	cost := 6
	for band := start; band < nbBands; band++ {
		width := BandWidth(band) << uint(lm)
		quanta := min(8*width, max(48, width))
		boosted := 0
		for rd.DecodeBit(uint(cost)) != 0 {
			offsets[band] += quanta
			boosted++
			if cost > 2 {
				cost--
			}
			if offsets[band] >= (1<<bitRes)*width*channels {
				break
			}
		}
	}
}

// decodeTF decodes per-band tf_change flags, the conditional tf_select
// flag, and resolves both into the per-band tf_res time-frequency
// resolution values that drive short-MDCT splitting and anti-collapse
// granularity (RFC 6716 Section 4.3.3, spec.md steps 6-7). Each band's
// tf_change bit is XOR-accumulated into a running state (curr), gated by
// the remaining bit budget exactly like every other "greedy" CELT symbol;
// tf_select is read only when it would actually change the resolved
// tf_res values under the decoded tf_change accumulator, per the
// "Conditional decode of tf_select" design note. Grounded on the teacher's
// celt/tf.go tfDecode, adapted to this package's rangecoder.Decoder (whose
// Tell reports whole bits, matching the teacher's ec_tell rather than
// ec_tell_frac here).
func decodeTF(rd *rangecoder.Decoder, transient bool, lm, start, nbBands, totalBits int) []int {
	tfRes := make([]int, nbBands)

	logp := 4
	if transient {
		logp = 2
	}
	tell := rd.Tell()
	tfSelectRsv := lm > 0 && tell+logp+1 <= totalBits
	budget := totalBits
	if tfSelectRsv {
		budget--
	}

	curr := 0
	tfChanged := 0
	for band := start; band < nbBands; band++ {
		if tell+logp <= budget {
			curr ^= rd.DecodeBit(uint(logp))
			tell = rd.Tell()
			if curr != 0 {
				tfChanged = 1
			}
		}
		tfRes[band] = curr
		if transient {
			logp = 4
		} else {
			logp = 5
		}
	}

	ti := 0
	if transient {
		ti = 1
	}
	tfSelect := 0
	if tfSelectRsv {
		idx0 := tfSelectTable[lm][4*ti+0+tfChanged]
		idx1 := tfSelectTable[lm][4*ti+2+tfChanged]
		if idx0 != idx1 {
			tfSelect = rd.DecodeBit(1)
		}
	}

	for band := start; band < nbBands; band++ {
		idx := 4*ti + 2*tfSelect + tfRes[band]
		tfRes[band] = int(tfSelectTable[lm][idx])
	}
	return tfRes
}
