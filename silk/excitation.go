package silk

import "github.com/opuscore/opus/rangecoder"

// decodeExcitation decodes one subframe's excitation signal via SILK's
// shell-block pulse coding (RFC 6716 Section 4.2.7.8): a rate level
// selects which of pulsesRateLevels pulse-count ICDFs governs every
// 16-sample shell block in the subframe; each block's total pulse count
// is decoded from that table (chaining into an LSB-extension escape when
// the count saturates), recursively divided between halves down to
// individual sample positions, extended by the same number of
// LSB-extension bit-planes the block's count escaped through, signed
// (one sign ICDF selection per block, reused for every nonzero sample in
// it, per RFC), and finally offset and LCG-driven pseudorandom-inverted
// (Section 4.2.7.8.5). Grounded on the teacher's
// internal/silk/libopus_decode.go silkDecodePulses/silkShellDecoder/
// silkDecodeSigns and silk/tables.go's sign/LSB/rate-level tables.
func decodeExcitation(rd *rangecoder.Decoder, st *channelState, n, signalType, quantOffsetType int) []float64 {
	rateIcdf := icdfRateLevelUnvoiced
	if signalType == 2 {
		rateIcdf = icdfRateLevelVoiced
	}
	rateLevel := rd.DecodeICDF16(rateIcdf, 8)
	if rateLevel >= pulsesRateLevels {
		rateLevel = pulsesRateLevels - 1
	}

	numBlocks := (n + shellBlockN - 1) / shellBlockN
	pulses := make([]int, numBlocks*shellBlockN)
	sumPulses := make([]int, numBlocks)
	nLshifts := make([]int, numBlocks)

	for b := 0; b < numBlocks; b++ {
		table := icdfPulsesPerBlock[rateLevel]
		k := rd.DecodeICDF16(table, 8)
		for k == silkMaxPulses+1 {
			nLshifts[b]++
			table = icdfPulsesPerBlock[pulsesRateLevels-1]
			if nLshifts[b] == 10 {
				table = table[1:]
			}
			k = rd.DecodeICDF16(table, 8)
		}
		sumPulses[b] = k
		block := pulses[b*shellBlockN : (b+1)*shellBlockN]
		if k > 0 {
			shellSplit(rd, block, k)
		} else {
			for i := range block {
				block[i] = 0
			}
		}
	}

	// LSB-extension: each escape chained in the pulse-count decode above
	// doubles every sample's magnitude in that block and reads one more
	// low-order bit for it, the most significant of the added bits first.
	for b := 0; b < numBlocks; b++ {
		if nLshifts[b] == 0 {
			continue
		}
		block := pulses[b*shellBlockN : (b+1)*shellBlockN]
		for i := range block {
			absQ := block[i]
			for j := 0; j < nLshifts[b]; j++ {
				absQ = (absQ << 1) + int(rd.DecodeICDF16(icdfExcitationLSB, 8))
			}
			block[i] = absQ
		}
	}

	sigIdx := 0
	if signalType == 1 {
		sigIdx = 1
	} else if signalType == 2 {
		sigIdx = 2
	}
	offsetRow := 0
	if signalType == 2 {
		offsetRow = 1
	}
	offset := quantOffsetsQ10[offsetRow][quantOffsetType] / 1024.0

	// Sign decode: one ICDF selection per block, from that block's total
	// pulse count (pre-LSB-extension), reused for every nonzero sample.
	for b := 0; b < numBlocks; b++ {
		if sumPulses[b] <= 0 {
			continue
		}
		idx := sumPulses[b]
		if idx > 6 {
			idx = 6
		}
		signTable := icdfExcitationSign[sigIdx][quantOffsetType][idx-1]
		block := pulses[b*shellBlockN : (b+1)*shellBlockN]
		for i := range block {
			if block[i] > 0 {
				bit := rd.DecodeICDF16(signTable, 8)
				if bit == 1 {
					block[i] = -block[i]
				}
			}
		}
	}

	out := make([]float64, n)
	const step = 1.0 / 64.0
	for i := 0; i < n; i++ {
		eraw := pulses[i]
		sign := 1.0
		mag := eraw
		if mag < 0 {
			sign = -1
			mag = -mag
		}
		val := sign*float64(mag)*step + sign*offset*step

		st.lcgSeed = st.lcgSeed*196314165 + 907633515
		if (st.lcgSeed>>31)&1 != 0 {
			val = -val
		}
		st.lcgSeed += uint32(int32(eraw))
		out[i] = val
	}
	return out
}

// shellSplit recursively divides k total pulses across len(pulses)
// positions: at each level the pulse count for the left half is decoded
// from the binomial split table indexed by the current total, and the
// remainder goes to the right half, bottoming out with one pulse count
// per sample (RFC 6716 Section 4.2.7.8.3).
func shellSplit(rd *rangecoder.Decoder, pulses []int, k int) {
	n := len(pulses)
	if n == 1 {
		pulses[0] = k
		return
	}
	if k == 0 {
		for i := range pulses {
			pulses[i] = 0
		}
		return
	}
	kk := k
	if kk >= len(icdfShellSplit) {
		kk = len(icdfShellSplit) - 1
	}
	left := rd.DecodeICDF16(icdfShellSplit[kk], 8)
	if left > k {
		left = k
	}
	half := n / 2
	shellSplit(rd, pulses[:half], left)
	shellSplit(rd, pulses[half:], k-left)
}
