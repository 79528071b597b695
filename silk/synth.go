package silk

// synthesizeSubframe reconstructs one subframe of speech by cascading the
// long-term (pitch) predictor onto the excitation to form a short-term
// residual, then running that residual through the recursive LPC synthesis
// filter (RFC 6716 Section 4.2.7.9): out[i] = residual[i] + sum(lpc[j] *
// out[i-1-j]). Both predictors read from either the subframe already
// computed in this call or the channel's rolling output history, so pitch
// lags and LPC orders that reach before the start of the subframe resolve
// correctly across frame boundaries. Grounded on the teacher's
// silk/ltp.go ltpSynthesis (five-tap pitch predictor with -lag+2..-lag-2
// taps) combined with the standard LPC recursion the teacher's decode.go
// drives per subframe.
func synthesizeSubframe(st *channelState, lpc []float64, exc []float64, gain float64, pitchLag int, ltp [ltpOrder]float64, ltpScale float64, voiced bool) []float64 {
	n := len(exc)
	out := make([]float64, n)
	order := len(lpc)
	hl := len(st.history)

	sampleAt := func(offset int) float64 {
		if offset >= 0 {
			return out[offset]
		}
		idx := (st.historyPos + offset) % hl
		if idx < 0 {
			idx += hl
		}
		return st.history[idx]
	}

	for i := 0; i < n; i++ {
		residual := exc[i] * gain
		if voiced && pitchLag > 1 {
			var ltpPred float64
			for k := 0; k < ltpOrder; k++ {
				ltpPred += ltp[k] * sampleAt(i-pitchLag+2-k)
			}
			residual += ltpPred * ltpScale
		}

		var shortTermPred float64
		for j := 0; j < order; j++ {
			shortTermPred += lpc[j] * sampleAt(i-1-j)
		}

		v := residual + shortTermPred
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}

	for _, v := range out {
		st.history[st.historyPos%hl] = v
		st.historyPos++
	}
	return out
}
