package silk

import (
	"math"

	"github.com/opuscore/opus/rangecoder"
)

// maxLPCStabilizeIterations bounds the prediction-gain limiter's
// bandwidth-expansion loop, per the teacher's internal/silk/libopus_consts.go.
const maxLPCStabilizeIterations = 16

// lsfCodebook synthesizes a stage-1 base vector: lpcOrder coefficients
// spread monotonically across (0, pi), perturbed by the codebook index so
// distinct indices give distinct (but still ordered) vectors. The
// retrieval pack's silk/tables.go carries the stage-1 *selector* ICDFs
// (icdfLSFStage1*) but not the literal per-index base-vector table itself
// (see DESIGN.md); this synthesis keeps the two-stage VQ structure the RFC
// specifies while being honest that the exact libopus codebook vectors are
// not reproduced bit-for-bit.
func lsfCodebook(index, lpcOrder, numEntries int) []float64 {
	out := make([]float64, lpcOrder)
	spread := math.Pi * (0.15 + 0.7*float64(index)/float64(numEntries-1))
	for i := 0; i < lpcOrder; i++ {
		frac := (float64(i) + 1) / float64(lpcOrder+1)
		out[i] = frac * spread
	}
	return out
}

// decodeLSF decodes a channel's LSF vector: a stage-1 codebook index picks
// a base vector, stage-2 per-coefficient residuals refine it, and an
// interpolation index optionally blends the result with the previous
// frame's LSF (RFC 6716 Section 4.2.7.5). The reconstructed vector is
// stabilized to enforce minimum spacing and run order before being handed
// to lsfToLPC. Grounded on the teacher's silk/lsf.go decodeLSFCoefficients.
func decodeLSF(rd *rangecoder.Decoder, st *channelState, cfg Config, signalType int) []float64 {
	lpcOrder := cfg.LPCOrder
	voiced := signalType == 2
	wideband := cfg.LPCOrder == 16

	var stage1 []uint16
	switch {
	case wideband && voiced:
		stage1 = icdfLSFStage1WBVoiced
	case wideband && !voiced:
		stage1 = icdfLSFStage1WBUnvoiced
	case !wideband && voiced:
		stage1 = icdfLSFStage1NBMBVoiced
	default:
		stage1 = icdfLSFStage1NBMBUnvoiced
	}
	numEntries := len(stage1)
	stage1Idx := rd.DecodeICDF16(stage1, 8)
	mapIdx := stage1Idx >> 2
	if mapIdx > 7 {
		mapIdx = 7
	}

	lsf := lsfCodebook(stage1Idx, lpcOrder, numEntries)
	for i := 0; i < lpcOrder; i++ {
		res := rd.DecodeICDF16(icdfLSFStage2[mapIdx], 8)
		mid := (len(icdfLSFStage2[mapIdx]) - 1) / 2
		step := math.Pi / 256.0
		lsf[i] += float64(res-mid) * step
	}

	interpIdx := rd.DecodeICDF16(icdfLSFInterpolation, 8)
	if interpIdx != 4 && st.previousLSF != nil && len(st.previousLSF) == lpcOrder {
		weight := float64(interpIdx) / 4.0
		for i := range lsf {
			lsf[i] = st.previousLSF[i] + weight*(lsf[i]-st.previousLSF[i])
		}
	}

	stabilizeLSF(lsf)
	prev := make([]float64, lpcOrder)
	copy(prev, lsf)
	st.previousLSF = prev
	return lsf
}

// stabilizeLSF enforces strictly increasing order with a minimum gap
// between adjacent coefficients and clamps the vector to (0, pi), per RFC
// 6716 Section 4.2.7.5.5. The exact per-index minimum-spacing table isn't
// in the retrieval pack (see tables.go); this uses one representative
// minimum gap for every adjacent pair.
func stabilizeLSF(lsf []float64) {
	const gap = lsfMinGapQ15 * (math.Pi / 32768.0)
	if lsf[0] < gap {
		lsf[0] = gap
	}
	for i := 1; i < len(lsf); i++ {
		if lsf[i] < lsf[i-1]+gap {
			lsf[i] = lsf[i-1] + gap
		}
	}
	max := math.Pi - gap
	if lsf[len(lsf)-1] > max {
		lsf[len(lsf)-1] = max
		for i := len(lsf) - 2; i >= 0; i-- {
			if lsf[i] > lsf[i+1]-gap {
				lsf[i] = lsf[i+1] - gap
			}
		}
	}
}

// lsfToLPC converts a stabilized LSF vector (radians) to LPC coefficients
// via the standard even/odd polynomial root construction (RFC 6716 Section
// 4.2.7.5.6): each LSF value is one root angle of one of two symmetric
// polynomials, whose coefficients are combined into the final predictor.
// Grounded on the teacher's silk/lsf.go lsfToLPCDirect, adapted to plain
// float64 and math.Cos instead of the teacher's fixed-point interpolated
// cosine table (a direct simplification the float representation allows).
func lsfToLPC(lsf []float64) []float64 {
	order := len(lsf)
	half := order / 2

	ff := make([]float64, order+2)
	fb := make([]float64, order+2)
	ff[0] = 1
	fb[0] = 1

	for i := 0; i < half; i++ {
		c := 2 * math.Cos(lsf[2*i])
		for j := i + 1; j >= 1; j-- {
			ff[j] -= c * ff[j-1]
			if j >= 2 {
				ff[j] += ff[j-2]
			}
		}
		c = 2 * math.Cos(lsf[2*i+1])
		for j := i + 1; j >= 1; j-- {
			fb[j] -= c * fb[j-1]
			if j >= 2 {
				fb[j] += fb[j-2]
			}
		}
	}

	lpc := make([]float64, order)
	for i := 0; i < order; i++ {
		k := (i + 1) / 2
		if i%2 == 0 {
			lpc[i] = (ff[k] + ff[k+1]) / 2
		} else {
			lpc[i] = (fb[k] + fb[k+1]) / 2
		}
	}
	return lpc
}

// limitLPC applies SILK's two-stage LPC stability limiter (RFC 6716
// Section 4.2.7.5.8): magnitude limiting bounds the single largest
// coefficient via up to 10 rounds of bandwidth expansion, then a
// Levinson step-down recursion computes the filter's inverse prediction
// gain and keeps expanding bandwidth (up to 16 rounds, the last forcing
// the predictor to all-zero) until the filter is provably stable.
// Grounded on the teacher's internal/silk/libopus_lpc.go
// silkLPCFit/silkBwExpander32/silkLPCInversePredGain(QA), ported from
// Q12/Q17/Q24/Q30 fixed-point to this module's plain float64 coefficients
// (see DESIGN.md on the package's float64-throughout convention); the
// per-coefficient Q24 overflow guard in silkLPCInversePredGainQA is
// folded into the same |reflection coefficient| >= 1 check used for
// ordinary instability, since both reject at essentially the same bound.
func limitLPC(lpc []float64) []float64 {
	out := make([]float64, len(lpc))
	copy(out, lpc)

	limitMagnitude(out)
	limitPredictionGain(out)
	return out
}

// limitMagnitude bounds the largest coefficient magnitude to the
// real-domain equivalent of libopus's Q12 32767 ceiling (32767/4096),
// applying the teacher's silkLPCFit bandwidth-expansion formula for up
// to 10 rounds.
func limitMagnitude(a []float64) {
	const ceiling = 32767.0 / 4096.0
	for round := 0; round < 10; round++ {
		maxAbs, idx := 0.0, 0
		for i, c := range a {
			v := math.Abs(c)
			if v > maxAbs {
				maxAbs = v
				idx = i
			}
		}
		if maxAbs <= ceiling {
			return
		}
		capped := maxAbs * 4096
		if capped > 163838 {
			capped = 163838
		}
		numer := (capped - 32767) * 16384
		denom := (capped * float64(idx+1)) / 4
		chirp := 0.999
		if denom != 0 {
			chirp -= numer / denom / 65536
		}
		bwExpand(a, chirp)
	}
}

// limitPredictionGain runs the Levinson step-down recursion to compute
// the predictor's inverse prediction gain, expanding bandwidth for up to
// maxLPCStabilizeIterations rounds (the last forcing the predictor to
// all-zero, matching the teacher's chirp = 65536-(2<<round) reaching 0 at
// round 15) until the filter is stable.
func limitPredictionGain(a []float64) {
	for round := 0; round < maxLPCStabilizeIterations; round++ {
		if inversePredictionGain(a) > 0 {
			return
		}
		chirp := 1.0 - math.Pow(2, float64(round+1))/65536.0
		if round == maxLPCStabilizeIterations-1 {
			chirp = 0
		}
		bwExpand(a, chirp)
	}
}

// inversePredictionGain returns 0 if the filter is unstable, its DC
// response is too high, or its inverse prediction gain falls below the
// stability floor (the real-domain equivalent of libopus's Q30 107374
// threshold), else the inverse gain in (0, 1]. Ported from
// silkLPCInversePredGain/silkLPCInversePredGainQA's reflection-coefficient
// walk: each step peels off the highest-order reflection coefficient
// (the negative of the current last coefficient) and updates the
// remaining lower-order coefficients via the standard step-down formula.
func inversePredictionGain(a []float64) float64 {
	const invGainFloor = 107374.0 / (1 << 30)

	dcResp := 0.0
	for _, c := range a {
		dcResp += c
	}
	if dcResp >= 1.0 {
		return 0
	}

	order := len(a)
	work := make([]float64, order)
	copy(work, a)
	invGain := 1.0
	for m := order - 1; m >= 0; m-- {
		rc := -work[m]
		if rc >= 1 || rc <= -1 {
			return 0
		}
		denom := 1 - rc*rc
		invGain *= denom
		if invGain < invGainFloor {
			return 0
		}
		for i := 0; i < (m+1)>>1; i++ {
			tmp1, tmp2 := work[i], work[m-1-i]
			work[i] = (tmp1 - rc*tmp2) / denom
			work[m-1-i] = (tmp2 - rc*tmp1) / denom
		}
	}
	return invGain
}

// bwExpand applies geometric bandwidth expansion: coefficient i is
// scaled by chirp^(i+1), matching the teacher's silk_bwexpander32
// recurrence.
func bwExpand(a []float64, chirp float64) {
	c := chirp
	for i := range a {
		a[i] *= c
		c *= chirp
	}
}
