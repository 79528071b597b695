package celt

import "math"

// inverseMDCT transforms n frequency-domain coefficients into 2n
// time-domain samples via the direct type-IV-DCT-derived formula RFC 6716
// Section 4.3.5 specifies for CELT synthesis:
//
//	y[t] = sum_{k=0}^{n-1} X[k] * cos( (pi/n) * (t + 0.5 + n/2) * (k + 0.5) )
//
// Grounded on the teacher's celt/mdct.go, which computes the same
// transform via a split-radix FFT with pre/post twiddle factors for
// O(n log n) performance (1000 lines, read for the transform's defining
// math, not ported line-for-line: see DESIGN.md). This module evaluates
// the sum directly, O(n^2) per channel per frame — correct, but without
// the teacher's FFT acceleration, a documented scope trim consistent with
// this module's decision to drop the teacher's SIMD/asm fast paths
// entirely (DESIGN.md "Dropped teacher dependencies"): a from-scratch
// decoder core has no requirement to be fast, only faithful.
func inverseMDCT(freq []float64) []float64 {
	n := len(freq)
	out := make([]float64, 2*n)
	if n == 0 {
		return out
	}

	scale := 2.0 / float64(n)
	for t := 0; t < 2*n; t++ {
		sum := 0.0
		phase := float64(t) + 0.5 + float64(n)/2
		for k := 0; k < n; k++ {
			if freq[k] == 0 {
				continue
			}
			angle := (math.Pi / float64(n)) * phase * (float64(k) + 0.5)
			sum += freq[k] * math.Cos(angle)
		}
		out[t] = sum * scale
	}
	return out
}
