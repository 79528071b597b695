package celt

import "math/bits"

// pulseVectorCount computes V(N,K), the number of ways to place K pulses
// (with sign) across N coefficients such that the sum of absolute values
// is K — the PVQ codebook size for a band of N samples at pulse count K.
// Computed via the standard Pascal-like recurrence (RFC 6716 Section
// 4.3.4.2, libopus cwrs.c CELT_PVQ_V): V(N,K) = V(N-1,K) + V(N,K-1) +
// V(N-1,K-1), with V(N,0)=1 and V(0,K)=0 for K>0 (V(0,0)=1).
//
// Results grow quickly (2^31+ for modest N,K); callers that only need an
// overflow check should use pulseVectorFits32 instead of comparing
// against the raw value.
func pulseVectorCount(n, k int) uint64 {
	if n <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	if k == 0 {
		return 1
	}
	// row[k] = V(i, k) for the current i, built bottom-up over i=0..n.
	row := make([]uint64, k+1)
	row[0] = 1
	for i := 1; i <= n; i++ {
		prevDiag := row[0] // V(i-1, 0)
		for j := 1; j <= k; j++ {
			cur := row[j] + row[j-1] + prevDiag
			prevDiag = row[j]
			row[j] = cur
		}
	}
	return row[k]
}

// pulseVectorFits32 reports whether V(N,K) fits in an unsigned 32-bit
// value, mirroring libopus's fits_in_32 check. This package does not split
// bands; bitsToPulsesExact uses it to cap the pulse count instead.
func pulseVectorFits32(n, k int) bool {
	return pulseVectorCount(n, k) < (1 << 32)
}

// log2Ceil returns ceil(log2(v)) for v >= 1.
func log2Ceil(v uint64) int {
	if v <= 1 {
		return 0
	}
	l := bits.Len64(v - 1)
	return l
}

// pulsesToBitsExact returns the eighth-bit cost of coding a pulse vector
// of n coefficients with k pulses: ceil(log2(V(n,k))) bits, in Q3 (eighth-bit)
// units. This plays the role of the teacher's CACHE_BITS50 lookup table;
// that table's literal contents are not present anywhere in the retrieved
// corpus (see DESIGN.md), so this module derives the equivalent bit cost
// directly from the codebook-size recurrence instead of a precomputed LUT.
func pulsesToBitsExact(n, k int) int {
	if k <= 0 {
		return 0
	}
	v := pulseVectorCount(n, k)
	return log2Ceil(v) << bitRes
}

// bitsToPulsesExact finds the largest pulse count k whose cost does not
// exceed bitsQ3 (eighth-bits) and whose codebook size V(n,k) fits in 32
// bits, for a band of n coefficients.
func bitsToPulsesExact(n, bitsQ3 int) int {
	if bitsQ3 <= 0 || n <= 0 {
		return 0
	}
	lo, hi := 0, 0
	for pulseVectorFits32(n, hi+1) && pulsesToBitsExact(n, hi+1) <= bitsQ3 {
		hi++
		if hi > 1<<20 {
			break
		}
	}
	lo = hi
	for pulsesToBitsExact(n, lo) > bitsQ3 && lo > 0 {
		lo--
	}
	return lo
}
