// Package celt implements the CELT decoder per RFC 6716 Section 4.3: energy
// envelope, bit allocation, PVQ shape decode, anti-collapse, and the
// inverse MDCT.
package celt

// MaxBands is the number of CELT critical bands (RFC 6716 Table 55).
const MaxBands = 21

// Overlap is the MDCT overlap length at 48kHz (2.5ms).
const Overlap = 120

// PreemphCoef is CELT's de-emphasis filter coefficient. synthesize does
// not apply a de-emphasis filter.
const PreemphCoef = 0.85

// tfSelectTable resolves a band's final time-frequency resolution from the
// frame's LM, whether the frame is transient, the tf_select flag, and the
// band's raw decoded tf_change accumulator (RFC 6716 Section 4.3.3). Row
// index is LM (0-3); column index is 4*isTransient + 2*tfSelect + curr.
// Grounded on the teacher's internal/celt/cgo_test/tf_trace_test.go, the
// only place in the retrieval pack carrying this literal (every non-test
// celt package references it without declaring it).
var tfSelectTable = [4][8]int8{
	{0, -1, 0, -1, 0, -1, 0, -1},
	{0, -1, 0, -2, 1, 0, 1, -1},
	{0, -2, 0, -3, 2, 0, 1, -1},
	{0, -2, 0, -3, 3, 0, 1, -1},
}

// EBands gives the MDCT bin index of each band edge at the 2.5ms base
// frame size (21 bands, 22 edges). Other frame sizes scale these by
// frameSize/Overlap. Source: libopus celt/modes.c eBand5ms, RFC 6716 Table 55.
var EBands = [22]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 10,
	12, 14, 16, 20, 24, 28, 34, 40, 48, 60,
	78, 100,
}

// AlphaCoef is the inter-frame energy-prediction coefficient (Q15/float),
// indexed by LM (0 = 2.5ms ... 3 = 20ms). Source: libopus quant_bands.c.
var AlphaCoef = [4]float64{
	29440.0 / 32768.0,
	26112.0 / 32768.0,
	21248.0 / 32768.0,
	16384.0 / 32768.0,
}

// BetaCoefInter is the inter-band energy-prediction coefficient for
// inter-frame (non-intra) coarse energy decode, indexed by LM.
var BetaCoefInter = [4]float64{
	30147.0 / 32768.0,
	22282.0 / 32768.0,
	12124.0 / 32768.0,
	6554.0 / 32768.0,
}

// BetaIntra is the inter-band prediction coefficient used for intra frames
// (no inter-frame term).
const BetaIntra = 4915.0 / 32768.0

// LogN is log2(band width) in Q8, used by bit allocation. Source: libopus
// modes.c logN400.
var LogN = [21]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	256, 256, 256, 256,
	512, 512, 512,
	672, 672, 768, 928, 1088, 1152,
}

// BandWidth returns the bin count of band at the 2.5ms base frame size.
func BandWidth(band int) int {
	if band < 0 || band >= MaxBands {
		return 0
	}
	return EBands[band+1] - EBands[band]
}

// ScaledBandStart returns the bin index of band's start at the given frame
// size (in samples at 48kHz).
func ScaledBandStart(band, frameSize int) int {
	if band < 0 || band > MaxBands {
		return 0
	}
	return EBands[band] * (frameSize / Overlap)
}

// ScaledBandEnd returns the bin index of band's end at the given frame size.
func ScaledBandEnd(band, frameSize int) int {
	if band < 0 || band >= MaxBands {
		return 0
	}
	return EBands[band+1] * (frameSize / Overlap)
}

// ScaledBandWidth returns the bin count of band at the given frame size.
func ScaledBandWidth(band, frameSize int) int {
	if band < 0 || band >= MaxBands {
		return 0
	}
	return (EBands[band+1] - EBands[band]) * (frameSize / Overlap)
}

// Standard RFC 6716 / libopus bit-allocation constants. These scalars
// could not be located as explicit declarations anywhere in the teacher's
// celt/ tree (only call sites, across alloc.go/bands_quant.go/dynalloc.go)
// despite the algorithm itself being grounded there; they are the
// well-published RFC 6716 values rather than teacher-file-grounded (see
// DESIGN.md).
const (
	bitRes      = 3  // eighth-bit resolution: 1 bit = 1<<bitRes allocation units
	allocSteps  = 6  // interpolation refinement steps in the bisection search
	fineOffset  = 21 // additive offset applied to fine-energy-bit derivation
	maxFineBits = 8  // cap on fine-energy bits per band
)

// log2FracTable[i] is ceil(log2((i+1))<<bitRes), the reservation cost (in
// eighth-bits) of coding the intensity-stereo band index out of i+1
// possibilities. Source: RFC 6716 / libopus rate.c LOG2_FRAC_TABLE.
var log2FracTable = [21]int{
	0, 8, 13, 16, 19, 21, 23, 24,
	26, 27, 28, 29, 30, 31, 32, 32,
	33, 34, 34, 35, 36,
}
