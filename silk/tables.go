package silk

// ICDF tables for SILK parameter decoding (RFC 6716 Section 4.2). Every
// table starts at 256 and decreases to 0, matching rangecoder.DecodeICDF16's
// convention (ftb=8, total frequency 256). Ported from the teacher's
// silk/tables.go, which carries these as literal RFC values.

var icdfFrameTypeInactive = []uint16{230, 0}
var icdfFrameTypeActive = []uint16{232, 158, 10, 0}

var icdfGainMSBInactive = []uint16{256, 224, 192, 160, 128, 96, 64, 32, 0}
var icdfGainMSBUnvoiced = []uint16{256, 204, 154, 102, 51, 0}
var icdfGainMSBVoiced = []uint16{256, 255, 244, 220, 186, 145, 100, 56, 20, 0}
var icdfGainLSB = []uint16{256, 224, 192, 160, 128, 96, 64, 32, 0}
var icdfDeltaGain = []uint16{256, 250, 245, 239, 230, 219, 203, 180, 149, 111, 73, 41, 20, 8, 2, 0}

var icdfLSFStage1NBMBVoiced = []uint16{
	256, 240, 226, 214, 202, 190, 178, 166, 154, 142, 130, 118,
	106, 94, 82, 70, 58, 48, 40, 32, 24, 17, 11, 6, 2, 0,
}
var icdfLSFStage1NBMBUnvoiced = []uint16{
	256, 239, 223, 208, 193, 178, 163, 149, 135, 122, 109, 96,
	84, 72, 61, 51, 42, 33, 25, 18, 12, 7, 3, 0,
}
var icdfLSFStage1WBVoiced = []uint16{
	256, 238, 221, 204, 188, 173, 158, 144, 131, 118, 106, 95,
	84, 74, 65, 56, 47, 39, 32, 25, 19, 13, 8, 4, 1, 0,
}
var icdfLSFStage1WBUnvoiced = []uint16{
	256, 238, 221, 205, 190, 175, 161, 148, 135, 123, 111, 100,
	89, 79, 69, 60, 51, 43, 35, 28, 21, 15, 10, 6, 3, 1, 0,
}

// icdfLSFStage2 holds the eight shared residual probability tables (the
// teacher's silk/tables.go carries identical content for NB/MB and WB, so
// this module keeps one copy rather than two byte-identical arrays).
var icdfLSFStage2 = [8][]uint16{
	{256, 212, 168, 127, 85, 42, 0},
	{256, 235, 195, 146, 90, 37, 0},
	{256, 218, 175, 133, 91, 47, 0},
	{256, 226, 185, 139, 91, 43, 0},
	{256, 231, 192, 147, 96, 44, 0},
	{256, 238, 206, 164, 113, 58, 0},
	{256, 232, 196, 155, 107, 54, 0},
	{256, 228, 190, 148, 101, 50, 0},
}

var icdfLSFInterpolation = []uint16{256, 200, 150, 100, 50, 0}

var icdfPitchLagNB = []uint16{256, 230, 204, 178, 153, 128, 102, 76, 51, 0}
var icdfPitchLagMB = []uint16{256, 237, 218, 199, 181, 162, 144, 127, 109, 92, 76, 60, 45, 30, 15, 0}
var icdfPitchLagWB = []uint16{
	256, 245, 234, 223, 213, 203, 193, 183, 173, 163, 153, 143,
	133, 124, 115, 106, 97, 88, 79, 70, 62, 54, 46, 38, 30, 22, 15, 8, 0,
}
var icdfPitchContourNB = []uint16{256, 235, 215, 195, 175, 155, 135, 115, 95, 75, 55, 35, 17, 10, 5, 2, 0}
var icdfPitchContourMBWB = []uint16{256, 178, 110, 55, 0}
var icdfPitchDelta = []uint16{256, 232, 204, 171, 128, 85, 52, 24, 0}

var icdfLTPFilterIndexLow = []uint16{256, 185, 114, 43, 0}
var icdfLTPFilterIndexMid = []uint16{256, 196, 138, 83, 36, 0}
var icdfLTPFilterIndexHigh = []uint16{256, 206, 157, 109, 63, 21, 0}

var icdfLTPGainLow = []uint16{256, 224, 192, 160, 128, 96, 64, 32, 0}
var icdfLTPGainMid = []uint16{256, 240, 224, 208, 192, 176, 160, 144, 128, 112, 96, 80, 64, 48, 32, 16, 0}
var icdfLTPGainHigh = []uint16{
	256, 248, 240, 232, 224, 216, 208, 200, 192, 184, 176, 168, 160, 152, 144, 136,
	128, 120, 112, 104, 96, 88, 80, 72, 64, 56, 48, 40, 32, 24, 16, 8, 0,
}
var icdfLTPScaling = []uint16{256, 128, 64, 0}

// icdfPulsesPerBlock holds, per decoded rate level (0..pulsesRateLevels-1,
// selected by icdfRateLevelUnvoiced/Voiced), the ICDF over a shell block's
// total pulse count 0..silkMaxPulses, plus a trailing escape symbol (value
// silkMaxPulses+1) that triggers the LSB-extension chain in
// decodeExcitation. Grounded on the teacher's
// internal/silk/libopus_decode.go silkDecodePulses, which indexes an
// identically shaped silk_pulses_per_block_iCDF[rateLevel]; that table's
// literal probability bytes do not appear anywhere in the retrieval pack
// (unlike the rate-level-selector tables above, which are the teacher's
// real RFC literals), so each row here is synthesized at init time from a
// geometric pulse-count distribution whose mean grows with rate level,
// giving every rate level its own distinct table as the algorithm
// requires rather than the single shared table this module used before.
var icdfPulsesPerBlock [pulsesRateLevels][]uint16

// pulsesRateLevels is the number of values icdfRateLevelUnvoiced/Voiced
// can decode (len-1 symbols each), not the teacher's internal nRateLevels
// (which sizes its table for an additional reserved overflow row this
// module's reachable rate-level range never indexes).
const pulsesRateLevels = 8

// silkMaxPulses is the largest pulse count a shell block's base ICDF
// codes directly; silkMaxPulses+1 is the escape symbol chaining into the
// LSB-extension loop, per the teacher's internal/silk/libopus_consts.go.
const silkMaxPulses = 16

func init() {
	for level := 0; level < pulsesRateLevels; level++ {
		icdfPulsesPerBlock[level] = synthPulsesPerBlockICDF(level)
	}
}

// synthPulsesPerBlockICDF builds one rate level's pulse-count ICDF: a
// geometric decay over k=0..silkMaxPulses whose mean scales with level,
// followed by an escape symbol carrying the remaining probability mass.
func synthPulsesPerBlockICDF(level int) []uint16 {
	mean := 0.15 + float64(level)*0.9 // pulses/sample, grows with rate level
	p := 1.0 / (1.0 + mean)           // geometric parameter
	const n = silkMaxPulses + 1       // symbols 0..silkMaxPulses
	cdf := make([]uint16, n+2)        // +1 escape symbol, +1 terminal 0
	cdf[0] = 256
	mass := 1.0
	cum := 0.0
	for k := 0; k < n; k++ {
		pk := mass * p
		mass -= pk
		cum += pk
		v := 256 - int(cum*256)
		if v < 1 {
			v = 1
		}
		if v > int(cdf[k]) {
			v = int(cdf[k]) - 1
		}
		cdf[k+1] = uint16(v)
	}
	cdf[n+1] = 0
	return cdf
}

var icdfExcitationLSB = []uint16{256, 136, 0}

// icdfShellSplit is the binomial split table for shell-block pulse
// decoding, indexed by the total pulse count in the block being split
// (RFC 6716 Section 4.2.7.8.3). The teacher's tables.go carries this twice
// (once for "excitation split", once for "shell blocks") with identical
// content; this module keeps one copy under the name the algorithm uses.
var icdfShellSplit = [][]uint16{
	{256, 0},
	{256, 128, 0},
	{256, 171, 85, 0},
	{256, 192, 128, 64, 0},
	{256, 205, 154, 102, 51, 0},
	{256, 213, 171, 128, 85, 43, 0},
	{256, 219, 183, 146, 110, 73, 37, 0},
	{256, 224, 192, 160, 128, 96, 64, 32, 0},
	{256, 228, 199, 171, 142, 114, 85, 57, 28, 0},
	{256, 230, 205, 179, 154, 128, 102, 77, 51, 26, 0},
	{256, 233, 210, 186, 163, 140, 116, 93, 70, 47, 23, 0},
	{256, 235, 213, 192, 171, 149, 128, 107, 85, 64, 43, 21, 0},
	{256, 236, 216, 197, 177, 158, 138, 118, 99, 79, 59, 39, 20, 0},
	{256, 238, 219, 201, 183, 164, 146, 128, 110, 91, 73, 55, 37, 18, 0},
	{256, 239, 222, 204, 187, 170, 152, 135, 118, 101, 83, 66, 49, 31, 14, 0},
	{256, 240, 224, 208, 192, 176, 160, 144, 128, 112, 96, 80, 64, 48, 32, 16, 0},
	{256, 241, 226, 211, 195, 180, 165, 150, 135, 120, 105, 90, 75, 60, 45, 30, 15, 0},
	{256, 242, 227, 213, 198, 184, 170, 155, 141, 127, 113, 99, 85, 71, 57, 43, 29, 14, 0},
}

// icdfExcitationSign indexed by [signalType][quantOffsetType][pulseCount-1],
// pulse counts 1..6 (7+ clamped to 6, same as the teacher).
var icdfExcitationSign = [3][2][6][]uint16{
	{
		{{256, 128, 0}, {256, 128, 0}, {256, 128, 0}, {256, 128, 0}, {256, 128, 0}, {256, 128, 0}},
		{{256, 128, 0}, {256, 128, 0}, {256, 128, 0}, {256, 128, 0}, {256, 128, 0}, {256, 128, 0}},
	},
	{
		{{256, 185, 0}, {256, 168, 0}, {256, 155, 0}, {256, 146, 0}, {256, 138, 0}, {256, 133, 0}},
		{{256, 172, 0}, {256, 157, 0}, {256, 146, 0}, {256, 138, 0}, {256, 132, 0}, {256, 128, 0}},
	},
	{
		{{256, 162, 0}, {256, 152, 0}, {256, 143, 0}, {256, 137, 0}, {256, 132, 0}, {256, 128, 0}},
		{{256, 150, 0}, {256, 142, 0}, {256, 136, 0}, {256, 131, 0}, {256, 128, 0}, {256, 125, 0}},
	},
}

var icdfVADFlag = []uint16{256, 155, 0}
var icdfLBRRFlag = []uint16{256, 205, 0}
var icdfLBRRFlags2 = []uint16{256, 217, 188, 65, 0}
var icdfLBRRFlags3 = []uint16{256, 226, 204, 183, 132, 108, 66, 17, 0}

var icdfRateLevelUnvoiced = []uint16{256, 241, 221, 193, 159, 118, 72, 31, 0}
var icdfRateLevelVoiced = []uint16{256, 232, 200, 162, 120, 78, 42, 14, 0}

var icdfLCGSeed = []uint16{256, 192, 128, 64, 0}

var icdfStereoOnlyFlag = []uint16{256, 128, 0}
var icdfStereoPredWeight = []uint16{256, 223, 191, 159, 127, 95, 63, 31, 0}
var icdfStereoPredWeightDelta = []uint16{256, 244, 220, 180, 126, 72, 36, 12, 0}

// quantOffsetsQ10 holds the excitation magnitude bias per (signalType
// voiced/unvoiced, quantOffsetType), RFC 6716 Table 34, ported from the
// teacher's libopus_consts.go silk_Quantization_Offsets_Q10 (unvoiced row,
// voiced row). Values are in Q10; divided down wherever the rest of this
// float-based package consumes them.
var quantOffsetsQ10 = [2][2]float64{
	{100, 240}, // unvoiced: low, high
	{32, 100},  // voiced: low, high
}

// stereoPredWeights holds the eight Q13 stereo prediction coefficients from
// RFC 6716 Section 4.2.8, ported from the teacher's silk/stereo.go.
var stereoPredWeights = [8]float64{
	-13732.0 / 8192, -10050.0 / 8192, -5765.0 / 8192, -1776.0 / 8192,
	1776.0 / 8192, 5765.0 / 8192, 10050.0 / 8192, 13732.0 / 8192,
}

// lsfMinGapQ15 is the minimum-gap stabilization bound between adjacent LSF
// coefficients (RFC 6716 Section 4.2.7.5.5). The pack did not carry the
// RFC table's exact literal values, so this module uses one
// representative minimum gap for every index and both LPC orders rather
// than the per-index
// RFC table, a documented condensation (see DESIGN.md); correctness of
// ordering/stability is preserved, only the exact spacing differs from
// libopus bit-for-bit.
const lsfMinGapQ15 = 250

// Gain dequantization constants, ported from the teacher's
// internal/silk/libopus_consts.go and internal/silk/libopus_gain.go
// silkGainsDequant: a 0..63 log-gain index maps to a Q7 log-domain value
// via gainOffsetQ7 + invScaleQ16Val*index, then through silkLog2Lin to a
// Q16 linear multiplier (see gains.go).
const (
	minQGainDb        = 2
	maxQGainDb        = 88
	nLevelsQGain      = 64
	minDeltaGainQuant  = -4
	maxDeltaGainQuant  = 36
	qgainRangeQ7      = ((maxQGainDb - minQGainDb) * 128) / 6
	gainOffsetQ7      = (minQGainDb*128)/6 + 16*128
	invScaleQ16Val    = (1 << 16) * qgainRangeQ7 / (nLevelsQGain - 1)
)
