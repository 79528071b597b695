package celt

import (
	"math"
	"testing"

	"github.com/opuscore/opus/rangecoder"
)

func syntheticBuf(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*53 + 17)
	}
	return buf
}

func TestDecodeFrameMonoProducesFrameSizeSamples(t *testing.T) {
	d := NewDecoder(1)
	rd := rangecoder.New(syntheticBuf(128))
	out, err := d.DecodeFrame(rd, 960, 48000, 128)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960 {
		t.Fatalf("len(out) = %d, want 960", len(out))
	}
	for i, v := range out {
		if v > 1 || v < -1 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
	}
}

func TestDecodeFrameStereoInterleaved(t *testing.T) {
	d := NewDecoder(2)
	rd := rangecoder.New(syntheticBuf(256))
	out, err := d.DecodeFrame(rd, 960, 48000, 256)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960*2 {
		t.Fatalf("len(out) = %d, want %d", len(out), 960*2)
	}
}

func TestDecodeFrameRespectsBandRange(t *testing.T) {
	d := NewDecoder(1)
	d.SetBandRange(17, MaxBands)
	rd := rangecoder.New(syntheticBuf(96))
	out, err := d.DecodeFrame(rd, 480, 48000, 96)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 480 {
		t.Fatalf("len(out) = %d, want 480", len(out))
	}
}

func TestResetIsIdempotent(t *testing.T) {
	d := NewDecoder(2)
	rd := rangecoder.New(syntheticBuf(128))
	if _, err := d.DecodeFrame(rd, 960, 48000, 128); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	d.Reset()
	first := append([]float64{}, d.prevEnergy...)
	d.Reset()
	for i, v := range d.prevEnergy {
		if v != first[i] {
			t.Fatalf("Reset not idempotent at %d: %v != %v", i, v, first[i])
		}
	}
	if d.startBand != 0 || d.endBand != MaxBands {
		t.Fatalf("Reset did not restore default band range: [%d,%d]", d.startBand, d.endBand)
	}
}

func TestFrequencyBandsForRateMatchesDecimationTable(t *testing.T) {
	cases := []struct {
		rate int
		want int
	}{
		{8000, 13},
		{12000, 16},
		{16000, 17},
		{24000, 19},
		{48000, MaxBands},
	}
	for _, c := range cases {
		if got := frequencyBandsForRate(c.rate); got != c.want {
			t.Errorf("frequencyBandsForRate(%d) = %d, want %d", c.rate, got, c.want)
		}
	}
}

func TestEBandsMonotonicallyIncreasing(t *testing.T) {
	for i := 1; i < len(EBands); i++ {
		if EBands[i] <= EBands[i-1] {
			t.Fatalf("EBands not increasing at %d: %v", i, EBands)
		}
	}
}

func TestPulseVectorCountKnownValues(t *testing.T) {
	// V(N,0) = 1 for any N; V(1,K) = 2 for K>0 (+1 and -1).
	if v := pulseVectorCount(5, 0); v != 1 {
		t.Errorf("V(5,0) = %d, want 1", v)
	}
	if v := pulseVectorCount(1, 3); v != 2 {
		t.Errorf("V(1,3) = %d, want 2", v)
	}
	if v := pulseVectorCount(2, 1); v != 4 {
		t.Errorf("V(2,1) = %d, want 4", v)
	}
}

func TestNormalizePulseVectorIsUnitNorm(t *testing.T) {
	pulses := []int{2, -1, 0, 3, -2}
	out := normalizePulseVector(pulses)
	sumSq := 0.0
	for _, v := range out {
		sumSq += v * v
	}
	if math.Abs(sumSq-1.0) > 1e-9 {
		t.Fatalf("sum of squares = %v, want 1.0", sumSq)
	}
}

func TestNormalizePulseVectorAllZero(t *testing.T) {
	out := normalizePulseVector([]int{0, 0, 0})
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestDecodePulseVectorConservesPulseCount(t *testing.T) {
	rd := rangecoder.New(syntheticBuf(64))
	n, k := 8, 5
	y := decodePulseVector(rd, n, k)
	sum := 0
	for _, v := range y {
		if v < 0 {
			sum += -v
		} else {
			sum += v
		}
	}
	if sum != k {
		t.Fatalf("sum(|y|) = %d, want %d", sum, k)
	}
}

func TestComputeAllocationStaysWithinBudget(t *testing.T) {
	rd := rangecoder.New(syntheticBuf(64))
	offsets := make([]int, MaxBands)
	alloc := ComputeAllocation(rd, 64<<bitRes, MaxBands, 1, nil, offsets, 5, 0, false, 2)
	total := 0
	for _, b := range alloc.BandBits {
		total += b
	}
	if total > 64<<bitRes {
		t.Fatalf("allocated %d eighth-bits, exceeds budget %d", total, 64<<bitRes)
	}
	if alloc.CodedBands < 0 || alloc.CodedBands > MaxBands {
		t.Fatalf("CodedBands out of range: %d", alloc.CodedBands)
	}
}

func TestComputeAllocationZeroBudget(t *testing.T) {
	rd := rangecoder.New(syntheticBuf(8))
	offsets := make([]int, MaxBands)
	alloc := ComputeAllocation(rd, 0, MaxBands, 1, nil, offsets, 5, 0, false, 2)
	for i, b := range alloc.BandBits {
		if b != 0 {
			t.Fatalf("BandBits[%d] = %d, want 0 for zero budget", i, b)
		}
	}
}

func TestVorbisWindowTableRisingShape(t *testing.T) {
	if celtWindowTable[0] >= celtWindowTable[Overlap/2] {
		t.Fatalf("window table should rise toward center: [0]=%v [%d]=%v", celtWindowTable[0], Overlap/2, celtWindowTable[Overlap/2])
	}
	for _, v := range celtWindowTable {
		if v < 0 || v > 1 {
			t.Fatalf("window value out of [0,1]: %v", v)
		}
	}
}

func TestInverseMDCTLengthDoublesInput(t *testing.T) {
	freq := make([]float64, 16)
	freq[0] = 1
	out := inverseMDCT(freq)
	if len(out) != 32 {
		t.Fatalf("len(out) = %d, want 32", len(out))
	}
}

func TestApplyAntiCollapseRenormalizesCollapsedBand(t *testing.T) {
	d := NewDecoder(1)
	shapes := []BandShape{{Bins: [][]float64{make([]float64, 8)}, Pulses: 0}}
	energies := make([]float64, MaxBands)
	d.applyAntiCollapse(shapes, energies, 0, 1, 0, false, nil)
	sumSq := 0.0
	for _, v := range shapes[0].Bins[0] {
		sumSq += v * v
	}
	if math.Abs(sumSq-1.0) > 1e-9 {
		t.Fatalf("anti-collapse band sum-of-squares = %v, want 1.0", sumSq)
	}
}
