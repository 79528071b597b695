package silk

import (
	"testing"

	"github.com/opuscore/opus/rangecoder"
)

func syntheticBuf() []byte {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i*37 + 11)
	}
	return buf
}

func TestDecodeFrameMonoProducesFrameSizeSamples(t *testing.T) {
	d := NewDecoder(1)
	rd := rangecoder.New(syntheticBuf())
	out, err := d.DecodeFrame(rd, Wideband, 320, true)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 320 {
		t.Fatalf("len(out) = %d, want 320", len(out))
	}
	for i, v := range out {
		if v > 1 || v < -1 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
	}
}

func TestDecodeFrameStereoInterleaved(t *testing.T) {
	d := NewDecoder(2)
	rd := rangecoder.New(syntheticBuf())
	out, err := d.DecodeFrame(rd, Wideband, 320, true)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 320*2 {
		t.Fatalf("len(out) = %d, want %d", len(out), 320*2)
	}
}

func TestResetClearsChannelHistory(t *testing.T) {
	d := NewDecoder(1)
	rd := rangecoder.New(syntheticBuf())
	if _, err := d.DecodeFrame(rd, Wideband, 320, true); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	d.Reset()
	for i, v := range d.mid.history {
		if v != 0 {
			t.Fatalf("history[%d] = %v after Reset, want 0", i, v)
		}
	}
	if d.mid.haveDecoded {
		t.Fatalf("haveDecoded true after Reset")
	}
}

func TestStabilizeLSFKeepsIncreasingOrder(t *testing.T) {
	lsf := []float64{0.1, 0.05, 0.3, 0.29, 0.9}
	stabilizeLSF(lsf)
	for i := 1; i < len(lsf); i++ {
		if lsf[i] <= lsf[i-1] {
			t.Fatalf("lsf not strictly increasing at %d: %v", i, lsf)
		}
	}
	if lsf[0] <= 0 || lsf[len(lsf)-1] >= 3.14159265 {
		t.Fatalf("lsf out of (0,pi) bounds: %v", lsf)
	}
}

func TestLsfToLPCProducesOrderCoefficients(t *testing.T) {
	lsf := lsfCodebook(10, 16, 32)
	stabilizeLSF(lsf)
	lpc := lsfToLPC(lsf)
	if len(lpc) != 16 {
		t.Fatalf("len(lpc) = %d, want 16", len(lpc))
	}
}

func TestShellSplitConservesTotalPulses(t *testing.T) {
	buf := syntheticBuf()
	rd := rangecoder.New(buf)
	pulses := make([]int, 16)
	shellSplit(rd, pulses, 9)
	sum := 0
	for _, p := range pulses {
		sum += p
	}
	if sum != 9 {
		t.Fatalf("sum(pulses) = %d, want 9", sum)
	}
}

func TestGainFromLogIndexMonotonic(t *testing.T) {
	prev := gainFromLogIndex(0)
	for i := 1; i <= 63; i++ {
		cur := gainFromLogIndex(i)
		if cur <= prev {
			t.Fatalf("gain not increasing at index %d: %v <= %v", i, cur, prev)
		}
		prev = cur
	}
}
