package hybrid

import "testing"

func syntheticPayload(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*53 + 7)
	}
	return buf
}

func TestDecodeFrameMono10ms(t *testing.T) {
	d := NewDecoder(1)
	out, err := d.DecodeFrame(syntheticPayload(200), 480)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 480 {
		t.Fatalf("len(out) = %d, want 480", len(out))
	}
	for i, v := range out {
		if v > 1 || v < -1 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
	}
}

func TestDecodeFrameStereo20ms(t *testing.T) {
	d := NewDecoder(2)
	out, err := d.DecodeFrame(syntheticPayload(400), 960)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960*2 {
		t.Fatalf("len(out) = %d, want %d", len(out), 960*2)
	}
}

func TestDecodeFrameRejectsInvalidFrameSize(t *testing.T) {
	d := NewDecoder(1)
	if _, err := d.DecodeFrame(syntheticPayload(100), 320); err != ErrInvalidFrameSize {
		t.Fatalf("err = %v, want ErrInvalidFrameSize", err)
	}
}

func TestResetKeepsChannelCount(t *testing.T) {
	d := NewDecoder(1)
	if _, err := d.DecodeFrame(syntheticPayload(200), 480); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	d.Reset()
	if d.silk.Channels() != 1 {
		t.Fatalf("Channels() changed across Reset")
	}
}

func TestUpsampleLinearPreservesEndpoints(t *testing.T) {
	in := []float32{0, 1, 0, -1}
	out := upsampleLinear(in, 1, 8)
	if len(out) != 8 {
		t.Fatalf("len(out) = %d, want 8", len(out))
	}
	if out[0] != in[0] {
		t.Fatalf("out[0] = %v, want %v", out[0], in[0])
	}
	if out[7] != in[3] {
		t.Fatalf("out[7] = %v, want %v", out[7], in[3])
	}
}
