package opus

import "testing"

func syntheticFramePayload(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*41 + 3)
	}
	return buf
}

func TestNewDecoderRejectsBadSampleRate(t *testing.T) {
	if _, err := NewDecoder(44100, 1); err != ErrUnsupportedConfig {
		t.Fatalf("err = %v, want ErrUnsupportedConfig", err)
	}
}

func TestNewDecoderRejectsBadChannels(t *testing.T) {
	if _, err := NewDecoder(48000, 3); err != ErrUnsupportedConfig {
		t.Fatalf("err = %v, want ErrUnsupportedConfig", err)
	}
}

func TestDecodeFrameSILKOnly(t *testing.T) {
	d, err := NewDecoder(48000, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	// config 9: SILK wideband, 20ms, mono, code 0.
	frame := append([]byte{0x4C &^ 0x04}, syntheticFramePayload(64)...)
	out, err := d.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960 {
		t.Fatalf("len(out) = %d, want 960", len(out))
	}
}

func TestDecodeFrameCELTOnly(t *testing.T) {
	d, err := NewDecoder(48000, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	// config 31: CELT fullband, 20ms, mono, code 0.
	frame := append([]byte{0xF8}, syntheticFramePayload(128)...)
	out, err := d.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960 {
		t.Fatalf("len(out) = %d, want 960", len(out))
	}
}

func TestDecodeFrameHybrid(t *testing.T) {
	d, err := NewDecoder(48000, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	// config 15: Hybrid fullband, 20ms, mono, code 0.
	frame := append([]byte{0x78}, syntheticFramePayload(200)...)
	out, err := d.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960 {
		t.Fatalf("len(out) = %d, want 960", len(out))
	}
}

func TestDecodeFrameConcealsPacketLoss(t *testing.T) {
	d, err := NewDecoder(48000, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	out, err := d.DecodeFrame(nil)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(out) != 960 {
		t.Fatalf("len(out) = %d, want 960 (default lastFrameSize)", len(out))
	}
	for _, v := range out {
		if v != 0 {
			t.Fatalf("concealed output not silent: %v", v)
		}
	}
}

func TestDecodePacketMultiFrame(t *testing.T) {
	d, err := NewDecoder(48000, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	// config 0 (SILK NB 10ms), code 1: two equal frames.
	toc := byte(0x00 | 0x01)
	payload := syntheticFramePayload(40)
	packet := append([]byte{toc}, payload...)
	out, err := d.DecodePacket(packet)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if len(out) != 480*2 {
		t.Fatalf("len(out) = %d, want %d", len(out), 480*2)
	}
}

func TestDecodeInt16ProducesFrameSamples(t *testing.T) {
	d, err := NewDecoder(48000, 1)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	frame := append([]byte{0xF8}, syntheticFramePayload(128)...)
	out, err := d.DecodeInt16(frame)
	if err != nil {
		t.Fatalf("DecodeInt16: %v", err)
	}
	if len(out) != 960 {
		t.Fatalf("len(out) = %d, want 960", len(out))
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	d, err := NewDecoder(48000, 2)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	frame := append([]byte{0xF8 | 0x04}, syntheticFramePayload(128)...)
	if _, err := d.DecodeFrame(frame); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	d.Reset()
	if d.haveDecoded {
		t.Fatalf("haveDecoded true after Reset")
	}
	if d.lastFrameSize != 960 || d.lastMode != ModeHybrid {
		t.Fatalf("Reset did not restore defaults: frameSize=%d mode=%v", d.lastFrameSize, d.lastMode)
	}
}

func TestResamplerDelayKnownRates(t *testing.T) {
	for _, rate := range []int{8000, 12000, 16000, 24000, 48000} {
		if d := ResamplerDelay(rate); d < 0 {
			t.Errorf("ResamplerDelay(%d) = %d, want >= 0", rate, d)
		}
	}
	if ResamplerDelay(48000) != 0 {
		t.Fatalf("ResamplerDelay(48000) = %d, want 0 (no resampling needed)", ResamplerDelay(48000))
	}
	if ResamplerDelay(44100) != 0 {
		t.Fatalf("ResamplerDelay(44100) = %d, want 0 for unsupported rate", ResamplerDelay(44100))
	}
}
