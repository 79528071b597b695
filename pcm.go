// pcm.go converts between float32 and int16 PCM. Ported from the
// teacher's pcm.go.

package opus

import "math"

func float32ToInt16(sample float32) int16 {
	scaled := float64(sample) * 32768.0
	if scaled > 32767.0 {
		return 32767
	}
	if scaled < -32768.0 {
		return -32768
	}
	return int16(math.RoundToEven(scaled))
}
