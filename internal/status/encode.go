// internal/status/encode.go
package status

import "math"

// Encode converts a Snapshot into the live part of a status block
// (everything except the device name).
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotWeatherState] = s.Weather

	n := len(s.Params)
	if n > MaxParams {
		n = MaxParams
	}
	regs[SlotParamCount] = uint16(n)

	for i := 0; i < MaxParams; i++ {
		v := float32(math.NaN())
		if i < n && s.Params[i].HasValue {
			v = float32(s.Params[i].Value)
		}
		hi, lo := splitFloat32(v)
		regs[SlotParamStart+i*SlotsPerParam] = hi
		regs[SlotParamStart+i*SlotsPerParam+1] = lo
	}

	return regs
}

// decodeParam reads parameter i back out of an encoded block.
func decodeParam(regs []uint16, i int) float32 {
	at := SlotParamStart + i*SlotsPerParam
	return math.Float32frombits(uint32(regs[at])<<16 | uint32(regs[at+1]))
}

func splitFloat32(v float32) (uint16, uint16) {
	b := math.Float32bits(v)
	return uint16(b >> 16), uint16(b)
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
