// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/amsky-bridge/internal/status"
)

// endpointClient is the exact contract the status writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// deviceStatusWriter writes the weather status block into holding registers.
type deviceStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     []uint16 // live part of the block as last written
	nameRegs []uint16
}

// NewDeviceStatusWriter builds the Modbus status block writer.
func NewDeviceStatusWriter(plan StatusPlan, cli endpointClient) *deviceStatusWriter {
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: status.EncodeDeviceName(plan.DeviceName),
	}
}

// Write delivers a snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) Write(s status.Snapshot) error {
	if sw == nil || sw.cli == nil {
		return errors.New("status writer: disabled")
	}

	// ------------------------------------------------------------
	// HARD INVARIANT: seconds_in_error MUST NOT wrap
	// ------------------------------------------------------------
	if s.SecondsInError > status.SecondsInErrorMax {
		s.SecondsInError = status.SecondsInErrorMax
	}

	regs := status.Encode(s)
	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		full := sw.fullBlockRegs(regs)

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, full); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs
		return nil
	}

	var errs []string

	// Slots 0–4: header, one register each
	for slot := status.SlotHealthCode; slot <= status.SlotParamCount; slot++ {
		if sw.last[slot] == regs[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			baseAddr+uint16(slot),
			[]uint16{regs[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		} else {
			sw.last[slot] = regs[slot]
		}
	}

	// Parameter area: one contiguous write if anything moved
	if !equalRange(sw.last, regs, status.SlotParamStart, status.SlotParamEnd) {
		area := regs[status.SlotParamStart : status.SlotParamEnd+1]
		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			baseAddr+status.SlotParamStart,
			area,
		); err != nil {
			errs = append(errs, fmt.Sprintf("param area write failed: %v", err))
		} else {
			copy(sw.last[status.SlotParamStart:], area)
		}
	}

	if len(errs) > 0 {
		// Any failure re-asserts the full block on the next write.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(live []uint16) []uint16 {
	regs := make([]uint16, status.SlotsPerDevice)
	copy(regs, live)

	// Reserved slots are left as zero by Encode.

	// Device name always lives at the end of the block
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

	return regs
}

func equalRange(a, b []uint16, from, to int) bool {
	for i := from; i <= to; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
