/*
 * iopmp - MMIO offset table and table-window arithmetic
 *
 * Copyright 2025, IOPMP reference model contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package iopmp

// Fixed register offsets (spec.md section 6).
const (
	versionOffset        uint64 = 0x0000
	implementationOffset uint64 = 0x0004
	hwcfg0Offset          uint64 = 0x0008
	hwcfg1Offset          uint64 = 0x000C
	hwcfg2Offset          uint64 = 0x0010
	hwcfg3Offset          uint64 = 0x0014
	entryoffsetOffset     uint64 = 0x002C
	mdstallOffset         uint64 = 0x0030
	mdstallhOffset        uint64 = 0x0034
	rridscpOffset         uint64 = 0x0038
	mdlckOffset           uint64 = 0x0040
	mdlckhOffset          uint64 = 0x0044
	mdcfglckOffset        uint64 = 0x0048
	entrylckOffset        uint64 = 0x004C
	errCfgOffset          uint64 = 0x0060
	errInfoOffset         uint64 = 0x0064
	errReqAddrOffset      uint64 = 0x0068
	errReqAddrHOffset     uint64 = 0x006C
	errReqIDOffset        uint64 = 0x0070
	errMFROffset          uint64 = 0x0074
	errMSIAddrOffset      uint64 = 0x0078
	errMSIAddrHOffset     uint64 = 0x007C
	errUserBaseOffset     uint64 = 0x0080
	errUserCount          uint64 = 8

	mdcfgTableBaseOffset  uint64 = 0x0800
	srcmdTableBaseOffset  uint64 = 0x1000
	srcmdRegStride        uint64 = 32
	entryRegStride        uint64 = 16

	defaultBusWidth = 4 // REG_INTF_BUS_WIDTH, matching original_source/config.h
)

// isInRange reports whether offset lies in [lo, hi] inclusive.
func isInRange(offset, lo, hi uint64) bool {
	return offset >= lo && offset <= hi
}

// mdcfgTableRange returns the inclusive byte range of the MDCFG table, valid
// only when mdcfg_fmt==0.
func (m *IOPMP) mdcfgTableRange() (lo, hi uint64) {
	lo = mdcfgTableBaseOffset
	hi = mdcfgTableBaseOffset + uint64(m.cfg.MDNum-1)*4
	return lo, hi
}

// srcmdTableRange returns the inclusive byte range of the SRCMD table for
// the configured srcmd_fmt, or (0, 0) for srcmd_fmt==1, which has no table.
func (m *IOPMP) srcmdTableRange() (lo, hi uint64) {
	lo = srcmdTableBaseOffset
	switch m.cfg.SRCMDFmt {
	case 0:
		hi = srcmdTableBaseOffset + uint64(m.cfg.RRIDNum-1)*srcmdRegStride + (srcmdRegStride - 4)
	case 2:
		hi = srcmdTableBaseOffset + uint64(m.cfg.MDNum-1)*srcmdRegStride + (srcmdRegStride - 4)
	default:
		return 0, 0
	}
	return lo, hi
}

// entryTableRange returns the inclusive byte range of the entry array.
func (m *IOPMP) entryTableRange() (lo, hi uint64) {
	lo = m.cfg.EntryOffset
	hi = m.cfg.EntryOffset + uint64(m.cfg.EntryNum-1)*entryRegStride + (entryRegStride - 4)
	return lo, hi
}

func (m *IOPMP) isAccessMDCFGTable(offset uint64) bool {
	if m.cfg.MDCFGFmt != 0 {
		return false
	}
	lo, hi := m.mdcfgTableRange()
	return isInRange(offset, lo, hi)
}

func (m *IOPMP) isAccessSRCMDTable(offset uint64) bool {
	lo, hi := m.srcmdTableRange()
	if lo == 0 && hi == 0 {
		return false
	}
	return isInRange(offset, lo, hi)
}

func (m *IOPMP) isAccessEntryArray(offset uint64) bool {
	lo, hi := m.entryTableRange()
	return isInRange(offset, lo, hi)
}

// isAccessValid implements spec.md section 4.2's pre-checks: width, bus
// width, alignment, and window legality.
func (m *IOPMP) isAccessValid(offset uint64, numBytes int) bool {
	if numBytes != 4 && numBytes != 8 {
		return false
	}
	if numBytes > m.busWidth {
		return false
	}
	if offset%uint64(numBytes) != 0 {
		return false
	}
	if offset < srcmdTableBaseOffset {
		return true
	}
	return m.isAccessSRCMDTable(offset) || m.isAccessEntryArray(offset)
}
