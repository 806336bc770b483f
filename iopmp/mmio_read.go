/*
 * iopmp - MMIO read path
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

// Read performs a register-interface read of numBytes (4 or 8) at offset.
// An invalid access (bad width, misalignment, out-of-window) reads as 0,
// same as the reference model; it is never reported as a Go error.
func (m *IOPMP) Read(offset uint64, numBytes int) uint64 {
	if !m.isAccessValid(offset, numBytes) {
		return 0
	}
	low := uint64(m.readWord(offset))
	if numBytes == 4 {
		return low
	}
	high := uint64(m.readWord(offset + 4))
	return low | high<<32
}

func (m *IOPMP) readWord(offset uint64) uint32 {
	switch {
	case offset == versionOffset:
		return m.cfg.SpecVer
	case offset == implementationOffset:
		return m.cfg.Vendor
	case offset == hwcfg0Offset:
		return m.regs.hwcfg0.raw()
	case offset == hwcfg1Offset:
		return m.regs.hwcfg1
	case offset == hwcfg2Offset:
		return m.regs.hwcfg2.raw()
	case offset == hwcfg3Offset:
		return m.regs.hwcfg3.raw()
	case offset == entryoffsetOffset:
		return uint32(m.cfg.EntryOffset)
	case offset == mdstallOffset:
		return lowWordFromBitmap(m.regs.mdstall.exempt, uint32(m.regs.mdstall.md&0x7fffffff))
	case offset == mdstallhOffset:
		return uint32(m.regs.mdstall.md >> 31)
	case offset == rridscpOffset:
		return m.readRRIDSCP()
	case offset == mdlckOffset:
		return lowWordFromBitmap(m.regs.mdlck.l, uint32(m.regs.mdlck.md&0x7fffffff))
	case offset == mdlckhOffset:
		return uint32(m.regs.mdlck.md >> 31)
	case offset == mdcfglckOffset:
		v := uint32(0)
		if m.regs.mdcfglck.l {
			v |= 1
		}
		v |= uint32(m.regs.mdcfglck.f) << 1
		return v
	case offset == entrylckOffset:
		v := uint32(0)
		if m.regs.entrylck.l {
			v |= 1
		}
		v |= uint32(m.regs.entrylck.f) << 1
		return v
	case offset == errCfgOffset:
		return m.regs.errCfg.raw()
	case offset == errInfoOffset:
		return m.regs.errInfo.raw()
	case offset == errReqAddrOffset:
		return m.regs.errReqAddr
	case offset == errReqAddrHOffset:
		return m.regs.errReqAddrH
	case offset == errReqIDOffset:
		return m.regs.errReqID.raw()
	case offset == errMFROffset:
		return m.readErrMFR()
	case offset == errMSIAddrOffset:
		return m.regs.errMSIAddr
	case offset == errMSIAddrHOffset:
		return m.regs.errMSIAddrH
	case isInRange(offset, errUserBaseOffset, errUserBaseOffset+4*(errUserCount-1)):
		return m.regs.errUser[(offset-errUserBaseOffset)/4]
	case m.isAccessMDCFGTable(offset):
		idx := m.mdcfgTableIndex(offset)
		if idx < 0 || idx >= len(m.mdcfg) {
			return 0
		}
		return uint32(m.mdcfg[idx].t)
	case m.isAccessSRCMDTable(offset):
		return m.readSRCMDWord(offset)
	case m.isAccessEntryArray(offset):
		idx := m.entryTableIndex(offset)
		if idx < 0 || idx >= len(m.entries) {
			return 0
		}
		return m.entryWord(idx, entryRegIndex(offset))
	}
	return 0
}

func (m *IOPMP) readSRCMDWord(offset uint64) uint32 {
	idx := m.srcmdTableIndex(offset)
	if idx < 0 || idx >= len(m.srcmd) {
		return 0
	}
	row := m.srcmd[idx]
	lane := srcmdRegIndex(offset)
	switch m.cfg.SRCMDFmt {
	case 0:
		switch lane {
		case 0:
			return lowWordFromBitmap(row.enL, row.en.low)
		case 1:
			return row.en.high
		case 2:
			return row.r.low << 1
		case 3:
			return row.r.high
		case 4:
			return row.w.low << 1
		case 5:
			return row.w.high
		}
	case 2:
		switch lane {
		case 0:
			return row.permLow
		case 1:
			return row.permHigh
		}
	}
	return 0
}
