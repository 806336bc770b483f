/*
 * iopmp - MMIO write path
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

// Write performs a register-interface write of numBytes (4 or 8) at offset.
// Out-of-range, misaligned, or over-bus-width writes are silently dropped,
// matching the reference model: MMIO faults never surface as a Go error.
func (m *IOPMP) Write(offset uint64, data uint64, numBytes int) {
	if !m.isAccessValid(offset, numBytes) {
		return
	}
	low := uint32(data)
	high := uint32(data >> 32)

	m.writeWord(offset, low)
	if numBytes == 8 {
		// An 8-byte write also covers the next register (MDSTALL->MDSTALLH,
		// MDLCK->MDLCKH, ...).
		m.writeWord(offset+4, high)
	}
}

func (m *IOPMP) writeWord(offset uint64, data uint32) {
	switch {
	case offset == versionOffset, offset == implementationOffset, offset == hwcfg1Offset:
		// Read-only.
	case offset == hwcfg0Offset:
		m.writeHWCFG0(data)
	case offset == hwcfg2Offset:
		m.writeHWCFG2(data)
	case offset == hwcfg3Offset:
		m.writeHWCFG3(data)
	case offset == entryoffsetOffset:
		// Read-only mirror of Config.EntryOffset.
	case offset == mdstallOffset:
		m.writeMDSTALL(false, data)
	case offset == mdstallhOffset:
		m.writeMDSTALL(true, data)
	case offset == rridscpOffset:
		m.writeRRIDSCP(data)
	case offset == mdlckOffset:
		m.writeMDLCK(false, data)
	case offset == mdlckhOffset:
		m.writeMDLCK(true, data)
	case offset == mdcfglckOffset:
		m.writeMDCFGLCK(data)
	case offset == entrylckOffset:
		m.writeENTRYLCK(data)
	case offset == errCfgOffset:
		m.writeERRCFG(data)
	case offset == errInfoOffset:
		m.writeERRINFO(data)
	case offset == errReqAddrOffset, offset == errReqAddrHOffset, offset == errReqIDOffset, offset == errMFROffset:
		// Read-only.
	case offset == errMSIAddrOffset:
		if !m.regs.errCfg.l {
			m.regs.errMSIAddr = data
		}
	case offset == errMSIAddrHOffset:
		if !m.regs.errCfg.l {
			m.regs.errMSIAddrH = data
		}
	case isInRange(offset, errUserBaseOffset, errUserBaseOffset+4*(errUserCount-1)):
		// ERR_USER is read-only diagnostic scratch, mirroring ERR_INFO.
	case m.isAccessMDCFGTable(offset):
		m.writeMDCFG(offset, data)
	case m.isAccessSRCMDTable(offset):
		m.writeSRCMD(offset, data)
	case m.isAccessEntryArray(offset):
		m.writeEntryWord(offset, data)
	}
}

func (m *IOPMP) writeHWCFG0(data uint32) {
	if m.regs.hwcfg0.enable {
		return // enable is sticky once set (W1SS)
	}
	m.regs.hwcfg0.enable = data&1 != 0
}

func (m *IOPMP) writeHWCFG2(data uint32) {
	if !m.regs.hwcfg0.hwcfg2En {
		return
	}
	if !m.regs.hwcfg2.nonPrioEn {
		return
	}
	if m.regs.hwcfg2.prioEntProg {
		m.regs.hwcfg2.prioEntry = uint16(data & 0xffff)
		if data&(1<<16) != 0 {
			m.regs.hwcfg2.prioEntProg = false // W1C
		}
	}
}

func (m *IOPMP) writeHWCFG3(data uint32) {
	if !m.regs.hwcfg0.hwcfg3En {
		return
	}
	if m.regs.hwcfg3.mdcfgFmt == 2 && !m.regs.hwcfg0.enable {
		m.regs.hwcfg3.mdEntryNum = uint8((data >> 4) & 0xff)
	}
	if m.regs.hwcfg3.rridTranslEn && m.regs.hwcfg3.rridTranslProg {
		m.regs.hwcfg3.rridTransl = uint16(data >> 16)
		if data&(1<<15) != 0 {
			m.regs.hwcfg3.rridTranslProg = false // W1C
		}
	}
}

func (m *IOPMP) writeMDLCK(high bool, data uint32) {
	if m.regs.mdlck.l {
		return
	}
	if !high {
		l, low := lowWordToBitmap(data)
		m.regs.mdlck.l = m.regs.mdlck.l || l
		m.regs.mdlck.md = (m.regs.mdlck.md &^ 0x7fffffff) | uint64(low)
	} else {
		m.regs.mdlck.md = (m.regs.mdlck.md & 0x7fffffff) | (uint64(data) << 31)
	}
}

func (m *IOPMP) writeMDCFGLCK(data uint32) {
	if m.regs.mdcfglck.l {
		return
	}
	f := uint8(data >> 1 & 0x7f)
	if f < m.regs.mdcfglck.f {
		return // monotonic: f can only increase
	}
	m.regs.mdcfglck.f = f
	m.regs.mdcfglck.l = m.regs.mdcfglck.l || data&1 != 0
}

func (m *IOPMP) writeENTRYLCK(data uint32) {
	if m.regs.entrylck.l {
		return
	}
	f := uint16(data >> 1)
	if f < m.regs.entrylck.f {
		return
	}
	m.regs.entrylck.f = f
	m.regs.entrylck.l = m.regs.entrylck.l || data&1 != 0
}

func (m *IOPMP) writeERRCFG(data uint32) {
	if m.regs.errCfg.l {
		return
	}
	m.regs.errCfg.ie = data&(1<<1) != 0
	m.regs.errCfg.rs = data&(1<<2) != 0
	m.regs.errCfg.msiEn = data&(1<<3) != 0
	m.regs.errCfg.stallViolationEn = data&(1<<4) != 0
	m.regs.errCfg.msidata = uint16((data >> 8) & 0x7ff)
	m.regs.errCfg.l = m.regs.errCfg.l || data&1 != 0
}

// writeERRINFO handles the ERR_INFO W1C bits: writing 1 to v or msi_werr
// clears them; the rest of the register is read-only.
func (m *IOPMP) writeERRINFO(data uint32) {
	if data&1 != 0 {
		m.regs.errInfo.v = false
	}
	if data&(1<<3) != 0 {
		m.regs.errInfo.msiWerr = false
	}
}

// writeEntryWord dispatches a write landing inside the entry array,
// enforcing ENTRYLCK and Config.AddrhEn/NoW/NoX/TorEn/Peis/Pees.
func (m *IOPMP) writeEntryWord(offset uint64, data uint32) {
	idx := m.entryTableIndex(offset)
	if idx < 0 || idx >= len(m.entries) {
		return
	}
	if uint32(idx) < uint32(m.regs.entrylck.f) {
		return
	}
	e := &m.entries[idx]
	switch entryRegIndex(offset) {
	case 0:
		e.addr = data
	case 1:
		if m.cfg.AddrhEn {
			e.addrh = data
		}
	case 2:
		cfg := entryCfgFromRaw(data)
		if m.cfg.NoW {
			cfg.w = false
		}
		if m.cfg.NoX {
			cfg.x = false
		}
		if !m.cfg.TorEn && cfg.a == AddrTOR {
			cfg.a = AddrOff
		}
		if !m.cfg.Peis {
			cfg.sire, cfg.siwe, cfg.sixe = false, false, false
		}
		if !m.cfg.Pees {
			cfg.sere, cfg.sewe, cfg.sexe = false, false, false
		}
		e.cfg = cfg
	case 3:
		e.userCfg = data
	}
}
