/*
 * iopmp - Error capture: primary latch, multi-fault record, and MSI emission
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

// ErrBusError (types.go) is the sentinel a MemoryPort returns when an MSI
// write fails; emitMSI treats any non-nil error from the port that way.

// captureError records a violation that has no associated matched entry
// (unknown RRID, no-hit, priority partial-hit, or stall overflow): there is
// no per-entry sire/siwe/sixe/sere/sewe/sexe to consult, so the interrupt is
// governed purely by ERR_CFG.ie. ERR_CFG.rs is not consulted here or
// anywhere else, so a response's Status is never downgraded to success.
func (m *IOPMP) captureError(req Request, resp Response, _ *entry, _ int) bool {
	return m.recordError(req, resp, true, true, -1)
}

// captureErrorEntry records a permission violation against a matched entry,
// applying that entry's suppress-interrupt / suppress-error-record bits for
// the access type that failed.
func (m *IOPMP) captureErrorEntry(req Request, resp Response, e entry, idx int) bool {
	suppressIRQ, suppressRecord := entrySuppression(e.cfg, req.Perm)
	return m.recordError(req, resp, !suppressIRQ, !suppressRecord, idx)
}

func entrySuppression(c entryCfg, perm Perm) (suppressIRQ, suppressRecord bool) {
	switch perm {
	case PermRead:
		return c.sire, c.sere
	case PermWrite:
		return c.siwe, c.sewe
	case PermInstrFetch:
		return c.sixe, c.sexe
	}
	return false, false
}

// recordError applies ERR_CFG.ie on top of the caller's raw
// want-interrupt/want-record decision, latches the primary error record
// when free, updates the MFR array when it is not, and fires the MSI when
// configured. idx is the matched entry's table index, or -1 when there is
// no matched entry (unknown RRID, no-hit, priority partial-hit, stall
// overflow). It returns whether the interrupt line should be asserted.
func (m *IOPMP) recordError(req Request, resp Response, wantIRQ, wantRecord bool, idx int) bool {
	irq := wantIRQ && m.regs.errCfg.ie
	record := wantRecord

	if record && m.cfg.ImpErrorCapture {
		if !m.regs.errInfo.v {
			m.regs.errInfo = errInfo{
				v:     true,
				ttype: req.Perm,
				etype: resp.EType,
			}
			shifted := req.Addr >> 2
			m.regs.errReqAddr = uint32(shifted)
			m.regs.errReqAddrH = uint32(shifted >> 32)
			if m.cfg.ImpErrReqidEid {
				eid := uint16(0xffff)
				if idx >= 0 {
					eid = uint16(idx)
				}
				m.regs.errReqID = errReqID{rrid: req.RRID, eid: eid}
			}
			m.emitMSI()
		} else if m.cfg.MfrEn {
			m.recordMFR(int(req.RRID))
		}
	}

	return irq
}

// emitMSI sends the configured MSI word through the MemoryPort, setting
// ERR_INFO.msi_werr (non-fatally) if the port reports a bus error.
func (m *IOPMP) emitMSI() {
	if !m.cfg.ImpMsi || !m.regs.errCfg.msiEn || m.port == nil {
		return
	}
	addr := uint64(m.regs.errMSIAddrH)<<32 | uint64(m.regs.errMSIAddr)
	if err := m.port.WriteWord(addr, uint32(m.regs.errCfg.msidata)); err != nil {
		m.regs.errInfo.msiWerr = true
	}
}

// recordMFR sets rrid's bit in the multi-fault record, marking svs
// (saturated) when that bit was already pending, and ERR_INFO.svc so a
// subsequent ERR_MFR read knows there is something to sweep.
func (m *IOPMP) recordMFR(rrid int) {
	word := rrid / 16
	bit := uint16(1) << uint(rrid%16)
	if word < 0 || word >= len(m.mfrWords) {
		return
	}
	if m.mfrWords[word]&bit != 0 {
		m.mfrSVS = true
	}
	m.mfrWords[word] |= bit
	m.regs.errInfo.svc = true
}

// readErrMFR implements ERR_MFR's destructive read. If ERR_INFO.svc is
// clear there is nothing pending and the read is a no-op 0. Otherwise it
// sweeps forward from svi for the first nonzero word, returns and clears
// that word, and sets svi to the window the returned data came from.
func (m *IOPMP) readErrMFR() uint32 {
	if !m.regs.errInfo.svc || len(m.mfrWords) == 0 {
		return 0
	}

	found := -1
	i := m.mfrSVI
	for n := 0; n < len(m.mfrWords); n++ {
		if m.mfrWords[i] != 0 {
			found = i
			break
		}
		i = (i + 1) % len(m.mfrWords)
	}
	if found < 0 {
		m.regs.errInfo.svc = false
		return 0
	}

	svw := m.mfrWords[found]
	m.mfrWords[found] = 0
	m.mfrSVI = found

	svs := m.mfrSVS
	m.mfrSVS = false

	pending := false
	for _, w := range m.mfrWords {
		if w != 0 {
			pending = true
			break
		}
	}
	m.regs.errInfo.svc = pending

	r := errMFR{svw: svw, svi: uint16(found), svs: svs}
	return r.raw()
}
