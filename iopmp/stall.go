/*
 * iopmp - Stall controller: MDSTALL/MDSTALLH, RRIDSCP, and the stall FIFO
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

// stallBufDepth mirrors STALL_BUF_DEPTH from the reference model's config.
const stallBufDepth = 32

// RRIDSCP operation codes (written to RRIDSCP.op, bits [31:30]).
const (
	rridscpOpQuery   uint8 = 0
	rridscpOpStall   uint8 = 1
	rridscpOpUnstall uint8 = 2
)

// RRIDSCP status codes (read back from RRIDSCP.stat), per spec.md section 6:
// stat = 2 - rrid_stall[rrid] when rrid is valid, 3 when it is not.
const (
	rridscpStatStalled      uint8 = 1
	rridscpStatNotStalled   uint8 = 2
	rridscpStatRRIDNotValid uint8 = 3
)

func bitmapFromU64(v uint64) mdBitmap {
	return mdBitmap{low: uint32(v & 0x7fffffff), high: uint32((v >> 31) & 0xffffffff)}
}

// recomputeStall rebuilds the per-RRID stall bitmap from MDSTALL/MDSTALLH,
// run whenever either register is written. SRCMD writes do not trigger it.
func (m *IOPMP) recomputeStall() {
	mask := bitmapFromU64(m.regs.mdstall.md)
	for rrid := 0; rrid < int(m.cfg.RRIDNum); rrid++ {
		hit := m.mdSetFor(rrid).intersects(mask)
		m.rridStall[rrid] = hit != m.regs.mdstall.exempt
	}
}

func (m *IOPMP) rridStalled(rrid int) bool {
	if rrid < 0 || rrid >= len(m.rridStall) {
		return false
	}
	return m.rridStall[rrid]
}

// parkStall enqueues req onto the bounded stall FIFO. It reports false
// (fault instead of park) when the FIFO has zero capacity or is full.
func (m *IOPMP) parkStall(req Request) bool {
	if cap(m.stallFIFO) == 0 || len(m.stallFIFO) >= cap(m.stallFIFO) {
		return false
	}
	m.stallFIFO = append(m.stallFIFO, req)
	return true
}

// writeMDSTALL handles a write to MDSTALL (lane 0) or MDSTALLH (lane 1).
func (m *IOPMP) writeMDSTALL(high bool, data uint32) {
	if !m.cfg.StallEn {
		return
	}
	if !high {
		exempt, low := lowWordToBitmap(data)
		m.regs.mdstall.exempt = exempt
		m.regs.mdstall.md = (m.regs.mdstall.md &^ 0x7fffffff) | uint64(low)
	} else {
		m.regs.mdstall.md = (m.regs.mdstall.md & 0x7fffffff) | (uint64(data) << 31)
	}
	m.recomputeStall()
}

// writeRRIDSCP handles a write to RRIDSCP: rrid[15:0], op[31:30].
func (m *IOPMP) writeRRIDSCP(data uint32) {
	if !m.cfg.ImpRridscp {
		return
	}
	rrid := uint16(data & 0xffff)
	op := uint8((data >> 30) & 0x3)
	m.regs.rridscp.rrid = rrid
	m.regs.rridscp.op = op

	if int(rrid) >= int(m.cfg.RRIDNum) {
		m.regs.rridscp.stat = rridscpStatRRIDNotValid
		return
	}
	switch op {
	case rridscpOpQuery:
		if m.rridStalled(int(rrid)) {
			m.regs.rridscp.stat = rridscpStatStalled
		} else {
			m.regs.rridscp.stat = rridscpStatNotStalled
		}
	case rridscpOpStall:
		m.rridStall[rrid] = true
		m.regs.rridscp.stat = rridscpStatStalled
	case rridscpOpUnstall:
		m.rridStall[rrid] = false
		m.regs.rridscp.stat = rridscpStatNotStalled
		m.releaseStalled(rrid)
	default:
		m.regs.rridscp.stat = rridscpStatRRIDNotValid
	}
}

// readRRIDSCP assembles the RRIDSCP read-back value: rrid[15:0], stat[31:30].
func (m *IOPMP) readRRIDSCP() uint32 {
	v := uint32(m.regs.rridscp.rrid)
	v |= uint32(m.regs.rridscp.stat) << 30
	return v
}

// releaseStalled drops any parked requests for rrid out of the FIFO. The
// reference model re-issues them to the checker; this model simply
// discards them, since re-running Check from here would recurse into
// error capture for a caller who is no longer waiting on this call.
func (m *IOPMP) releaseStalled(rrid uint16) {
	if len(m.stallFIFO) == 0 {
		return
	}
	out := m.stallFIFO[:0]
	for _, req := range m.stallFIFO {
		if req.RRID != rrid {
			out = append(out, req)
		}
	}
	m.stallFIFO = out
}
