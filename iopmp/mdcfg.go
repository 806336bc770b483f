/*
 * iopmp - MDCFG table: MD-to-entry-range mapping (mdcfg_fmt==0)
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

// mdcfgEntry is one slot of the MDCFG table: the top entry index owned by
// this and all prior MDs.
type mdcfgEntry struct {
	t uint16
}

func (m *IOPMP) mdcfgTableIndex(offset uint64) int {
	return int((offset - mdcfgTableBaseOffset) / 4)
}

// mdEntryRange returns the [lo, hi) entry-index range owned by MD m, per
// spec.md section 4.5 step 4, for either table format.
func (ip *IOPMP) mdEntryRange(md int) (lo, hi int) {
	switch ip.cfg.MDCFGFmt {
	case 0:
		if md == 0 {
			lo = 0
		} else {
			lo = int(ip.mdcfg[md-1].t)
		}
		hi = int(ip.mdcfg[md].t)
		return lo, hi
	default: // 1 or 2: fixed stride of md_entry_num+1 entries per MD
		stride := int(ip.cfg.MDEntryNum) + 1
		lo = md * stride
		hi = (md + 1) * stride
		return lo, hi
	}
}

// repairMDCFGMonotonicity raises any MDCFG[m].t below its predecessor up to
// the predecessor's value (MDCFG_TABLE_IMPROPER_SETTING_BEHAVIOR == 0).
func (m *IOPMP) repairMDCFGMonotonicity() {
	for i := 1; i < int(m.cfg.MDNum); i++ {
		if m.mdcfg[i].t < m.mdcfg[i-1].t {
			m.mdcfg[i].t = m.mdcfg[i-1].t
		}
	}
}

// writeMDCFG handles a write landing inside the MDCFG table window.
func (m *IOPMP) writeMDCFG(offset uint64, data uint32) {
	idx := m.mdcfgTableIndex(offset)
	if idx < 0 || idx >= len(m.mdcfg) {
		return
	}
	if uint32(idx) < uint32(m.regs.mdcfglck.f) {
		return
	}
	t := uint16(data & 0xffff)
	if uint32(t) >= m.cfg.EntryNum {
		return
	}
	m.mdcfg[idx].t = t
	m.repairMDCFGMonotonicity()
}
