/*
 * iopmp - Address-range and permission matching for entry table rules
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

// matchKind classifies how a transaction's [addr, addr+length) range relates
// to an entry's rule range.
type matchKind uint8

const (
	matchNone    matchKind = iota // disjoint, or entry is AddrOff
	matchFull                     // transaction range fully inside rule range
	matchPartial                  // transaction range overlaps the rule range but is not inside it
)

// matchAddr classifies the overlap between [addr, addr+length) and the
// entry's decoded rule range.
func matchAddr(e entry, prev entry, addr uint64, length uint32) matchKind {
	lo, hi, ok := e.rangeOf(prev)
	if !ok {
		return matchNone
	}
	reqHi := addr + uint64(length)
	if reqHi <= lo || addr >= hi {
		return matchNone
	}
	if addr >= lo && reqHi <= hi {
		return matchFull
	}
	return matchPartial
}

// permit reports whether entry e grants the requested permission for a
// transaction that matched under membership of MD md. When sps_en is set
// (srcmd_fmt 0 only), SRCMD_R/SRCMD_W act as an additional per-MD veto on
// top of the entry's own r/w bits; x is never subject to sps_en override.
func (m *IOPMP) permit(e entry, md int, rrid int, perm Perm) bool {
	var allowed bool
	switch perm {
	case PermRead:
		allowed = e.cfg.r
	case PermWrite:
		allowed = e.cfg.w
	case PermInstrFetch:
		allowed = e.cfg.x
	}
	if !allowed {
		return false
	}
	if perm == PermInstrFetch {
		return true
	}
	if !m.cfg.SpsEn || m.cfg.SRCMDFmt != 0 {
		return true
	}
	if rrid < 0 || rrid >= len(m.srcmd) {
		return true
	}
	row := m.srcmd[rrid]
	switch perm {
	case PermRead:
		return row.r.test(md)
	case PermWrite:
		return row.w.test(md)
	}
	return true
}
