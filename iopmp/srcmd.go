/*
 * iopmp - SRCMD table: RRID-to-MD membership, all three table formats
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

// srcmdRow is one row of the SRCMD table. Format 0 is indexed by RRID and
// uses en/r/w; format 2 is indexed by MD and uses permLow/permHigh instead;
// format 1 has no rows at all. Only the fields relevant to the configured
// srcmd_fmt are ever touched.
type srcmdRow struct {
	enL bool
	en  mdBitmap // format 0: MD membership of this RRID
	r   mdBitmap // format 0: per-MD read override when sps_en
	w   mdBitmap // format 0: per-MD write override when sps_en

	permLow  uint32 // format 2: SRCMD_PERM, two-bit (r,w) field per RRID 0..15 at bits [2*rrid+1:2*rrid]; see permAt
	permHigh uint32 // format 2: SRCMD_PERMH
}

// srcmdRegIndex returns which 32-bit lane of a table row offset addresses.
// Format 0: 0=EN,1=ENH,2=R,3=RH,4=W,5=WH. Format 2: 0=PERM,1=PERMH (the
// remaining four lanes of the 32-byte row are reserved/unused).
func srcmdRegIndex(offset uint64) int {
	return int((offset % srcmdRegStride) / 4)
}

func (m *IOPMP) srcmdTableIndex(offset uint64) int {
	return int((offset - srcmdTableBaseOffset) / srcmdRegStride)
}

// srcmdMDLocked reports whether MD index md is locked against SRCMD_PERM
// writes by MDLCK/MDLCKH (format 2's lock gate, one bit per MD rather than
// SRCMD_EN's own lock bit).
func (m *IOPMP) srcmdMDLocked(md int) bool {
	return m.regs.mdlck.md&(uint64(1)<<uint(md)) != 0
}

// writeSRCMD dispatches a write landing inside the SRCMD table window,
// following the format-0 and format-2 write blocks of the reference
// register model (format 1 has no physical table and never reaches here:
// isAccessSRCMDTable always fails for srcmd_fmt==1).
func (m *IOPMP) writeSRCMD(offset uint64, data uint32) {
	switch m.cfg.SRCMDFmt {
	case 0:
		m.writeSRCMDFmt0(offset, data)
	case 2:
		m.writeSRCMDFmt2(offset, data)
	}
}

func (m *IOPMP) writeSRCMDFmt0(offset uint64, data uint32) {
	idx := m.srcmdTableIndex(offset)
	if idx < 0 || idx >= len(m.srcmd) {
		return
	}
	row := &m.srcmd[idx]
	if row.enL {
		return // SRCMD_EN.l gates the whole row, including R/W
	}
	lane := srcmdRegIndex(offset)
	mdNum := int(m.cfg.MDNum)
	// MDs locked in MDLCK keep their current bits: new = (in &^ lock) | (cur & lock).
	lock := bitmapFromU64(m.regs.mdlck.md)
	switch lane {
	case 0: // SRCMD_EN
		maskedLow, _ := writeMaskLowHigh(mdNum, data, 0)
		l, low := lowWordToBitmap(maskedLow)
		row.enL = row.enL || l
		row.en.low = (low &^ lock.low) | (row.en.low & lock.low)
	case 1: // SRCMD_ENH
		_, maskedHigh := writeMaskLowHigh(mdNum, 0, data)
		row.en.high = (maskedHigh &^ lock.high) | (row.en.high & lock.high)
	case 2: // SRCMD_R
		if !m.cfg.SpsEn {
			return
		}
		maskedLow, _ := writeMaskLowHigh(mdNum, data, 0)
		_, low := lowWordToBitmap(maskedLow)
		row.r.low = (low &^ lock.low) | (row.r.low & lock.low)
	case 3: // SRCMD_RH
		if !m.cfg.SpsEn {
			return
		}
		_, maskedHigh := writeMaskLowHigh(mdNum, 0, data)
		row.r.high = (maskedHigh &^ lock.high) | (row.r.high & lock.high)
	case 4: // SRCMD_W
		if !m.cfg.SpsEn {
			return
		}
		maskedLow, _ := writeMaskLowHigh(mdNum, data, 0)
		_, low := lowWordToBitmap(maskedLow)
		row.w.low = (low &^ lock.low) | (row.w.low & lock.low)
	case 5: // SRCMD_WH
		if !m.cfg.SpsEn {
			return
		}
		_, maskedHigh := writeMaskLowHigh(mdNum, 0, data)
		row.w.high = (maskedHigh &^ lock.high) | (row.w.high & lock.high)
	}
}

// writeSRCMDFmt2 applies SRCMD_PERM/_PERMH. Each row is indexed by MD (idx),
// and holds a packed two-bit (r,w) field per RRID; the lock check is done
// once per row against that MD, and the whole word is written atomically.
func (m *IOPMP) writeSRCMDFmt2(offset uint64, data uint32) {
	idx := m.srcmdTableIndex(offset)
	if idx < 0 || idx >= len(m.srcmd) {
		return
	}
	if m.srcmdMDLocked(idx) {
		return
	}
	row := &m.srcmd[idx]
	lane := srcmdRegIndex(offset)
	switch lane {
	case 0: // SRCMD_PERM: covers RRID 0..15, two bits each
		row.permLow = permFieldMask(data, int(m.cfg.RRIDNum), 0)
	case 1: // SRCMD_PERMH: covers RRID 16..31
		row.permHigh = permFieldMask(data, int(m.cfg.RRIDNum), 16)
	}
}

// permFieldMask zeroes any two-bit RRID field at or beyond rridNum, leaving
// the rest of incoming as written.
func permFieldMask(incoming uint32, rridNum, base int) uint32 {
	out := incoming
	for lane := 0; lane < 16; lane++ {
		if base+lane >= rridNum {
			out &^= uint32(0x3) << uint(lane*2)
		}
	}
	return out
}

// permAt returns the (r, w) permission pair format 2 grants RRID rrid over
// the MD this row belongs to (each row is one MD's view across all RRIDs,
// two bits per RRID).
func (row srcmdRow) permAt(rrid int) (r, w bool) {
	var word uint32
	lane := rrid
	if rrid < 16 {
		word = row.permLow
	} else {
		word = row.permHigh
		lane = rrid - 16
	}
	shift := uint(lane * 2)
	field := (word >> shift) & 0x3
	return field&0x1 != 0, field&0x2 != 0
}

// mdSetFor returns the set of MDs that RRID rrid belongs to, per the
// configured srcmd_fmt (spec.md section 4.5 step 3).
func (m *IOPMP) mdSetFor(rrid int) mdBitmap {
	switch m.cfg.SRCMDFmt {
	case 0:
		if rrid < 0 || rrid >= len(m.srcmd) {
			return mdBitmap{}
		}
		return m.srcmd[rrid].en
	case 1:
		// No physical table: RRID i belongs to MD i only.
		var b mdBitmap
		b.set(rrid, true)
		return b
	case 2:
		// Every RRID is implicitly a member of every MD, so the "MD set" is
		// simply all MDs. The check engine does not consult SRCMD_PERM: its
		// per-RRID bits are stored and read back but do not affect permit.
		return allMDsMask(int(m.cfg.MDNum))
	}
	return mdBitmap{}
}
