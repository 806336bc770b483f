/*
 * iopmp - Shared 63-bit MD bitmap representation (MDLCK/MDSTALL/SRCMD_EN row shape)
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

// mdBitmap models the recurring {flagBit[0], md[31:1]} / mdh[31:0] register
// pair used by MDLCK/MDLCKH, MDSTALL/MDSTALLH, and each SRCMD_EN/_R/_W row:
// a 63-bit per-MD membership mask split across a low word (MD0..MD30,
// packed into bits [31:1] alongside a flag bit in bit 0) and a high word
// (MD31..MD62, packed into bits [31:0] with no flag bit).
type mdBitmap struct {
	low  uint32 // MD0..MD30, bit i set iff MD i is a member
	high uint32 // MD31..MD62, bit i set iff MD (31+i) is a member
}

func (b mdBitmap) test(md int) bool {
	if md < 0 {
		return false
	}
	if md <= 30 {
		return b.low&(1<<uint(md)) != 0
	}
	if md <= 62 {
		return b.high&(1<<uint(md-31)) != 0
	}
	return false
}

func (b *mdBitmap) set(md int, v bool) {
	switch {
	case md < 0 || md > 62:
		return
	case md <= 30:
		if v {
			b.low |= 1 << uint(md)
		} else {
			b.low &^= 1 << uint(md)
		}
	default:
		if v {
			b.high |= 1 << uint(md-31)
		} else {
			b.high &^= 1 << uint(md-31)
		}
	}
}

// intersects reports whether the two bitmaps share at least one MD.
func (b mdBitmap) intersects(o mdBitmap) bool {
	return (b.low&o.low) != 0 || (b.high&o.high) != 0
}

// allMDsMask returns a bitmap with bits [0, mdNum) set, used by SRCMD
// format 2's "all MDs" stall semantics.
func allMDsMask(mdNum int) mdBitmap {
	var b mdBitmap
	if mdNum > 31 {
		b.low = ^uint32(0) >> 1 // bits 0..30
	} else if mdNum > 0 {
		b.low = genMask32(uint(mdNum-1), 0)
	}
	if mdNum > 31 {
		hi := mdNum - 31
		if hi > 32 {
			hi = 32
		}
		b.high = genMask32(uint(hi-1), 0)
	}
	return b
}

// lowWordToBitmap extracts the {flag[0], md[31:1]} pair from a raw 32-bit word.
func lowWordToBitmap(raw uint32) (flag bool, low uint32) {
	return raw&1 != 0, (raw >> 1)
}

// lowWordFromBitmap reassembles a raw 32-bit {flag[0], md[31:1]} word.
func lowWordFromBitmap(flag bool, low uint32) uint32 {
	v := low << 1
	if flag {
		v |= 1
	}
	return v
}

// writeMaskLowHigh replicates GENMASK_32(mdNum, 0)-style masking of an incoming
// raw word against how many MD bits are legal at this mdNum, for the low
// and high halves of a bitmap register pair.
func writeMaskLowHigh(mdNum int, lwr, upr uint32) (maskedLow, maskedHigh uint32) {
	if mdNum >= 31 {
		maskedLow = lwr
	} else {
		maskedLow = lwr & genMask32(uint(mdNum), 0)
	}
	if mdNum < 32 {
		maskedHigh = 0
	} else {
		maskedHigh = upr & genMask32(uint(mdNum-32), 0)
	}
	return maskedLow, maskedHigh
}
