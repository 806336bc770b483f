/*
 * iopmp - Entry table: address-range rules and per-entry CFG accessors
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

// AddrMode selects how an entry's ADDR field is decoded.
type AddrMode uint8

const (
	AddrOff   AddrMode = 0
	AddrTOR   AddrMode = 1
	AddrNA4   AddrMode = 2
	AddrNAPOT AddrMode = 3
)

// entryCfg holds ENTRY_CFG: r, w, x, a, sire, siwe, sixe, sere, sewe, sexe.
type entryCfg struct {
	r, w, x bool
	a       AddrMode
	sire, siwe, sixe bool
	sere, sewe, sexe bool
}

func (c entryCfg) raw() uint32 {
	v := uint32(0)
	if c.r {
		v |= 1 << 0
	}
	if c.w {
		v |= 1 << 1
	}
	if c.x {
		v |= 1 << 2
	}
	v |= uint32(c.a&0x3) << 3
	if c.sire {
		v |= 1 << 5
	}
	if c.siwe {
		v |= 1 << 6
	}
	if c.sixe {
		v |= 1 << 7
	}
	if c.sere {
		v |= 1 << 8
	}
	if c.sewe {
		v |= 1 << 9
	}
	if c.sexe {
		v |= 1 << 10
	}
	return v
}

func entryCfgFromRaw(raw uint32) entryCfg {
	return entryCfg{
		r:    raw&(1<<0) != 0,
		w:    raw&(1<<1) != 0,
		x:    raw&(1<<2) != 0,
		a:    AddrMode((raw >> 3) & 0x3),
		sire: raw&(1<<5) != 0,
		siwe: raw&(1<<6) != 0,
		sixe: raw&(1<<7) != 0,
		sere: raw&(1<<8) != 0,
		sewe: raw&(1<<9) != 0,
		sexe: raw&(1<<10) != 0,
	}
}

// entry is one 16-byte record of the entry table: ADDR, ADDRH, CFG, USER_CFG.
type entry struct {
	addr     uint32 // low 32 bits of the rule address, shifted right by 2
	addrh    uint32 // high 32 bits, when addrh_en
	cfg      entryCfg
	userCfg  uint32
}

// entryTableIndex returns the entry index addressed by offset, which must
// already be known to lie within the entry array window.
func (m *IOPMP) entryTableIndex(offset uint64) int {
	return int((offset - m.cfg.EntryOffset) / entryRegStride)
}

// entryRegIndex returns which of the four 32-bit sub-registers of an entry
// offset addresses: 0=ADDR, 1=ADDRH, 2=CFG, 3=USER_CFG.
func entryRegIndex(offset uint64) int {
	return int((offset % entryRegStride) / 4)
}

// entryWord reads one 32-bit lane of entry index i for register read-back.
func (m *IOPMP) entryWord(idx, reg int) uint32 {
	e := m.entries[idx]
	switch reg {
	case 0:
		return e.addr
	case 1:
		return e.addrh
	case 2:
		return e.cfg.raw()
	case 3:
		return e.userCfg
	}
	return 0
}

// rangeOf returns the byte address range [lo, hi) this entry covers given
// the physically preceding entry (for TOR), or (0, 0, false) for AddrOff.
func (e entry) rangeOf(prev entry) (lo, hi uint64, ok bool) {
	switch e.a() {
	case AddrOff:
		return 0, 0, false
	case AddrNA4:
		lo = uint64(e.addr64()) << 2
		return lo, lo + 4, true
	case AddrNAPOT:
		base := e.addr64()
		// Lowest zero bit of addr defines the power-of-two range size.
		n := 0
		for (base>>uint(n))&1 == 1 {
			n++
		}
		size := uint64(1) << (n + 3) // +2 for the <<2 byte shift, +1 for NAPOT's implicit bit
		aligned := (base << 2) &^ (size - 1)
		return aligned, aligned + size, true
	case AddrTOR:
		lo = prev.addr64() << 2
		hi = e.addr64() << 2
		return lo, hi, true
	}
	return 0, 0, false
}

func (e entry) a() AddrMode { return e.cfg.a }

// addr64 assembles the full rule address (still shifted right by 2) from
// ADDR/ADDRH.
func (e entry) addr64() uint64 {
	return uint64(e.addrh)<<32 | uint64(e.addr)
}
