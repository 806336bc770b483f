/*
 * iopmp - Transaction-check engine
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

import "sort"

// Check evaluates one transaction against the current rule set. The second
// return value reports whether this call should raise the model's
// interrupt line (callers poll it or wire it to their own IRQ controller;
// the model never calls back into anything but MemoryPort).
func (m *IOPMP) Check(req Request) (Response, bool) {
	resp := Response{RRID: req.RRID, RRIDTransl: req.RRID}

	if uint32(req.RRID) >= m.cfg.RRIDNum {
		resp.Status = StatusError
		resp.EType = UnknownRRID
		return resp, m.captureError(req, resp, nil, -1)
	}

	if m.cfg.StallEn && m.rridStalled(int(req.RRID)) {
		parked := m.parkStall(req)
		resp.EType = StalledTransaction
		resp.RRIDStalled = true
		if parked {
			resp.Status = StatusSuccess
			return resp, false
		}
		resp.Status = StatusError
		if m.regs.errCfg.stallViolationEn {
			return resp, m.captureError(req, resp, nil, -1)
		}
		return resp, false
	}

	md := m.mdSetFor(int(req.RRID))
	indices := m.candidateEntries(md)

	prio := int(m.regs.hwcfg2.prioEntry)

	for _, idx := range indices {
		if idx >= prio {
			break
		}
		e := m.entries[idx]
		var prev entry
		if idx > 0 {
			prev = m.entries[idx-1]
		}
		switch matchAddr(e, prev, req.Addr, req.Length) {
		case matchFull:
			return m.finish(req, resp, e, idx, -1)
		case matchPartial:
			resp.Status = StatusError
			resp.EType = PartialHitOnPriority
			return resp, m.captureError(req, resp, &e, idx)
		}
	}

	if m.regs.hwcfg2.nonPrioEn {
		for _, idx := range indices {
			if idx < prio {
				continue
			}
			e := m.entries[idx]
			var prev entry
			if idx > 0 {
				prev = m.entries[idx-1]
			}
			if matchAddr(e, prev, req.Addr, req.Length) == matchFull {
				return m.finish(req, resp, e, idx, -1)
			}
		}
	}

	resp.Status = StatusError
	resp.EType = NotHitAnyRule
	return resp, m.captureError(req, resp, nil, -1)
}

// candidateEntries returns every entry index reachable from the RRID's MD
// set, in ascending global order, de-duplicated (an entry's MD can be
// claimed by at most one MDCFG slot, but the loop is defensive about it).
func (m *IOPMP) candidateEntries(md mdBitmap) []int {
	seen := make(map[int]bool)
	var out []int
	for i := 0; i < int(m.cfg.MDNum); i++ {
		if !md.test(i) {
			continue
		}
		lo, hi := m.mdEntryRange(i)
		for idx := lo; idx < hi && idx < len(m.entries); idx++ {
			if idx < 0 || seen[idx] {
				continue
			}
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// finish applies the permission check to a matched entry and builds the
// final response, capturing an error record when access is denied.
func (m *IOPMP) finish(req Request, resp Response, e entry, idx int, md int) (Response, bool) {
	if md < 0 {
		md = m.ownerMD(idx)
	}
	if !m.permit(e, md, int(req.RRID), req.Perm) {
		resp.Status = StatusError
		resp.EType = illegalAccessType(req.Perm)
		return resp, m.captureErrorEntry(req, resp, e, idx)
	}
	resp.Status = StatusSuccess
	resp.EType = EntryMatch
	resp.User = uint8(e.userCfg)
	if m.cfg.RridTranslEn {
		resp.RRIDTransl = m.regs.hwcfg3.rridTransl
	}
	return resp, false
}

// ownerMD finds which MD an entry index belongs to under the active
// mdcfg_fmt, for SRCMD format 0's per-MD permission override.
func (m *IOPMP) ownerMD(idx int) int {
	for i := 0; i < int(m.cfg.MDNum); i++ {
		lo, hi := m.mdEntryRange(i)
		if idx >= lo && idx < hi {
			return i
		}
	}
	return -1
}

func illegalAccessType(p Perm) EType {
	switch p {
	case PermRead:
		return IllegalReadAccess
	case PermWrite:
		return IllegalWriteAccess
	case PermInstrFetch:
		return IllegalInstrFetch
	}
	return IllegalReadAccess
}
