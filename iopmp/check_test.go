/*
 * iopmp - transaction-check engine tests
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

import "testing"

// setupNAPOTRule wires RRID 0 into MD 0, which owns entry 0, configured as
// a NAPOT read-only rule over addr64==90 (byte range [360, 368), matching
// the lowest-zero-bit encoding worked through by hand against the spec's
// own NAPOT scenario).
func setupNAPOTRule(t *testing.T) *IOPMP {
	t.Helper()
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(mdcfgTableBaseOffset, 1, 4) // MD0 owns entries [0,1)
	m.Write(srcmdTableBaseOffset, 2, 4) // SRCMD_EN row 0: md bit0 set, l=0

	entryBase := m.cfg.EntryOffset
	m.Write(entryBase+0, 90, 4)  // ADDR
	m.Write(entryBase+8, 25, 4) // CFG: r=1, a=NAPOT(3)<<3
	return m
}

func TestNAPOTFullHitGrantsRead(t *testing.T) {
	m := setupNAPOTRule(t)
	resp, irq := m.Check(Request{RRID: 0, Addr: 360, Length: 4, Perm: PermRead})
	if resp.Status != StatusSuccess || resp.EType != EntryMatch {
		t.Fatalf("resp = %+v, want success/EntryMatch", resp)
	}
	if irq {
		t.Fatalf("unexpected interrupt on a successful match")
	}
}

func TestNAPOTDeniesWriteWhenEntryIsReadOnly(t *testing.T) {
	m := setupNAPOTRule(t)
	resp, _ := m.Check(Request{RRID: 0, Addr: 360, Length: 4, Perm: PermWrite})
	if resp.Status != StatusError || resp.EType != IllegalWriteAccess {
		t.Fatalf("resp = %+v, want IllegalWriteAccess", resp)
	}
}

func TestPartialHitOnPriorityEntryIsAnError(t *testing.T) {
	m := setupNAPOTRule(t)
	resp, _ := m.Check(Request{RRID: 0, Addr: 364, Length: 8, Perm: PermRead})
	if resp.Status != StatusError || resp.EType != PartialHitOnPriority {
		t.Fatalf("resp = %+v, want PartialHitOnPriority", resp)
	}
}

func TestUnknownRRIDIsRejected(t *testing.T) {
	m := setupNAPOTRule(t)
	resp, _ := m.Check(Request{RRID: 99, Addr: 360, Length: 4, Perm: PermRead})
	if resp.Status != StatusError || resp.EType != UnknownRRID {
		t.Fatalf("resp = %+v, want UnknownRRID", resp)
	}
}

func TestNoHitAnyRuleWhenAddressUncovered(t *testing.T) {
	m := setupNAPOTRule(t)
	resp, _ := m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})
	if resp.Status != StatusError || resp.EType != NotHitAnyRule {
		t.Fatalf("resp = %+v, want NotHitAnyRule", resp)
	}
}

func TestStalledRRIDParksRatherThanFaultsWhenFIFOHasRoom(t *testing.T) {
	m := setupNAPOTRule(t)
	m.Write(mdstallOffset, 2, 4) // exempt=0, md bit0 set: stall every RRID in MD0

	resp, irq := m.Check(Request{RRID: 0, Addr: 360, Length: 4, Perm: PermRead})
	if resp.Status != StatusSuccess || resp.EType != StalledTransaction || !resp.RRIDStalled {
		t.Fatalf("resp = %+v, want success/StalledTransaction/RRIDStalled", resp)
	}
	if irq {
		t.Fatalf("parking into the stall FIFO should not itself raise an interrupt")
	}
	if len(m.stallFIFO) != 1 {
		t.Fatalf("stallFIFO len = %d, want 1", len(m.stallFIFO))
	}
}

func TestRRIDSCPUnstallReleasesParkedRequests(t *testing.T) {
	m := setupNAPOTRule(t)
	m.Write(mdstallOffset, 2, 4)
	m.Check(Request{RRID: 0, Addr: 360, Length: 4, Perm: PermRead})
	if len(m.stallFIFO) != 1 {
		t.Fatalf("expected one parked request before unstall")
	}
	m.Write(rridscpOffset, uint64(rridscpOpUnstall)<<30|0, 4)
	if m.rridStalled(0) {
		t.Fatalf("RRID 0 still stalled after RRIDSCP unstall")
	}
	if len(m.stallFIFO) != 0 {
		t.Fatalf("stallFIFO not drained after unstall, len = %d", len(m.stallFIFO))
	}
}
