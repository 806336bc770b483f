/*
 * iopmp - error capture and multi-fault record tests
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

type fakePort struct {
	writes []uint64
	fail   bool
}

func (p *fakePort) WriteWord(addr uint64, data uint32) error {
	p.writes = append(p.writes, addr)
	if p.fail {
		return ErrBusError
	}
	return nil
}

func TestErrorCaptureLatchesFirstViolationOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.MfrEn = true
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(errCfgOffset, 1<<1, 4) // ie=1

	m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})
	if !m.regs.errInfo.v {
		t.Fatalf("ERR_INFO.v not set after first violation")
	}
	if m.regs.errInfo.etype != NotHitAnyRule {
		t.Fatalf("ERR_INFO.etype = %v, want NotHitAnyRule", m.regs.errInfo.etype)
	}
	if m.regs.errReqAddr != 4096>>2 {
		t.Fatalf("ERR_REQADDR = %#x, want addr>>2 = %#x", m.regs.errReqAddr, 4096>>2)
	}
	firstAddr := m.regs.errReqAddr

	m.Check(Request{RRID: 1, Addr: 8192, Length: 4, Perm: PermRead})
	if m.regs.errReqAddr != firstAddr {
		t.Fatalf("primary ERR_REQADDR overwritten while V was still set")
	}
}

func TestErrorCaptureIgnoresRSForOverwrite(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(errCfgOffset, (1<<1)|(1<<2), 4) // ie=1, rs=1

	m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})
	m.Check(Request{RRID: 1, Addr: 8192, Length: 4, Perm: PermRead})
	if m.regs.errReqAddr != 4096>>2 {
		t.Fatalf("ERR_REQADDR = %#x, want first violation 0x400 (rs does not gate primary-capture overwrite)", m.regs.errReqAddr)
	}
}

func TestERRINFOClearIsW1C(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})
	if !m.regs.errInfo.v {
		t.Fatalf("expected ERR_INFO.v set")
	}
	m.Write(errInfoOffset, 0, 4) // writing 0 must not clear v
	if !m.regs.errInfo.v {
		t.Fatalf("ERR_INFO.v cleared by a write of 0, want W1C semantics")
	}
	m.Write(errInfoOffset, 1, 4) // writing 1 to bit0 clears it
	if m.regs.errInfo.v {
		t.Fatalf("ERR_INFO.v still set after W1C write")
	}
}

func TestMSIEmittedOnCapture(t *testing.T) {
	cfg := baseConfig()
	port := &fakePort{}
	m, err := New(cfg, port)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(errCfgOffset, 1<<3, 4) // msi_en=1
	m.Write(errMSIAddrOffset, 0x9000, 4)

	m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})
	if len(port.writes) != 1 || port.writes[0] != 0x9000 {
		t.Fatalf("writes = %v, want one write to 0x9000", port.writes)
	}
	if m.regs.errInfo.msiWerr {
		t.Fatalf("msi_werr set despite a successful MSI write")
	}
}

func TestMSIBusErrorSetsMSIWerrNonFatally(t *testing.T) {
	cfg := baseConfig()
	port := &fakePort{fail: true}
	m, err := New(cfg, port)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(errCfgOffset, 1<<3, 4)

	resp, _ := m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})
	if resp.Status != StatusError {
		t.Fatalf("resp.Status = %v, want StatusError regardless of the MSI bus error", resp.Status)
	}
	if !m.regs.errInfo.msiWerr {
		t.Fatalf("msi_werr not set after a bus error from MemoryPort")
	}
}

func TestMFRDestructiveRead(t *testing.T) {
	cfg := baseConfig()
	cfg.MfrEn = true
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead}) // latches primary
	m.Check(Request{RRID: 1, Addr: 4096, Length: 4, Perm: PermRead}) // goes to MFR

	first := m.Read(errMFROffset, 4)
	if first&0xffff == 0 {
		t.Fatalf("first ERR_MFR read returned no pending bits")
	}
	second := m.Read(errMFROffset, 4)
	if second&0xffff != 0 {
		t.Fatalf("ERR_MFR read was not destructive: second read = %#x", second)
	}
}

// TestMFRSweepsForwardAcrossMultipleWords configures rrid_num=20 (two MFR
// words) and records a violation in word 1 while svi is still parked at
// word 0, matching the spec's own multi-word scenario. A sweep that
// assumes mfrWords[svi] is already nonzero would silently lose it.
func TestMFRSweepsForwardAcrossMultipleWords(t *testing.T) {
	cfg := baseConfig()
	cfg.MfrEn = true
	cfg.RRIDNum = 20
	cfg.MDNum = 20
	cfg.EntryOffset = srcmdTableBaseOffset + 20*srcmdRegStride
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Check(Request{RRID: 0, Addr: 4096, Length: 4, Perm: PermRead})  // latches primary
	m.Check(Request{RRID: 17, Addr: 4096, Length: 4, Perm: PermRead}) // word 1, bit 1

	first := m.Read(errMFROffset, 4)
	if first&0xffff == 0 {
		t.Fatalf("first ERR_MFR read returned no pending bits")
	}
	if uint16(first&0xffff)&(1<<1) == 0 {
		t.Fatalf("ERR_MFR word bit for RRID 17 (bit 1 of word 1) not set, word = %#x", first&0xffff)
	}
	if svi := uint16((first >> 16) & 0xfff); svi != 1 {
		t.Fatalf("ERR_MFR.svi = %d, want 1: sweep must find the first nonzero word, not assume svi's starting word", svi)
	}

	second := m.Read(errMFROffset, 4)
	if second != 0 {
		t.Fatalf("second ERR_MFR read should be 0 once drained, got %#x", second)
	}
}
