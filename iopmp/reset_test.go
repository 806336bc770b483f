/*
 * iopmp - reset and register-file invariant tests
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

func baseConfig() Config {
	return Config{
		Vendor:          0x1,
		SpecVer:         0x00010000,
		ImplID:          0x1,
		MDNum:           4,
		RRIDNum:         4,
		EntryNum:        8,
		PrioEntry:       4,
		NonPrioEn:       true,
		ChkX:            true,
		AddrhEn:         true,
		TorEn:           true,
		MDCFGFmt:        0,
		SRCMDFmt:        0,
		ImpErrorCapture: true,
		ImpErrReqidEid:  true,
		ImpMdlck:        true,
		ImpRridscp:      true,
		StallEn:         true,
		ImpMsi:          true,
		EntryOffset:     srcmdTableBaseOffset + 4*srcmdRegStride,
	}
}

func TestResetRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero md_num", func(c *Config) { c.MDNum = 0 }},
		{"md_num too large", func(c *Config) { c.MDNum = 64 }},
		{"zero rrid_num", func(c *Config) { c.RRIDNum = 0 }},
		{"zero entry_num", func(c *Config) { c.EntryNum = 0 }},
		{"bad mdcfg_fmt", func(c *Config) { c.MDCFGFmt = 3 }},
		{"bad srcmd_fmt", func(c *Config) { c.SRCMDFmt = 3 }},
		{"sps_en without srcmd_fmt 0", func(c *Config) { c.SpsEn = true; c.SRCMDFmt = 1; c.RRIDNum = uint32(c.MDNum) }},
		{"mfr_en without error capture", func(c *Config) { c.MfrEn = true; c.ImpErrorCapture = false; c.ImpErrReqidEid = false }},
		{"err_reqid_eid without error capture", func(c *Config) { c.ImpErrReqidEid = true; c.ImpErrorCapture = false }},
		{"no_x without chk_x", func(c *Config) { c.NoX = true; c.ChkX = false }},
		{"mdcfg_fmt 0 with nonzero md_entry_num", func(c *Config) { c.MDEntryNum = 1 }},
		{"srcmd_fmt 1 rrid mismatch", func(c *Config) { c.SRCMDFmt = 1; c.RRIDNum = uint32(c.MDNum) + 1 }},
		{"srcmd_fmt 2 too many rrids", func(c *Config) { c.SRCMDFmt = 2; c.RRIDNum = 33 }},
		{"rridscp without stall_en", func(c *Config) { c.ImpRridscp = true; c.StallEn = false }},
		{"entry_offset overlaps srcmd table", func(c *Config) { c.EntryOffset = srcmdTableBaseOffset }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.modify(&cfg)
			if _, err := New(cfg, nil); err == nil {
				t.Fatalf("expected New to reject config, got nil error")
			}
		})
	}
}

func TestVersionAndImplementationAreReadOnly(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := m.Read(versionOffset, 4); got != uint64(cfg.SpecVer) {
		t.Fatalf("VERSION = %#x, want %#x", got, cfg.SpecVer)
	}
	m.Write(versionOffset, 0xdeadbeef, 4)
	if got := m.Read(versionOffset, 4); got != uint64(cfg.SpecVer) {
		t.Fatalf("VERSION changed after write: got %#x", got)
	}
	m.Write(implementationOffset, 0xdeadbeef, 4)
	if got := m.Read(implementationOffset, 4); got != uint64(cfg.Vendor) {
		t.Fatalf("IMPLEMENTATION = %#x, want %#x", got, cfg.Vendor)
	}
}

func TestHWCFG0EnableIsW1SS(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(hwcfg0Offset, 1, 4)
	if !m.regs.hwcfg0.enable {
		t.Fatalf("enable did not set")
	}
	m.Write(hwcfg0Offset, 0, 4)
	if !m.regs.hwcfg0.enable {
		t.Fatalf("enable cleared by a later write, want sticky")
	}
}

func TestMDCFGLCKIsMonotonic(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(mdcfglckOffset, 2<<1, 4) // f=2, l=0
	if m.regs.mdcfglck.f != 2 {
		t.Fatalf("f = %d, want 2", m.regs.mdcfglck.f)
	}
	m.Write(mdcfglckOffset, 1<<1, 4) // attempt to lower f to 1
	if m.regs.mdcfglck.f != 2 {
		t.Fatalf("f dropped to %d, want monotonic floor of 2", m.regs.mdcfglck.f)
	}
	m.Write(mdcfglckOffset, (3<<1)|1, 4) // f=3, l=1
	if m.regs.mdcfglck.f != 3 || !m.regs.mdcfglck.l {
		t.Fatalf("f=%d l=%v, want f=3 l=true", m.regs.mdcfglck.f, m.regs.mdcfglck.l)
	}
	m.Write(mdcfglckOffset, 0, 4) // locked: further writes are no-ops
	if m.regs.mdcfglck.f != 3 {
		t.Fatalf("f changed after lock: %d", m.regs.mdcfglck.f)
	}
}

func TestMDCFGTableRepairsMonotonicity(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(mdcfgTableBaseOffset+0, 4, 4) // MD0 -> entry 4
	m.Write(mdcfgTableBaseOffset+4, 2, 4) // MD1 -> entry 2, below MD0
	if m.mdcfg[1].t != 4 {
		t.Fatalf("MDCFG[1] = %d, want repaired to 4", m.mdcfg[1].t)
	}
}

func TestEntryLockGatesWrites(t *testing.T) {
	cfg := baseConfig()
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Write(m.cfg.EntryOffset, 0x100, 4) // entry 0 ADDR
	m.Write(entrylckOffset, 1<<1, 4)     // lock entry 0
	m.Write(m.cfg.EntryOffset, 0x200, 4) // should be ignored now
	if m.entries[0].addr != 0x100 {
		t.Fatalf("entry 0 ADDR = %#x, want unchanged 0x100", m.entries[0].addr)
	}
	m.Write(m.cfg.EntryOffset+entryRegStride, 0x200, 4) // entry 1 unaffected
	if m.entries[1].addr != 0x200 {
		t.Fatalf("entry 1 ADDR = %#x, want 0x200", m.entries[1].addr)
	}
}
