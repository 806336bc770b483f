/*
 * iopmp - Instance construction, configuration validation, and reset
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

// Package iopmp implements a software reference model of an I/O Physical
// Memory Protection unit: a memory-mapped register file plus a transaction
// checker that RRID-scoped bus masters are validated against.
package iopmp

import "fmt"

// Config holds every field that shapes an IOPMP instance at reset. It plays
// the role of the reference model's reset-time strap inputs: there is no
// file or environment-variable loading here, callers build one in code.
type Config struct {
	Vendor  uint32
	SpecVer uint32
	ImplID  uint32

	MDNum     uint8
	RRIDNum   uint32
	EntryNum  uint32
	PrioEntry uint16

	AddrhEn     bool
	TorEn       bool
	NonPrioEn   bool
	ChkX        bool
	Peis        bool
	Pees        bool
	SpsEn       bool
	StallEn     bool
	MfrEn       bool
	NoX         bool
	NoW         bool
	PrioEntProg bool

	RridTranslEn   bool
	RridTranslProg bool
	RridTransl     uint16

	MDCFGFmt   uint8
	SRCMDFmt   uint8
	MDEntryNum uint8

	EntryOffset uint64

	ImpMdlck        bool
	ImpErrorCapture bool
	ImpErrReqidEid  bool
	ImpRridscp      bool
	ImpMsi          bool

	Enable bool

	// BusWidth is REG_INTF_BUS_WIDTH in bytes; 0 selects the reference
	// model's default of 4.
	BusWidth int
}

// registers groups the fixed (non-table) MMIO register state.
type registers struct {
	hwcfg0 hwcfg0
	hwcfg1 uint32 // implementation-defined, read-only
	hwcfg2 hwcfg2
	hwcfg3 hwcfg3

	mdstall  mdstall
	rridscp  rridscp
	mdlck    mdlck
	mdcfglck mdcfglck
	entrylck entrylck

	errCfg      errCfg
	errInfo     errInfo
	errReqAddr  uint32
	errReqAddrH uint32
	errReqID    errReqID
	errMSIAddr  uint32
	errMSIAddrH uint32
	errUser     [errUserCount]uint32
}

// IOPMP is one instance of the protection unit. All state lives on the
// struct; nothing here is package-level, so a process can host any number
// of independent instances.
type IOPMP struct {
	cfg      Config
	regs     registers
	busWidth int

	mdcfg   []mdcfgEntry
	srcmd   []srcmdRow
	entries []entry

	rridStall []bool
	stallFIFO []Request

	mfrWords []uint16
	mfrSVI   int
	mfrSVS   bool

	port MemoryPort
}

// New builds an IOPMP instance and resets it with cfg. port receives MSI
// writes issued by error capture; it may be nil if ImpMsi is false.
func New(cfg Config, port MemoryPort) (*IOPMP, error) {
	m := &IOPMP{port: port}
	if err := m.Reset(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset validates cfg and re-initializes every table and register to its
// post-reset value, mirroring the reference model's reset_iopmp.
func (m *IOPMP) Reset(cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	m.cfg = cfg
	m.busWidth = cfg.BusWidth
	if m.busWidth == 0 {
		m.busWidth = defaultBusWidth
	}

	hwcfg2 := hwcfg2{
		prioEntry:   cfg.PrioEntry,
		prioEntProg: cfg.PrioEntProg,
		nonPrioEn:   cfg.NonPrioEn,
		chkX:        cfg.ChkX,
		peis:        cfg.Peis,
		pees:        cfg.Pees,
		spsEn:       cfg.SpsEn,
		stallEn:     cfg.StallEn,
		mfrEn:       cfg.MfrEn,
	}
	hwcfg3 := hwcfg3{
		mdcfgFmt:       cfg.MDCFGFmt,
		srcmdFmt:       cfg.SRCMDFmt,
		mdEntryNum:     cfg.MDEntryNum,
		noX:            cfg.NoX,
		noW:            cfg.NoW,
		rridTranslEn:   cfg.RridTranslEn,
		rridTranslProg: cfg.RridTranslProg,
		rridTransl:     cfg.RridTransl,
	}

	m.regs = registers{
		hwcfg0: hwcfg0{
			enable:   cfg.Enable,
			hwcfg2En: hwcfg2.raw() != 0,
			hwcfg3En: hwcfg3.raw() != 0,
			mdNum:    cfg.MDNum,
			addrhEn:  cfg.AddrhEn,
			torEn:    cfg.TorEn,
		},
		hwcfg1: cfg.ImplID,
		hwcfg2: hwcfg2,
		hwcfg3: hwcfg3,
	}
	if !cfg.ImpMdlck {
		m.regs.mdlck.l = true
	}
	if !cfg.ImpErrReqidEid {
		m.regs.errReqID.eid = 0xffff
	}
	m.regs.errCfg.stallViolationEn = false

	m.mdcfg = make([]mdcfgEntry, cfg.MDNum)
	m.entries = make([]entry, cfg.EntryNum)

	switch cfg.SRCMDFmt {
	case 0:
		m.srcmd = make([]srcmdRow, cfg.RRIDNum)
	case 2:
		m.srcmd = make([]srcmdRow, cfg.MDNum)
	default:
		m.srcmd = nil
	}

	m.rridStall = make([]bool, cfg.RRIDNum)
	m.stallFIFO = m.stallFIFO[:0]
	if m.stallFIFO == nil {
		m.stallFIFO = make([]Request, 0, stallBufDepth)
	}

	numSVW := (int(cfg.RRIDNum) + 15) / 16
	m.mfrWords = make([]uint16, numSVW)
	m.mfrSVI = 0
	m.mfrSVS = false

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.MDNum == 0 {
		return fmt.Errorf("iopmp: md_num must be nonzero")
	}
	if cfg.MDNum > 63 {
		return fmt.Errorf("iopmp: md_num %d exceeds 63", cfg.MDNum)
	}
	if cfg.RRIDNum == 0 {
		return fmt.Errorf("iopmp: rrid_num must be nonzero")
	}
	if cfg.EntryNum == 0 {
		return fmt.Errorf("iopmp: entry_num must be nonzero")
	}
	if cfg.MDCFGFmt > 2 {
		return fmt.Errorf("iopmp: mdcfg_fmt %d is not one of {0,1,2}", cfg.MDCFGFmt)
	}
	if cfg.SRCMDFmt > 2 {
		return fmt.Errorf("iopmp: srcmd_fmt %d is not one of {0,1,2}", cfg.SRCMDFmt)
	}
	if cfg.SpsEn && cfg.SRCMDFmt != 0 {
		return fmt.Errorf("iopmp: sps_en requires srcmd_fmt==0")
	}
	if cfg.MfrEn && !cfg.ImpErrorCapture {
		return fmt.Errorf("iopmp: mfr_en requires imp_error_capture")
	}
	if cfg.ImpErrReqidEid && !cfg.ImpErrorCapture {
		return fmt.Errorf("iopmp: imp_err_reqid_eid requires imp_error_capture")
	}
	if cfg.NoX && !cfg.ChkX {
		return fmt.Errorf("iopmp: no_x requires chk_x")
	}
	if cfg.MDCFGFmt == 0 && cfg.MDEntryNum != 0 {
		return fmt.Errorf("iopmp: mdcfg_fmt==0 requires md_entry_num==0")
	}
	if cfg.SRCMDFmt == 1 && cfg.RRIDNum != uint32(cfg.MDNum) {
		return fmt.Errorf("iopmp: srcmd_fmt==1 requires rrid_num==md_num")
	}
	if cfg.SRCMDFmt == 2 && cfg.RRIDNum > 32 {
		return fmt.Errorf("iopmp: srcmd_fmt==2 requires rrid_num<=32")
	}
	if cfg.ImpRridscp && !cfg.StallEn {
		return fmt.Errorf("iopmp: imp_rridscp requires stall_en")
	}
	minOffset := srcmdTableBaseOffset + uint64(cfg.RRIDNum)*srcmdRegStride
	if cfg.EntryOffset < minOffset {
		return fmt.Errorf("iopmp: entry_offset 0x%x overlaps the SRCMD table (must be >= 0x%x)", cfg.EntryOffset, minOffset)
	}
	return nil
}
