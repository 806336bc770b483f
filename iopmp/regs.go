/*
 * iopmp - Register layout and bit-field accessors
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

// genMask32 builds a mask covering bits [l, h] inclusive, mirroring the
// reference model's GENMASK_32 macro.
func genMask32(h, l uint) uint32 {
	if h >= 31 {
		return ^uint32(0) << l
	}
	return (^uint32(0) >> (31 - h)) &^ (uint32(1)<<l - 1)
}

// hwcfg0 holds HWCFG0: enable, HWCFG2_en, HWCFG3_en, md_num, addrh_en, tor_en.
type hwcfg0 struct {
	enable    bool
	hwcfg2En  bool
	hwcfg3En  bool
	mdNum     uint8
	addrhEn   bool
	torEn     bool
}

func (r hwcfg0) raw() uint32 {
	v := uint32(0)
	if r.enable {
		v |= 1 << 0
	}
	if r.hwcfg2En {
		v |= 1 << 1
	}
	if r.hwcfg3En {
		v |= 1 << 2
	}
	v |= uint32(r.mdNum&0x3f) << 24
	if r.addrhEn {
		v |= 1 << 30
	}
	if r.torEn {
		v |= 1 << 31
	}
	return v
}

// hwcfg2 holds HWCFG2: prio_entry, prio_ent_prog, non_prio_en, chk_x, peis,
// pees, sps_en, stall_en, mfr_en.
type hwcfg2 struct {
	prioEntry   uint16
	prioEntProg bool
	nonPrioEn   bool
	chkX        bool
	peis        bool
	pees        bool
	spsEn       bool
	stallEn     bool
	mfrEn       bool
}

func (r hwcfg2) raw() uint32 {
	v := uint32(r.prioEntry)
	if r.prioEntProg {
		v |= 1 << 16
	}
	if r.nonPrioEn {
		v |= 1 << 17
	}
	if r.chkX {
		v |= 1 << 26
	}
	if r.peis {
		v |= 1 << 27
	}
	if r.pees {
		v |= 1 << 28
	}
	if r.spsEn {
		v |= 1 << 29
	}
	if r.stallEn {
		v |= 1 << 30
	}
	if r.mfrEn {
		v |= 1 << 31
	}
	return v
}

// hwcfg3 holds HWCFG3: mdcfg_fmt, srcmd_fmt, md_entry_num, no_x, no_w,
// rrid_transl_en, rrid_transl_prog, rrid_transl.
type hwcfg3 struct {
	mdcfgFmt       uint8
	srcmdFmt       uint8
	mdEntryNum     uint8
	noX            bool
	noW            bool
	rridTranslEn   bool
	rridTranslProg bool
	rridTransl     uint16
}

func (r hwcfg3) raw() uint32 {
	v := uint32(r.mdcfgFmt & 0x3)
	v |= uint32(r.srcmdFmt&0x3) << 2
	v |= uint32(r.mdEntryNum&0xff) << 4
	if r.noX {
		v |= 1 << 12
	}
	if r.noW {
		v |= 1 << 13
	}
	if r.rridTranslEn {
		v |= 1 << 14
	}
	if r.rridTranslProg {
		v |= 1 << 15
	}
	v |= uint32(r.rridTransl) << 16
	return v
}

// mdstall holds MDSTALL/MDSTALLH: exempt, md (63 bits split low/high).
type mdstall struct {
	exempt bool
	md     uint64 // bits [62:0], bit i is MD i (exempt is kept separately)
}

// rridscp holds RRIDSCP: rrid, op/stat.
type rridscp struct {
	rrid uint16
	op   uint8 // last requested op
	// stat is the status reported on read-back.
	stat uint8
}

// mdlck holds MDLCK/MDLCKH: l, md.
type mdlck struct {
	l  bool
	md uint64 // bits [62:0]
}

// mdcfglck holds MDCFGLCK: l, f.
type mdcfglck struct {
	l bool
	f uint8
}

// entrylck holds ENTRYLCK: l, f.
type entrylck struct {
	l bool
	f uint16
}

// errCfg holds ERR_CFG: l, ie, rs, msi_en, stall_violation_en, msidata.
type errCfg struct {
	l                 bool
	ie                bool
	rs                bool
	msiEn             bool
	stallViolationEn  bool
	msidata           uint16
}

func (r errCfg) raw() uint32 {
	v := uint32(0)
	if r.l {
		v |= 1 << 0
	}
	if r.ie {
		v |= 1 << 1
	}
	if r.rs {
		v |= 1 << 2
	}
	if r.msiEn {
		v |= 1 << 3
	}
	if r.stallViolationEn {
		v |= 1 << 4
	}
	v |= uint32(r.msidata&0x7ff) << 8
	return v
}

// errInfo holds ERR_INFO: v, ttype, msi_werr, etype, svc.
type errInfo struct {
	v       bool
	ttype   Perm
	msiWerr bool
	etype   EType
	svc     bool
}

func (r errInfo) raw() uint32 {
	v := uint32(0)
	if r.v {
		v |= 1 << 0
	}
	v |= uint32(r.ttype&0x3) << 1
	if r.msiWerr {
		v |= 1 << 3
	}
	v |= uint32(r.etype&0xf) << 4
	if r.svc {
		v |= 1 << 8
	}
	return v
}

// errReqID holds ERR_REQID: rrid, eid.
type errReqID struct {
	rrid uint16
	eid  uint16
}

func (r errReqID) raw() uint32 {
	return uint32(r.rrid) | uint32(r.eid)<<16
}

// errMFR holds ERR_MFR: svw, svi, svs.
type errMFR struct {
	svw uint16
	svi uint16
	svs bool
}

func (r errMFR) raw() uint32 {
	v := uint32(r.svw)
	v |= uint32(r.svi&0xfff) << 16
	if r.svs {
		v |= 1 << 31
	}
	return v
}
