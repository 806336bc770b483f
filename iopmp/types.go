/*
 * iopmp - Shared enums and transaction request/response types
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

import "errors"

// Perm identifies the direction of a bus transaction.
type Perm uint8

const (
	PermRead Perm = iota
	PermWrite
	PermInstrFetch
)

// Status is the outcome reported back to the bus initiator.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusError
)

// EType classifies why a transaction was denied, or why it matched.
type EType uint8

const (
	EntryMatch EType = iota
	IllegalReadAccess
	IllegalWriteAccess
	IllegalInstrFetch
	PartialHitOnPriority
	NotHitAnyRule
	UnknownRRID
	StalledTransaction
)

// Request is a single transaction presented to the check engine.
type Request struct {
	RRID    uint16
	Addr    uint64
	Length  uint32
	Size    uint32 // log2 of the transfer size
	Perm    Perm
	IsAMO   bool
}

// Response is returned by Check for every Request.
type Response struct {
	RRID        uint16
	RRIDTransl  uint16
	Status      Status
	EType       EType
	User        uint8
	RRIDStalled bool
}

// ErrBusError is the sentinel a MemoryPort implementation should return (or
// wrap, for errors.Is) when an MSI write could not be delivered. Any other
// non-nil error from WriteWord is treated the same way by error capture.
var ErrBusError = errors.New("iopmp: bus error on MSI write")

// MemoryPort is the caller-supplied side channel the check engine uses to
// emit a message-signaled interrupt. The core owns no memory of its own.
type MemoryPort interface {
	WriteWord(addr uint64, data uint32) error
}
