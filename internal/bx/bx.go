// Package bx holds little-endian byte helpers used by the log record codec,
// kept tiny and allocation-free.
package bx

import "encoding/binary"

var le = binary.LittleEndian

func U16(b []byte) uint16 { return le.Uint16(b) }
func U32(b []byte) uint32 { return le.Uint32(b) }
func I32(b []byte) int32  { return int32(le.Uint32(b)) }
func I64(b []byte) int64  { return int64(le.Uint64(b)) }

func PutU16(b []byte, v uint16) { le.PutUint16(b, v) }
func PutU32(b []byte, v uint32) { le.PutUint32(b, v) }
func PutI32(b []byte, v int32)  { le.PutUint32(b, uint32(v)) }
func PutI64(b []byte, v int64)  { le.PutUint64(b, uint64(v)) }
