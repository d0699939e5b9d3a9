// Package endian provides byte order utilities for the crate codec.
//
// The crate wire format is little-endian everywhere: bootstrap fields,
// table-of-contents entries, value descriptors and payload values. This
// package combines encoding/binary's ByteOrder and AppendByteOrder
// interfaces into a single EndianEngine so decoders can both read in place
// and append while building output buffers.
//
// All functions and methods are safe for concurrent use; the returned
// engine is immutable and stateless.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte order operations.
//
// The interface is satisfied by binary.LittleEndian, keeping it fully
// compatible with existing code that takes a binary.ByteOrder.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used by the crate
// wire format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
