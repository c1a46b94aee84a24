package checkpoint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Signature is the four-byte signature at the start of every checkpoint.
// Layout (little-endian):
//
//	0x00  'l' 'f' 'c' 'k'
var Signature = []byte{'l', 'f', 'c', 'k'}

// Version is the current format version.
const Version = 1

// Header layout. All integers are little-endian.
//
//	Offset  Size  Description
//	------  ----  -----------------------------------------
//	 0x00    4    'l' 'f' 'c' 'k'
//	 0x04    4    Format version
//	 0x08    8    FNV-1a of the structure string
//	 0x10    4    Byte length of the structure string
//	 0x14    4    Leaf record count
//	 0x18    -    Structure string, then leaf records
const (
	headerSize        = 0x18
	versionOffset     = 0x04
	fingerprintOffset = 0x08
	structLenOffset   = 0x10
	leafCountOffset   = 0x14
)

type header struct {
	version     uint32
	fingerprint uint64
	structLen   int
	leafCount   int
}

func parseHeader(b []byte) (header, error) {
	if len(b) < headerSize {
		return header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:len(Signature)], Signature) {
		return header{}, ErrBadMagic
	}
	h := header{
		version:     binary.LittleEndian.Uint32(b[versionOffset:]),
		fingerprint: binary.LittleEndian.Uint64(b[fingerprintOffset:]),
		structLen:   int(binary.LittleEndian.Uint32(b[structLenOffset:])),
		leafCount:   int(binary.LittleEndian.Uint32(b[leafCountOffset:])),
	}
	if h.version != Version {
		return header{}, fmt.Errorf("%w: %d", ErrVersion, h.version)
	}
	return h, nil
}

func putHeader(b []byte, fp uint64, structLen, leafCount int) {
	copy(b, Signature)
	binary.LittleEndian.PutUint32(b[versionOffset:], Version)
	binary.LittleEndian.PutUint64(b[fingerprintOffset:], fp)
	binary.LittleEndian.PutUint32(b[structLenOffset:], uint32(structLen))
	binary.LittleEndian.PutUint32(b[leafCountOffset:], uint32(leafCount))
}

// fingerprintOf hashes a structure string for the header.
func fingerprintOf(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
