package gwstore

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// OID is a 128-bit identifier for a backing object container, mirroring
// Motr's m0_uint128.
type OID [16]byte

// NilOID is the zero-value container identifier; no operation should
// consider it a valid target.
var NilOID = OID{}

// NewOID generates a random 128-bit identifier.
func NewOID() (OID, error) {
	var oid OID
	if _, err := rand.Read(oid[:]); err != nil {
		return NilOID, err
	}
	return oid, nil
}

// String renders the OID as lowercase hex.
func (o OID) String() string {
	return hex.EncodeToString(o[:])
}

// Hi returns the high 64 bits.
func (o OID) Hi() uint64 {
	return binary.BigEndian.Uint64(o[:8])
}

// Lo returns the low 64 bits.
func (o OID) Lo() uint64 {
	return binary.BigEndian.Uint64(o[8:])
}

// ParseOID decodes a hex string produced by String.
func ParseOID(s string) (OID, error) {
	var oid OID
	b, err := hex.DecodeString(s)
	if err != nil {
		return NilOID, err
	}
	if len(b) != len(oid) {
		return NilOID, errors.New("gwstore: oid must be 16 bytes")
	}
	copy(oid[:], b)
	return oid, nil
}

// OIDFromParts builds an OID from its high/low 64-bit halves.
func OIDFromParts(hi, lo uint64) OID {
	var oid OID
	binary.BigEndian.PutUint64(oid[:8], hi)
	binary.BigEndian.PutUint64(oid[8:], lo)
	return oid
}
