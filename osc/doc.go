// Package osc implements the OSC 1.0 binary wire format: packet framing, the
// message/bundle discrimination protocol, address and type-tagged argument
// encoding, 4-byte alignment, and recursive bundle containment.
//
// Encode/EncodeToBytes and Decode/DecodeFromBytes drive the low-level
// Packet/Message/Bundle types directly. Marshal and Unmarshal sit on top of
// those and bind application-defined Go records (structs or tuples) to and
// from packets by field order, with no identifier-based mapping.
package osc
