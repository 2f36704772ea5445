package journal

import "encoding/binary"

// Kind distinguishes user records from the link/checkpoint frames the
// Journal inserts at segment boundaries.
type Kind uint8

const (
	// KindData marks an ordinary producer-supplied record.
	KindData Kind = 0
	// KindLink marks a 16-byte checkpoint-link frame inserted at the start
	// of every rotated segment (spec.md §4.4 step 5-6).
	KindLink Kind = 1
)

const (
	// FrameHeaderSize is the fixed 4-byte frame header.
	FrameHeaderSize = 4

	// MaxFileSize is the default segment capacity (spec.md §3, §6).
	MaxFileSize = 4 * 1024 * 1024

	// MaxRecordSize is the default maximum size of a producer's record,
	// counting the 4-byte frame header, so the largest payload Append
	// accepts is MaxRecordSize-FrameHeaderSize (spec.md §3, §6). It bounds
	// the 24-bit length field the frame header packs alongside kind.
	MaxRecordSize = 1 * 1024 * 1024

	// FileExtension is the suffix every segment file carries.
	FileExtension = ".journal"

	// linkPayloadSize is the fixed size of a KindLink frame's payload: two
	// little-endian uint64 checkpoint ids (spec.md §3, §6).
	linkPayloadSize = 16
)

// encodeHeader packs the 32-bit little-endian frame header:
// (payload_length << 8) | kind, per spec.md §3/§6.
func encodeHeader(dst []byte, payloadLen int, kind Kind) {
	binary.LittleEndian.PutUint32(dst, uint32(payloadLen)<<8|uint32(kind))
}

// decodeHeader unpacks a 32-bit little-endian frame header into a payload
// length and kind.
func decodeHeader(src []byte) (payloadLen int, kind Kind) {
	v := binary.LittleEndian.Uint32(src)
	return int(v >> 8), Kind(v & 0xff)
}

// encodeLinkPayload builds the 16-byte checkpoint-link payload: the last
// (oldest surviving) checkpoint id followed by the current checkpoint id,
// both little-endian uint64 (spec.md §3, §6).
func encodeLinkPayload(lastCheckpointID, currentCheckpointID uint64) []byte {
	buf := make([]byte, linkPayloadSize)
	binary.LittleEndian.PutUint64(buf[0:8], lastCheckpointID)
	binary.LittleEndian.PutUint64(buf[8:16], currentCheckpointID)
	return buf
}

// decodeLinkPayload is the inverse of encodeLinkPayload.
func decodeLinkPayload(payload []byte) (lastCheckpointID, currentCheckpointID uint64, ok bool) {
	if len(payload) != linkPayloadSize {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint64(payload[0:8]), binary.LittleEndian.Uint64(payload[8:16]), true
}
