package packaging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// StampPNG inserts a tEXt chunk after the IHDR chunk so byte-identical images
// become distinct files. Print vendors dedupe uploads by content hash, which
// would otherwise collapse the shared official backs into one card.
func StampPNG(data []byte, keyword, text string) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("not a png image")
	}
	if len(data) < len(pngSignature)+8 {
		return nil, fmt.Errorf("truncated png header")
	}

	ihdrLen := binary.BigEndian.Uint32(data[len(pngSignature):])
	// signature + length + type + IHDR payload + crc
	insertAt := len(pngSignature) + 8 + int(ihdrLen) + 4
	if insertAt > len(data) {
		return nil, fmt.Errorf("truncated png ihdr chunk")
	}

	payload := append(append([]byte(keyword), 0), text...)
	chunk := make([]byte, 0, 12+len(payload))
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(payload)))
	chunk = append(chunk, "tEXt"...)
	chunk = append(chunk, payload...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:insertAt]...)
	out = append(out, chunk...)
	out = append(out, data[insertAt:]...)
	return out, nil
}
