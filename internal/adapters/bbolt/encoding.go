// Blob encoding for snapshot parts.
//
// Every value is stored as a small header followed by a JSON body:
//
//	magic:   [3]byte "LOR"
//	version: uint16 (little-endian), ports.SnapshotVersion at write time
//	body:    JSON
//
// The header lets LoadSnapshot refuse blobs written by an incompatible build
// instead of decoding them into the wrong shape.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corey/lor/internal/ports"
)

var blobMagic = [3]byte{'L', 'O', 'R'}

const headerSize = 5

// ErrVersionMismatch means a stored snapshot predates the current layout.
// Callers rebuild from source when they see it.
var ErrVersionMismatch = errors.New("snapshot version mismatch")

func encodeBlob(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, headerSize+len(body))
	copy(buf, blobMagic[:])
	binary.LittleEndian.PutUint16(buf[3:], uint16(ports.SnapshotVersion))
	copy(buf[headerSize:], body)
	return buf, nil
}

// decodeBlob checks the header and unmarshals the body into target.
func decodeBlob(data []byte, target any) error {
	if len(data) < headerSize {
		return fmt.Errorf("blob too short: %d bytes", len(data))
	}
	if [3]byte(data[:3]) != blobMagic {
		return fmt.Errorf("bad blob magic %q", data[:3])
	}
	if v := binary.LittleEndian.Uint16(data[3:]); int(v) != ports.SnapshotVersion {
		return fmt.Errorf("%w: stored v%d, want v%d", ErrVersionMismatch, v, ports.SnapshotVersion)
	}
	return json.Unmarshal(data[headerSize:], target)
}
