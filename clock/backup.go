package clock

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// BackupKeeper persists a single encoded Record across resets (spec.md
// §4.6: "persists epoch_seconds to survive resets"). Implementations
// typically wrap an EEPROM, a file, or (in tests) an in-memory byte slice.
type BackupKeeper interface {
	ReadBackup() ([]byte, error)
	WriteBackup(data []byte) error
}

// recordVersion is the only Record layout this package has ever emitted.
const recordVersion uint8 = 1

// recordLen is the encoded size of a Record: 1 version byte + 4 epoch
// seconds bytes + 4 CRC bytes.
const recordLen = 9

// Record is the backup keeper's persisted-state layout (spec.md §6):
// version, epoch seconds, and a CRC32 checksum placed after the payload
// rather than before it, to spread flash wear across varying-size records
// as the EEPROM-backed source does.
type Record struct {
	Version      uint8
	EpochSeconds int32
}

// EncodeRecord serializes r as version || epochSeconds || crc32(payload),
// all big-endian. The CRC covers only the version and epoch-seconds bytes.
func EncodeRecord(r Record) []byte {
	buf := make([]byte, recordLen)
	buf[0] = r.Version
	binary.BigEndian.PutUint32(buf[1:5], uint32(r.EpochSeconds))
	crc := crc32.ChecksumIEEE(buf[:5])
	binary.BigEndian.PutUint32(buf[5:9], crc)
	return buf
}

// DecodeRecord is the inverse of EncodeRecord. It returns an error if data
// is not exactly recordLen bytes or its trailing CRC does not match the
// payload, either of which indicates a corrupted or uninitialized backup.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) != recordLen {
		return Record{}, fmt.Errorf("clock: backup record must be %d bytes, got %d", recordLen, len(data))
	}
	payload := data[:5]
	wantCRC := binary.BigEndian.Uint32(data[5:9])
	gotCRC := crc32.ChecksumIEEE(payload)
	if gotCRC != wantCRC {
		return Record{}, fmt.Errorf("clock: backup record CRC mismatch: got %08x, want %08x", gotCRC, wantCRC)
	}
	return Record{
		Version:      payload[0],
		EpochSeconds: int32(binary.BigEndian.Uint32(payload[1:5])),
	}, nil
}
