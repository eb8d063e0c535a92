package store

import "encoding/binary"

// Key prefixes for different data types
const (
	tradePrefix    = "trade:"
	rentPrefix     = "rent:"
	regionPrefix   = "region:"
	snapshotPrefix = "snap:"

	tradeIDSeq = "seq:trade"
	rentIDSeq  = "seq:rent"
)

// makeRowKey builds prefix + big endian id, so iteration follows insertion order.
func makeRowKey(prefix string, id uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

func makeRegionKey(code string) []byte {
	return []byte(regionPrefix + code)
}

func makeSnapshotKey(name string) []byte {
	return []byte(snapshotPrefix + name)
}
