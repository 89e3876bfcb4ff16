package index

import (
	"bytes"
	"encoding/binary"
	"inkpress/internal/domain/content"
)

func clampSticky(s int) uint16 {
	if s < 0 {
		s = 0
	}
	if s > content.MaxSticky {
		s = content.MaxSticky
	}
	return uint16(s)
}

// key = invSticky(2) + invTime(8) + 0x00 + slug
func makeStickyTimeSlugKey(sticky int, unixNano int64, slug string) []byte {
	buf := make([]byte, 2+8+1+len(slug))
	binary.BigEndian.PutUint16(buf[0:2], ^clampSticky(sticky))
	binary.BigEndian.PutUint64(buf[2:10], ^uint64(unixNano))
	buf[10] = 0x00
	copy(buf[11:], slug)
	return buf
}

func slugFromStickyTimeSlugKey(k []byte) string {
	// invSticky(2) + invTime(8) + 0x00 + slug
	if len(k) < 2+8+2 || k[10] != 0x00 {
		return ""
	}
	return string(k[11:])
}

// key = order(8) + invUpdated(8) + 0x00 + slug
func makeSeriesKey(order int, updatedUnixNano int64, slug string) []byte {
	if order < 0 {
		order = 0
	}
	buf := make([]byte, 8+8+1+len(slug))
	binary.BigEndian.PutUint64(buf[0:8], uint64(order))
	binary.BigEndian.PutUint64(buf[8:16], ^uint64(updatedUnixNano))
	buf[16] = 0x00
	copy(buf[17:], slug)
	return buf
}

func slugFromSeriesKey(k []byte) string {
	if len(k) < 8+8+2 || k[16] != 0x00 {
		return ""
	}
	return string(k[17:])
}

// lang\x00slug
func metaKey(lang, slug string) []byte {
	return []byte(lang + "\x00" + slug)
}

func splitMetaKey(k []byte) (lang, slug string, ok bool) {
	i := bytes.IndexByte(k, 0x00)
	if i < 0 {
		return "", "", false
	}
	return string(k[:i]), string(k[i+1:]), true
}
