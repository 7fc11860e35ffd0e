package coldstore

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	indexFileName = "index.db"

	indexMagic   = uint32(0x53434958) // "SCIX"
	indexVersion = uint16(1)
)

var errBadIndexHeader = errors.New("bad index header")

// Entry is the in-memory index record describing one on-disk payload.
type Entry struct {
	Key         string
	Size        int64
	CreatedAt   int64 // unix nanos
	LastAccess  int64 // unix nanos
	AccessCount int64
}

func (e *Entry) encode(buf *bytes.Buffer) {
	var scratch [8]byte
	binary.LittleEndian.PutUint16(scratch[:2], uint16(len(e.Key)))
	buf.Write(scratch[:2])
	buf.WriteString(e.Key)
	for _, v := range [...]int64{e.Size, e.CreatedAt, e.LastAccess, e.AccessCount} {
		binary.LittleEndian.PutUint64(scratch[:], uint64(v))
		buf.Write(scratch[:])
	}
}

func decodeEntry(data []byte) (*Entry, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("index record too short: %d bytes", len(data))
	}
	keyLen := int(binary.LittleEndian.Uint16(data[:2]))
	if len(data) != 2+keyLen+32 {
		return nil, fmt.Errorf("index record length mismatch: %d bytes, key %d", len(data), keyLen)
	}
	e := &Entry{Key: string(data[2 : 2+keyLen])}
	rest := data[2+keyLen:]
	e.Size = int64(binary.LittleEndian.Uint64(rest[0:8]))
	e.CreatedAt = int64(binary.LittleEndian.Uint64(rest[8:16]))
	e.LastAccess = int64(binary.LittleEndian.Uint64(rest[16:24]))
	e.AccessCount = int64(binary.LittleEndian.Uint64(rest[24:32]))
	return e, nil
}

// persistIndexLocked rewrites the index file atomically (tmp file + rename).
// Failures are logged and absorbed: the in-memory index stays authoritative
// and the file self-heals on the next successful persist.
func (s *Store) persistIndexLocked() {
	name := filepath.Join(s.dir, indexFileName)
	tmp := name + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		log.Err(err).Str("file", tmp).Msg("[coldstore] index create error")
		return
	}

	var (
		writer io.Writer = f
		gw     *gzip.Writer
	)
	if s.gzip {
		gw = gzip.NewWriter(f)
		writer = gw
	}
	bw := bufio.NewWriterSize(writer, 64*1024)

	var head [6]byte
	binary.LittleEndian.PutUint32(head[0:4], indexMagic)
	binary.LittleEndian.PutUint16(head[4:6], indexVersion)
	_, err = bw.Write(head[:])

	record := bytes.NewBuffer(make([]byte, 0, 256))
	for _, e := range s.index {
		if err != nil {
			break
		}
		record.Reset()
		e.encode(record)
		data := record.Bytes()

		var meta [8]byte
		binary.LittleEndian.PutUint32(meta[0:4], uint32(len(data)))
		binary.LittleEndian.PutUint32(meta[4:8], crc32.ChecksumIEEE(data))
		if _, err = bw.Write(meta[:]); err != nil {
			break
		}
		_, err = bw.Write(data)
	}

	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}
	if gw != nil {
		if closeErr := gw.Close(); err == nil {
			err = closeErr
		}
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Err(err).Str("file", tmp).Msg("[coldstore] index write error")
		_ = os.Remove(tmp)
		return
	}
	if err = os.Rename(tmp, name); err != nil {
		log.Err(err).Str("file", name).Msg("[coldstore] index rename error")
	}
}

// loadIndex reads the index file back, skipping records that fail CRC or
// decode. A missing file yields an empty index; the store never refuses to
// start over index damage.
func (s *Store) loadIndex() {
	name := filepath.Join(s.dir, indexFileName)
	f, err := os.Open(name)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Err(err).Str("file", name).Msg("[coldstore] index open error")
		}
		return
	}
	defer f.Close()

	var reader io.Reader = f
	if s.gzip {
		gzr, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			log.Err(gzErr).Str("file", name).Msg("[coldstore] index gzip open error")
			return
		}
		defer gzr.Close()
		reader = gzr
	}

	br := bufio.NewReaderSize(reader, 64*1024)
	if err = readIndexHeader(br); err != nil {
		log.Err(err).Str("file", name).Msg("[coldstore] index header error")
		return
	}

	var restored, failures int
	var meta [8]byte
	for {
		if _, err = io.ReadFull(br, meta[:]); err == io.EOF {
			break
		} else if err != nil {
			log.Err(err).Str("file", name).Msg("[coldstore] index read meta error")
			failures++
			break
		}

		sz := binary.LittleEndian.Uint32(meta[0:4])
		expCRC := binary.LittleEndian.Uint32(meta[4:8])
		buf := make([]byte, sz)
		if _, err = io.ReadFull(br, buf); err != nil {
			log.Err(err).Str("file", name).Msg("[coldstore] index read record error")
			failures++
			break
		}
		if crc32.ChecksumIEEE(buf) != expCRC {
			log.Warn().Str("file", name).Msg("[coldstore] index crc mismatch, record skipped")
			failures++
			continue
		}
		e, decErr := decodeEntry(buf)
		if decErr != nil {
			log.Err(decErr).Str("file", name).Msg("[coldstore] index record decode error")
			failures++
			continue
		}
		s.index[e.Key] = e
		s.totalSize += e.Size
		restored++
	}

	log.Info().
		Int("restored", restored).
		Int("fails", failures).
		Msg("[coldstore] index loaded")
}

func readIndexHeader(r io.Reader) error {
	var head [6]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint32(head[0:4]) != indexMagic {
		return errBadIndexHeader
	}
	if binary.LittleEndian.Uint16(head[4:6]) != indexVersion {
		return fmt.Errorf("unsupported index version %d", binary.LittleEndian.Uint16(head[4:6]))
	}
	return nil
}
