package epub

import (
	"archive/zip"
	"bytes"
	"hash/crc32"
	"time"
)

const mimetype = "application/epub+zip"

// minZipTime is the earliest time the MS-DOS fields can hold.
var minZipTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

type file struct {
	name string
	data []byte
}

// packEpub zips files behind an uncompressed mimetype entry. Every entry
// carries the same modification time so equal input gives equal bytes.
func packEpub(files []file, modified time.Time) ([]byte, error) {
	if modified.Before(minZipTime) {
		modified = minZipTime
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	if err := addMimetype(zipWriter, modified); err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := addBytesToZip(zipWriter, f.name, f.data, modified); err != nil {
			return nil, err
		}
	}
	if err := zipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addMimetype writes the mimetype entry raw: stored, no data descriptor and
// no extra field, as readers expect at a fixed offset.
func addMimetype(zipWriter *zip.Writer, modified time.Time) error {
	data := []byte(mimetype)
	date, tm := msDosTime(modified)
	header := &zip.FileHeader{
		Name:               "mimetype",
		Method:             zip.Store,
		ReaderVersion:      10,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: uint64(len(data)),
		ModifiedDate:       date,
		ModifiedTime:       tm,
	}
	writer, err := zipWriter.CreateRaw(header)
	if err != nil {
		return err
	}
	_, err = writer.Write(data)
	return err
}

func addBytesToZip(zipWriter *zip.Writer, relPath string, data []byte, modified time.Time) error {
	header := &zip.FileHeader{
		Name:     relPath,
		Method:   zip.Deflate,
		Modified: modified,
	}
	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = writer.Write(data)
	return err
}

// msDosTime converts t to the MS-DOS date and time fields of a zip header.
func msDosTime(t time.Time) (uint16, uint16) {
	date := uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	tm := uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, tm
}
