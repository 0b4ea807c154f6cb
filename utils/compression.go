package utils

import (
	"bytes"
	"encoding/base64"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip64Encode gzips data at the given level and base64 encodes the result.
// Header fields (name, mtime, OS) are left zeroed so identical input always
// yields identical output.
func Gzip64Encode(data []byte, level int) (string, error) {
	var compressedBuffer bytes.Buffer
	gzipWriter, err := gzip.NewWriterLevel(&compressedBuffer, level)
	if err != nil {
		return "", err
	}
	if _, err = gzipWriter.Write(data); err != nil {
		return "", err
	}
	if err = gzipWriter.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(compressedBuffer.Bytes()), nil
}

func Gzip64Decode(data string) ([]byte, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	gzipReader, err := gzip.NewReader(bytes.NewReader(decodedBytes))
	if err != nil {
		return nil, err
	}
	decompressedBytes, err := io.ReadAll(gzipReader)
	if err != nil {
		return nil, err
	}
	if err = gzipReader.Close(); err != nil {
		return nil, err
	}
	return decompressedBytes, nil
}
