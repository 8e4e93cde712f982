package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// FileInfo identifies a version of a file on disk
type FileInfo struct {
	ModTime     int64  // Last modification time, nanoseconds
	Size        int64  // File size in bytes
	Fingerprint string // CRC32 of the file tail
}

// GetFileInfo retrieves the modification time, size and tail fingerprint of a file
func GetFileInfo(filepath string) (*FileInfo, error) {
	stat, err := os.Stat(filepath)
	if err != nil {
		return nil, err
	}

	fingerprint, err := CalculateFileFingerprint(filepath)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		ModTime:     stat.ModTime().UnixNano(),
		Size:        stat.Size(),
		Fingerprint: fingerprint,
	}, nil
}

// Same returns true when both infos describe the same file content
func (f *FileInfo) Same(other *FileInfo) bool {
	if f == nil || other == nil {
		return false
	}
	return f.ModTime == other.ModTime && f.Size == other.Size && f.Fingerprint == other.Fingerprint
}

// CalculateFileFingerprint calculates CRC32 fingerprint of the last 2KB of a file
func CalculateFileFingerprint(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	size := stat.Size()
	readSize := int64(2048)
	if size < readSize {
		readSize = size
	}

	// Seek to 2KB before end of file
	if _, err = file.Seek(-readSize, io.SeekEnd); err != nil {
		return "", err
	}

	data := make([]byte, readSize)
	if _, err = io.ReadFull(file, data); err != nil {
		return "", fmt.Errorf("failed to read fingerprint of %s: %w", filepath, err)
	}

	crc := crc32.ChecksumIEEE(data)
	return fmt.Sprintf("%08x", crc), nil
}
