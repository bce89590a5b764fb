package utils

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, perm)
}

// WriteCompressedFile compresses data with the codec implied by the path
// extension and writes it
func WriteCompressedFile(path string, data []byte, perm os.FileMode) error {
	out, err := Compress(data, CodecForPath(path))
	if err != nil {
		return err
	}
	return WriteFile(path, out, perm)
}

// ReadCompressedFile reads a file and decompresses it according to its extension
func ReadCompressedFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decompress(data, CodecForPath(path))
}
