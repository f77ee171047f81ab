package cloudwriter

import (
	"fmt"
	"io"
)

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// Upload copies r into a new object. The object is only stored once the writer is closed.
func Upload(factory CloudWriterFactory, bucket, objectPath string, r io.Reader) error {
	w, err := factory.NewWriter(bucket, objectPath)
	if err != nil {
		return fmt.Errorf("failed to create cloud writer for %s: %w", objectPath, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", objectPath, err)
	}
	return w.Close()
}
