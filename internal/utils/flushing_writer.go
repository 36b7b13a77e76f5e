package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// FlushingWriter pushes every write through to the underlying writer so interactive prompts appear before input is read.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer. A nil writer yields nil and an existing FlushingWriter is returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer, then calls Flush when available.
// Sync is only attempted for writers without Flush, and its failure is ignored because terminals reject it.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	switch target := flushingWriter.writer.(type) {
	case flusher:
		if flushError := target.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	case syncer:
		_ = target.Sync()
	}
	return bytesWritten, nil
}
