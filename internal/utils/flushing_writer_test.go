package utils_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/codeaudit/internal/utils"
)

type recordingFlushWriter struct {
	buffer     bytes.Buffer
	flushCount int
	flushError error
}

func (writer *recordingFlushWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *recordingFlushWriter) Flush() error {
	writer.flushCount++
	return writer.flushError
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	target := &recordingFlushWriter{}
	writer := utils.NewFlushingWriter(target)

	_, firstError := writer.Write([]byte("Your answers: "))
	require.NoError(testInstance, firstError)
	_, secondError := writer.Write([]byte("1A"))
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, 2, target.flushCount)
	require.Equal(testInstance, "Your answers: 1A", target.buffer.String())
}

func TestFlushingWriterPropagatesFlushError(testInstance *testing.T) {
	target := &recordingFlushWriter{flushError: errors.New("flush failed")}
	writer := utils.NewFlushingWriter(target)

	_, writeError := writer.Write([]byte("prompt"))
	require.EqualError(testInstance, writeError, "flush failed")
}

func TestNewFlushingWriterWrapsOnce(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))

	wrapped := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, wrapped, utils.NewFlushingWriter(wrapped))
}
