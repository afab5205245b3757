package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/protocol"
)

// StdioTransport implements communication over standard input/output,
// one JSON object per request and one line per response
type StdioTransport struct {
	reader *bufio.Reader
	writer *bufio.Writer
}

// NewStdioTransport creates a new transport that uses stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport over any reader/writer pair
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
	}
}

// ReadRequest reads one JSON-RPC request, objects may span several lines
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	logger.Debug("Waiting for request on stdin...")

	raw, err := t.readObject()
	if err != nil {
		if err == io.EOF {
			logger.Info("Received EOF on stdin, client disconnected")
		}
		return nil, err
	}

	logger.Debug("Received raw request:", raw)
	request, err := protocol.ParseJsonRpcRequest([]byte(raw))
	if err != nil {
		logger.Error("Failed to parse JSON-RPC request:", err)
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return request, nil
}

// readObject returns the bytes of the next top level JSON object,
// tracking string literals so braces inside them are not counted
func (t *StdioTransport) readObject() (string, error) {
	var data []byte
	var depth int
	var inString, escaped, started bool

	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			if err == io.EOF && started {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if !started {
			if b != '{' {
				// whitespace and newlines between messages
				continue
			}
			started = true
		}
		data = append(data, b)

		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case !inString && b == '{':
			depth++
		case !inString && b == '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(string(data)), nil
			}
		}
	}
}

// WriteResponse writes a JSON-RPC response followed by a newline
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response:", err)
		return err
	}
	responseBytes = append(responseBytes, '\n')

	logger.Debug("Sending response:", string(responseBytes))

	if _, err := t.writer.Write(responseBytes); err != nil {
		logger.Error("Failed to write response:", err)
		return err
	}
	if err := t.writer.Flush(); err != nil {
		logger.Error("Failed to flush response:", err)
		return err
	}
	return nil
}

// ParseError is returned for input that was read whole but isn't a JSON-RPC request.
// The stream is still usable afterwards.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse request: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
