package transport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/goalclock/pkg/protocol"
)

func TestReadRequests(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"note":"a } brace \" quote"}}
{"jsonrpc":"2.0",
 "method":"notifications/initialized"}

{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	tr := NewStreamTransport(in, io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "initialize", req.Method)
	assert.JSONEq(t, `{"note":"a } brace \" quote"}`, string(req.Params))

	req, err = tr.ReadRequest()
	require.NoError(t, err)
	assert.True(t, req.IsNotification())

	req, err = tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/list", req.Method)

	_, err = tr.ReadRequest()
	assert.Equal(t, io.EOF, err)
}

func TestReadRequestErrors(t *testing.T) {
	tr := NewStreamTransport(strings.NewReader(`{"jsonrpc":"1.0","id":1,"method":"x"}{"jsonrpc":"2.0","id":2`), io.Discard)

	_, err := tr.ReadRequest()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Raw, `"1.0"`)

	_, err = tr.ReadRequest()
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestWriteResponse(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTransport(strings.NewReader(""), &out)

	require.NoError(t, tr.WriteResponse(protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, "nope", nil, 4)))
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	resp, err := protocol.ParseJsonRpcResponse(bytes.TrimSpace(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, float64(4), resp.ID)
}
