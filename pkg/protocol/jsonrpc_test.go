package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJsonRpcRequest(t *testing.T) {
	req, err := ParseJsonRpcRequest([]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"goal_times"}}`))
	require.NoError(t, err)
	assert.Equal(t, string(MethodToolsCall), req.Method)
	assert.Equal(t, float64(7), req.ID)
	assert.False(t, req.IsNotification())
	assert.JSONEq(t, `{"name":"goal_times"}`, string(req.Params))

	note, err := ParseJsonRpcRequest([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	assert.True(t, note.IsNotification())

	_, err = ParseJsonRpcRequest([]byte(`{"jsonrpc":"1.0","method":"ping","id":1}`))
	assert.Error(t, err)
	_, err = ParseJsonRpcRequest([]byte(`{"jsonrpc":"2.0","id":1}`))
	assert.Error(t, err)
	_, err = ParseJsonRpcRequest([]byte(`{"jsonrpc":`))
	assert.Error(t, err)
}

func TestErrorResponseRoundTrip(t *testing.T) {
	resp := NewJsonRpcErrorResponse(ErrInvalidParams, "over_odds is required", nil, 3)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"result"`)

	parsed, err := ParseJsonRpcResponse(data)
	require.NoError(t, err)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, ErrInvalidParams, parsed.Error.Code)
	assert.Contains(t, parsed.Error.Error(), "over_odds is required")
}

func TestNewJsonRpcRequest(t *testing.T) {
	req, err := NewJsonRpcRequest("tools/list", map[string]any{}, 1)
	require.NoError(t, err)
	assert.Equal(t, JsonRpcVersion, req.JsonRPC)
	assert.JSONEq(t, `{}`, string(req.Params))

	_, err = NewJsonRpcRequest("tools/list", func() {}, 1)
	assert.Error(t, err)
}
