package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/prompts"
	"github.com/richard-senior/goalclock/pkg/protocol"
	"github.com/richard-senior/goalclock/pkg/resources"
	"github.com/richard-senior/goalclock/pkg/tools"
	"github.com/richard-senior/goalclock/pkg/transport"
)

const (
	ServerName             = "goalclock"
	ServerVersion          = "1.0.0"
	defaultProtocolVersion = "2024-11-05"
	legacyToolPrefix       = "mcp___"
)

// Server represents an MCP server
type Server struct {
	mu        sync.Mutex
	transport transport.Transport
	handlers  map[string]HandlerFunc
	methods   map[string]HandlerFunc
	tools     []protocol.Tool
	resources []protocol.Resource
	prompts   *prompts.PromptRegistry
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// Singleton instance
var (
	instance *Server
	once     sync.Once
)

// GetInstance returns the singleton server talking over stdin/stdout
func GetInstance() *Server {
	once.Do(func() {
		instance = NewServer(transport.NewStdioTransport())
	})
	return instance
}

// NewServer creates a server with the goal tools, resources and prompts registered
func NewServer(t transport.Transport) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
		methods:   make(map[string]HandlerFunc),
		tools:     []protocol.Tool{},
		resources: []protocol.Resource{},
		prompts:   prompts.GetGlobalRegistry(),
	}
	s.RegisterDefaultTools()
	s.RegisterDefaultResources()
	s.registerMethods()
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// RegisterResource registers a resource with the server
func (s *Server) RegisterResource(resource protocol.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resources = append(s.resources, resource)
	logger.Info("Registered resource:", resource.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools
}

// RegisterDefaultTools registers all the goal tools with the server
func (s *Server) RegisterDefaultTools() {
	logger.Info("Registering default tools...")

	s.RegisterTool(tools.GoalTimesTool(), tools.HandleGoalTimesTool)
	s.RegisterTool(tools.ImpliedProbabilityTool(), tools.HandleImpliedProbabilityTool)
	s.RegisterTool(tools.EstimateLambdaTool(), tools.HandleEstimateLambdaTool)
	s.RegisterTool(tools.GoalTimeTableTool(), tools.HandleGoalTimeTableTool)
}

// RegisterDefaultResources registers all the default resources with the server
func (s *Server) RegisterDefaultResources() {
	logger.Info("Registering default resources...")
	for _, r := range resources.GetResources() {
		s.RegisterResource(r)
	}
}

func (s *Server) registerMethods() {
	s.methods[string(protocol.MethodInitialize)] = s.handleInitialize
	s.methods[string(protocol.MethodInitialized)] = s.handleInitialized
	s.methods[string(protocol.MethodPing)] = s.handlePing
	s.methods[string(protocol.MethodToolsList)] = s.handleToolsList
	s.methods[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.methods[string(protocol.MethodInvokeTool)] = s.handleToolsCall
	s.methods[string(protocol.MethodResourcesList)] = s.handleResourcesList
	s.methods[string(protocol.MethodResourcesRead)] = s.handleResourcesRead
	s.methods[string(protocol.MethodPromptsList)] = s.handlePromptsList
	s.methods[string(protocol.MethodPromptsGet)] = s.handlePromptsGet
}

// Start starts the server and begins processing requests
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig.String())
		return nil
	}
}

// ProcessRequests handles requests until the client goes away.
// A clean EOF is not an error.
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			var perr *transport.ParseError
			if errors.As(err, &perr) {
				resp := protocol.NewJsonRpcErrorResponse(protocol.ErrParse, perr.Error(), nil, nil)
				if werr := s.transport.WriteResponse(resp); werr != nil {
					return werr
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		// nil means no response is required
		resp := s.HandleRequest(req)
		if resp == nil {
			continue
		}

		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest processes a request and returns a response, or nil for notifications
func (s *Server) HandleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)
	logger.Debug("Full request:", string(req.Params))

	if req.IsNotification() {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	handler := s.methods[req.Method]
	if handler == nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
		return resp
	}

	var params any
	if len(req.Params) > 0 {
		params = req.Params
	}

	result, err := s.safeCall(handler, params)
	if err == nil && result == nil {
		return nil
	}
	if err != nil {
		var rpcErr *protocol.JsonRpcError
		if errors.As(err, &rpcErr) {
			resp.Error = rpcErr
			return resp
		}
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrToolExecutionFailed,
			Message: err.Error(),
		}
		return resp
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	resp.Result = resultBytes
	logger.Debug("Full response:", string(resultBytes))

	return resp
}

// safeCall runs a handler, turning a panic into an internal error so one bad
// request cannot take the server down
func (s *Server) safeCall(handler HandlerFunc, params any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panicked:", fmt.Sprint(r))
			result = nil
			err = &protocol.JsonRpcError{
				Code:    protocol.ErrInternal,
				Message: fmt.Sprintf("internal error: %v", r),
			}
		}
	}()
	return handler(params)
}

// decodeParams converts the raw params of a request into v
func decodeParams(params any, v any) error {
	if params == nil {
		return nil
	}
	var data []byte
	switch p := params.(type) {
	case json.RawMessage:
		data = p
	default:
		var err error
		if data, err = json.Marshal(p); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: err.Error()}
	}
	return nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(params any) (any, error) {
	logger.Info("Handling initialize request with", len(s.tools), "tools registered")

	var initParams struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := decodeParams(params, &initParams); err != nil {
		logger.Warn("Failed to read initialize params:", err)
	}
	version := initParams.ProtocolVersion
	if version == "" {
		version = defaultProtocolVersion
	}
	logger.Info("Final protocol version to use:", version)

	capabilities := map[string]any{}
	if len(s.tools) > 0 {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	if len(s.resources) > 0 {
		capabilities["resources"] = map[string]any{"listChanged": false}
	}
	if len(s.prompts.ListPrompts()) > 0 {
		capabilities["prompts"] = map[string]any{"listChanged": false}
	}

	return map[string]any{
		"protocolVersion": version,
		"capabilities":    capabilities,
		"serverInfo": map[string]string{
			"name":    ServerName,
			"version": ServerVersion,
		},
	}, nil
}

// handleInitialized handles the initialized notification, which has no response
func (s *Server) handleInitialized(params any) (any, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return map[string]any{}, nil
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	logger.Info("Handling tools/list request")
	return struct {
		Tools []protocol.Tool `json:"tools"`
	}{Tools: s.GetTools()}, nil
}

// handleToolsCall runs a tool and wraps its output as MCP content
func (s *Server) handleToolsCall(params any) (any, error) {
	logger.Info("Handling tools/call request")

	var call struct {
		Name       string         `json:"name"`
		Arguments  map[string]any `json:"arguments"`
		Parameters map[string]any `json:"parameters"` // invoke_tool spelling
	}
	if err := decodeParams(params, &call); err != nil {
		return nil, err
	}
	if call.Arguments == nil {
		call.Arguments = call.Parameters
	}
	if call.Name == "" {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "missing tool name"}
	}

	logger.Info("Tool call requested for:", call.Name)

	s.mu.Lock()
	handler := s.handlers[call.Name]
	if handler == nil && strings.HasPrefix(call.Name, legacyToolPrefix) {
		handler = s.handlers[strings.TrimPrefix(call.Name, legacyToolPrefix)]
	}
	s.mu.Unlock()

	if handler == nil || !s.isTool(call.Name) {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "tool not found: " + call.Name}
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	result, err := handler(args)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}

	text, err := toolText(result)
	if err != nil {
		return nil, err
	}
	return protocol.ToolResult{
		Content:           []protocol.ContentItem{{Type: "text", Text: text}},
		StructuredContent: result,
	}, nil
}

func (s *Server) isTool(name string) bool {
	name = strings.TrimPrefix(name, legacyToolPrefix)
	for _, t := range s.GetTools() {
		if t.Name == name {
			return true
		}
	}
	return false
}

// toolText prefers a rendered markdown table, falling back to indented JSON
func toolText(result any) (string, error) {
	if m, ok := result.(map[string]any); ok {
		if md, ok := m["markdown"].(string); ok && md != "" {
			return md, nil
		}
	}
	b, err := json.MarshalIndent(result, "", " ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(b), nil
}

// handleResourcesList handles the resources/list method
func (s *Server) handleResourcesList(params any) (any, error) {
	logger.Info("Handling resources/list request")
	s.mu.Lock()
	defer s.mu.Unlock()
	return struct {
		Resources []protocol.Resource `json:"resources"`
	}{Resources: s.resources}, nil
}

// handleResourcesRead handles the resources/read method
func (s *Server) handleResourcesRead(params any) (any, error) {
	var readParams struct {
		URI string `json:"uri"`
	}
	if err := decodeParams(params, &readParams); err != nil {
		return nil, err
	}
	content, err := resources.ReadResource(readParams.URI)
	if err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: err.Error()}
	}
	return map[string]any{
		"contents": []protocol.ResourceContent{*content},
	}, nil
}

// handlePromptsList returns a list of stored prompts
func (s *Server) handlePromptsList(params any) (any, error) {
	logger.Info("Handling prompts/list request")

	type promptListEntry struct {
		Name        string                    `json:"name"`
		Description string                    `json:"description,omitempty"`
		Arguments   []protocol.PromptArgument `json:"arguments,omitempty"`
	}

	list := []promptListEntry{}
	for _, p := range s.prompts.ListPrompts() {
		list = append(list, promptListEntry{
			Name:        p.ID,
			Description: p.Description,
			Arguments:   p.Arguments,
		})
	}
	return struct {
		Prompts []promptListEntry `json:"prompts"`
	}{Prompts: list}, nil
}

// handlePromptsGet handles the prompts/get method
func (s *Server) handlePromptsGet(params any) (any, error) {
	logger.Info("Handling prompts/get request")

	var getParams struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments,omitempty"`
	}
	if err := decodeParams(params, &getParams); err != nil {
		return nil, err
	}

	prompt, err := s.prompts.GetPrompt(getParams.Name)
	if err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: err.Error()}
	}
	content, err := prompts.Render(prompt, getParams.Arguments)
	if err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: err.Error()}
	}

	return struct {
		Description string                   `json:"description"`
		Messages    []protocol.PromptMessage `json:"messages"`
	}{
		Description: prompt.Description,
		Messages: []protocol.PromptMessage{
			{
				Role:    "user",
				Content: protocol.PromptContent{Type: "text", Text: content},
			},
		},
	}, nil
}
