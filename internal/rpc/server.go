// Package rpc exposes the engine's read-only query surface over HTTP
// JSON-RPC and streams events to websocket subscribers.
package rpc

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// HandlerFunc executes one RPC method. Params may be nil for GET queries.
type HandlerFunc func(params json.RawMessage) (interface{}, *RpcError)

// Server handles HTTP JSON-RPC requests.
// Format: {"method": "name", "params": [{...}]}.
type Server struct {
	registry map[string]HandlerFunc
	services *Services
}

// NewServer builds a server over services with every method registered.
func NewServer(services *Services) *Server {
	s := &Server{
		registry: make(map[string]HandlerFunc),
		services: services,
	}
	s.registerMethods()
	return s
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet serves simple queries like ?command=server_info.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	result, rpcErr := s.execute(method, nil)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, errInvalidParams("failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeResponse(w, nil, errInvalidParams("invalid JSON: "+err.Error()))
		return
	}
	if req.Method == "" {
		s.writeResponse(w, nil, errInvalidParams("missing method field"))
		return
	}

	var params json.RawMessage
	if len(req.Params) > 0 {
		params = req.Params[0]
	}

	result, rpcErr := s.execute(req.Method, params)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) execute(method string, params json.RawMessage) (interface{}, *RpcError) {
	handler, ok := s.registry[method]
	if !ok {
		return nil, errMethodNotFound(method)
	}
	return handler(params)
}

// writeResponse writes {"result": {...}} with result.status set to success
// or error. Errors ride inside the result object.
func (s *Server) writeResponse(w http.ResponseWriter, result interface{}, rpcErr *RpcError) {
	resultObj := make(map[string]interface{})
	if rpcErr != nil {
		resultObj["status"] = "error"
		resultObj["error"] = rpcErr.Name
		resultObj["error_code"] = rpcErr.Code
		resultObj["error_message"] = rpcErr.Message
	} else {
		resultObj["status"] = "success"
		resultObj["data"] = result
	}

	data, err := json.Marshal(map[string]interface{}{"result": resultObj})
	if err != nil {
		log.Printf("rpc: failed to marshal response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
