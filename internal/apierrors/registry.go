package apierrors

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// ErrorCode is one entry of the registry.
type ErrorCode struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status"`
}

// Namespace returns the owner of the code: the part before the colon, or
// "core" for bare codes.
func (e ErrorCode) Namespace() string {
	if ns, _, ok := strings.Cut(e.Code, ":"); ok && ns != "" {
		return ns
	}
	return "core"
}

// CodeTable is a concurrency-safe set of error codes.
type CodeTable struct {
	mu    sync.RWMutex
	codes map[string]ErrorCode
}

// NewCodeTable returns an empty table.
func NewCodeTable() *CodeTable {
	return &CodeTable{codes: make(map[string]ErrorCode)}
}

// Registry holds the core codes and every code declared by a registered
// plugin.
var Registry = NewCodeTable()

// Register adds e, replacing an entry with the same code.
func (t *CodeTable) Register(e ErrorCode) {
	t.mu.Lock()
	t.codes[e.Code] = e
	t.mu.Unlock()
}

// RegisterPlugin adds the codes a plugin declares. Bare codes are put in
// the plugin's namespace and a missing status defaults to 400.
func (t *CodeTable) RegisterPlugin(pluginName string, codes []ErrorCode) {
	for _, e := range codes {
		if !strings.Contains(e.Code, ":") {
			e.Code = pluginName + ":" + e.Code
		}
		if e.HTTPStatus == 0 {
			e.HTTPStatus = http.StatusBadRequest
		}
		t.Register(e)
	}
}

// Lookup returns the entry for a full code.
func (t *CodeTable) Lookup(code string) (ErrorCode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.codes[code]
	return e, ok
}

// Namespace lists the codes of ns sorted by code.
func (t *CodeTable) Namespace(ns string) []ErrorCode {
	t.mu.RLock()
	out := make([]ErrorCode, 0)
	for _, e := range t.codes {
		if e.Namespace() == ns {
			out = append(out, e)
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// HTTPStatus is the status for code; unknown codes are server errors.
func (t *CodeTable) HTTPStatus(code string) int {
	if e, ok := t.Lookup(code); ok {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message is the default text for code, or the code itself when unknown.
func (t *CodeTable) Message(code string) string {
	if e, ok := t.Lookup(code); ok {
		return e.Message
	}
	return code
}
