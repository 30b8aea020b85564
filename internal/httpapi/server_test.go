package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gptbridge/internal/batch"
	"gptbridge/pkg/types"
)

type mockService struct {
	status types.StatusResponse
	ready  bool
	err    error
	gotIn  []types.PromptItem
	gotMax int
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Generate(ctx context.Context, inputs []types.PromptItem, maxOutLen int) ([]string, error) {
	m.gotIn, m.gotMax = inputs, maxOutLen
	if m.err != nil {
		return nil, m.err
	}
	out := make([]string, len(inputs))
	for i, in := range inputs {
		q, _ := in.Question()
		out[i] = "A:" + q
	}
	return out, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postGenerate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGenerateHandler(t *testing.T) {
	svc := &mockService{}
	w := postGenerate(t, NewMux(svc), `{"inputs":["x",[{"role":"HUMAN","prompt":"a"},{"role":"BOT","prompt":"b"}]],"max_out_len":64}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Outputs) != 2 || body.Outputs[0] != "A:x" || body.Outputs[1] != "A:a\nb" {
		t.Fatalf("unexpected outputs: %q", body.Outputs)
	}
	if svc.gotMax != 64 || svc.gotIn[1].Kind != types.PromptTurns {
		t.Fatalf("unexpected call: max=%d in=%+v", svc.gotMax, svc.gotIn)
	}
}

func TestGenerateHandlerValidation(t *testing.T) {
	h := NewMux(&mockService{})
	cases := []struct {
		body string
		code int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"inputs":[]}`, http.StatusBadRequest},
		{`{"inputs":[42]}`, http.StatusBadRequest},
		{`{"inputs":[[{"role":"HUMAN"}]]}`, http.StatusBadRequest},
		{`{"inputs":["x"],"max_out_len":-1}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		if w := postGenerate(t, h, c.body); w.Code != c.code {
			t.Fatalf("%s: status=%d want %d", c.body, w.Code, c.code)
		}
	}
}

func TestGenerateHandlerContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"inputs":["x"]}`))
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGenerateHandlerBodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	w := postGenerate(t, NewMux(&mockService{}), `{"inputs":["a very long prompt indeed"]}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGenerateHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&batch.InvalidInputError{Index: 0, Err: types.ErrInvalidPrompt}, http.StatusBadRequest},
		{&batch.ProcessExecutionError{ExitCode: 1, Err: errors.New("exit status 1")}, http.StatusBadGateway},
		{&batch.MalformedResponseError{Line: 2, Reason: "bad"}, http.StatusBadGateway},
		{&batch.IncompleteResponseError{Want: 3, Missing: []int{1}}, http.StatusBadGateway},
		{&batch.ConfigurationError{Msg: "no tool"}, http.StatusServiceUnavailable},
		{mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		w := postGenerate(t, NewMux(&mockService{err: c.err}), `{"inputs":["x"]}`)
		if w.Code != c.code {
			t.Fatalf("%v: status=%d want %d", c.err, w.Code, c.code)
		}
		var body types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != c.code || body.Error == "" {
			t.Fatalf("%v: bad error body %q", c.err, w.Body.String())
		}
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{Model: "gpt-4o", Completed: 3}}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Model != "gpt-4o" || body.Completed != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthAndReady(t *testing.T) {
	h := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz=%d", w.Code)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz=%d", w.Code)
	}
	w = httptest.NewRecorder()
	NewMux(&mockService{ready: true}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz ready=%d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	SetCORSOrigins([]string{"http://localhost:5173"})
	defer SetCORSOrigins(nil)
	req := httptest.NewRequest(http.MethodOptions, "/v1/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin=%q", got)
	}
}

func TestSwaggerDoc(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/v1/generate"]; !ok {
		t.Fatalf("missing /v1/generate in %v", paths)
	}
}
