package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"gptbridge/internal/batch"
	"gptbridge/pkg/types"
)

func TestE2E_GenerateInOrder(t *testing.T) {
	s := newStack(t, "echo")
	body := `{"inputs":["one",[{"role":"user","prompt":"a"},{"role":"assistant","prompt":"b"}],"three"]}`
	resp, b := postJSON(t, s.srv.URL+"/v1/generate", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, b)
	}
	var out types.GenerateResponse
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"m:one", "m:a\nb", "m:three"}
	if fmt.Sprint(out.Outputs) != fmt.Sprint(want) {
		t.Fatalf("outputs %q, want %q", out.Outputs, want)
	}

	recs, err := s.journal.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	if len(recs) != 1 || recs[0].Status != batch.StatusOK || recs[0].Prompts != 3 {
		t.Fatalf("unexpected journal: %+v", recs)
	}
	for _, p := range []string{recs[0].RequestPath, recs[0].ResponsePath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("session file %s not kept: %v", p, err)
		}
	}
}

func TestE2E_ToolFailureIs502(t *testing.T) {
	s := newStack(t, "fail")
	resp, b := postJSON(t, s.srv.URL+"/v1/generate", `{"inputs":["x"]}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d, want 502: %s", resp.StatusCode, b)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(b, &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != http.StatusBadGateway || !strings.Contains(er.Error, "tool exploded") {
		t.Fatalf("unexpected error payload: %+v", er)
	}

	_, sb := httpGet(t, s.srv.URL+"/status")
	var st types.StatusResponse
	if err := json.Unmarshal(sb, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Failed != 1 || st.Completed != 0 || st.LastError == "" {
		t.Fatalf("unexpected status: %+v", st)
	}
	recs, _ := s.journal.List(context.Background(), 0)
	if len(recs) != 1 || recs[0].Status != batch.StatusFailed {
		t.Fatalf("failure not journaled: %+v", recs)
	}
}

func TestE2E_InvalidPromptIs400(t *testing.T) {
	s := newStack(t, "echo")
	resp, b := postJSON(t, s.srv.URL+"/v1/generate", `{"inputs":["ok",{"prompt":"x"}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400: %s", resp.StatusCode, b)
	}
	recs, _ := s.journal.List(context.Background(), 0)
	if len(recs) != 0 {
		t.Fatalf("rejected request reached the tool: %+v", recs)
	}
}

func TestE2E_ConcurrentRequests(t *testing.T) {
	s := newStack(t, "echo")
	const n = 6
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("q%d", i)
			resp, err := http.Post(s.srv.URL+"/v1/generate", "application/json", strings.NewReader(`{"inputs":["`+q+`"]}`))
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			var out types.GenerateResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				errs <- err
				return
			}
			if len(out.Outputs) != 1 || out.Outputs[0] != "m:"+q {
				errs <- fmt.Errorf("request %d got %q", i, out.Outputs)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	recs, err := s.journal.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	if len(recs) != n {
		t.Fatalf("want %d journal rows, got %d", n, len(recs))
	}
	seen := map[string]bool{}
	for _, r := range recs {
		if seen[r.RequestPath] {
			t.Fatalf("request path reused: %s", r.RequestPath)
		}
		seen[r.RequestPath] = true
	}
}

func TestE2E_MetricsExposeBatchCalls(t *testing.T) {
	s := newStack(t, "echo")
	postJSON(t, s.srv.URL+"/v1/generate", `{"inputs":["x"]}`)
	_, b := httpGet(t, s.srv.URL+"/metrics")
	for _, name := range []string{"gptbridge_batch_calls_total", "gptbridge_batch_prompts_total", "gptbridge_http_requests_total"} {
		if !strings.Contains(string(b), name) {
			t.Errorf("metrics missing %s", name)
		}
	}
}
