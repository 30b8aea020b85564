package batch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeRequestsOneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeRequests(&buf, []string{"héllo <b>&", "a\nb\nc"}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "{\"id\":0,\"question\":\"héllo <b>&\"}\n{\"id\":1,\"question\":\"a\\nb\\nc\"}\n"
	if buf.String() != want {
		t.Fatalf("got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteRequestsTruncates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.jsonl")
	if err := os.WriteFile(p, []byte("stale stale stale stale\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeRequests(p, []string{"x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "{\"id\":0,\"question\":\"x\"}\n" {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestDecodeResponses(t *testing.T) {
	in := "{\"id\":2,\"answer\":\"c\"}\n\n{\"id\":0,\"answer\":\"\"}\r\n{\"id\":1,\"answer\":\"b\",\"extra\":1}"
	recs, err := decodeResponses(strings.NewReader(in), "answers.jsonl")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 3 || recs[0].ID != 2 || recs[1].Answer != "" || recs[2].Answer != "b" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestDecodeResponsesMalformed(t *testing.T) {
	cases := map[string]int{
		"{\"id\":0,\"answer\":\"a\"}\nnope\n":      2,
		"{\"answer\":\"a\"}\n":                      1,
		"{\"id\":0}\n":                              1,
		"{\"id\":\"0\",\"answer\":\"a\"}\n":         1,
		"{\"id\":0,\"answer\":\"a\"}\n\n{\"id\":1\n": 3,
	}
	for in, line := range cases {
		_, err := decodeResponses(strings.NewReader(in), "r")
		me, ok := err.(*MalformedResponseError)
		if !ok {
			t.Fatalf("%q: expected MalformedResponseError, got %v", in, err)
		}
		if me.Line != line {
			t.Fatalf("%q: line=%d want %d", in, me.Line, line)
		}
	}
}

func TestReadResponsesMissingFile(t *testing.T) {
	_, err := readResponses(filepath.Join(t.TempDir(), "nope.jsonl"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
