package batch

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gptbridge/pkg/types"
)

// writeRequests writes one RequestRecord per line; id is the slice index.
func writeRequests(path string, questions []string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create request file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close request file: %w", cerr)
		}
	}()
	w := bufio.NewWriter(f)
	if err := encodeRequests(w, questions); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write request file: %w", err)
	}
	return nil
}

func encodeRequests(w io.Writer, questions []string) error {
	enc := json.NewEncoder(w)
	// Keep <, > and & literal; non-ASCII is already emitted as UTF-8.
	enc.SetEscapeHTML(false)
	for i, q := range questions {
		if err := enc.Encode(types.RequestRecord{ID: i, Question: q}); err != nil {
			return fmt.Errorf("encode request %d: %w", i, err)
		}
	}
	return nil
}

// wireResponse uses pointers so absent fields can be told apart from zero values.
type wireResponse struct {
	ID     *int    `json:"id"`
	Answer *string `json:"answer"`
}

// readResponses parses every non-blank line of the response file.
func readResponses(path string) ([]types.ResponseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open response file: %w", err)
	}
	defer f.Close()
	return decodeResponses(f, path)
}

func decodeResponses(r io.Reader, name string) ([]types.ResponseRecord, error) {
	br := bufio.NewReader(r)
	var out []types.ResponseRecord
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			if l := strings.TrimSpace(line); l != "" {
				rec, perr := parseResponse(l)
				if perr != nil {
					return nil, &MalformedResponseError{Path: name, Line: lineNo, Reason: perr.Error()}
				}
				out = append(out, rec)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("read response file: %w", err)
		}
	}
}

func parseResponse(line string) (types.ResponseRecord, error) {
	var w wireResponse
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return types.ResponseRecord{}, err
	}
	if w.ID == nil {
		return types.ResponseRecord{}, errors.New(`missing "id"`)
	}
	if w.Answer == nil {
		return types.ResponseRecord{}, errors.New(`missing "answer"`)
	}
	return types.ResponseRecord{ID: *w.ID, Answer: *w.Answer}, nil
}
