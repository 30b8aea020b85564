package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gptbridge/pkg/types"
)

func newGenerateCmd(opts *Options) *cobra.Command {
	var (
		inPath    string
		outPath   string
		maxOutLen int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Complete a JSONL file of prompts",
		Long: `Reads one prompt per line (a JSON string, or an array of {"role","prompt"} turns)
and writes one {"id","answer"} record per line in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(inPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()
			inputs, err := readPrompts(in)
			if err != nil {
				return err
			}

			a, closeAdapter, err := opts.newAdapter()
			if err != nil {
				return err
			}
			defer closeAdapter()

			if !cmd.Flags().Changed("max-out-len") {
				maxOutLen = opts.cfg.MaxOutLen
			}
			outputs, err := a.Generate(cmd.Context(), inputs, maxOutLen)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(outPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := writeAnswers(out, outputs); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&inPath, "input", "i", "-", "Prompt file (JSONL); - for stdin")
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "Answer file (JSONL); - for stdout")
	cmd.Flags().IntVar(&maxOutLen, "max-out-len", 0, "Maximum output length (defaults to config max_out_len)")
	return cmd
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

// readPrompts decodes one prompt item per non-blank line.
func readPrompts(r io.Reader) ([]types.PromptItem, error) {
	var items []types.PromptItem
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var it types.PromptItem
		if err := json.Unmarshal([]byte(text), &it); err != nil {
			return nil, fmt.Errorf("input line %d: %w", line, err)
		}
		items = append(items, it)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return items, nil
}

func writeAnswers(w io.Writer, outputs []string) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i, a := range outputs {
		if err := enc.Encode(types.ResponseRecord{ID: i, Answer: a}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return bw.Flush()
}
