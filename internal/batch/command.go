package batch

import (
	"strconv"
)

// CommandSpec names every flag passed to the tool for one session.
// Args renders it right before launch, so no argument position is patched in place.
type CommandSpec struct {
	Executable  string
	Key         string
	Input       string
	Output      string
	Model       string
	PromptTag   string
	AnswerTag   string
	Workers     int
	TopP        float64
	TopK        int
	Temperature float64
	// MaxOutFlag and MaxOutLen are appended only when both are set.
	MaxOutFlag string
	MaxOutLen  int
}

// Args returns the argument list, excluding the executable itself.
func (c CommandSpec) Args() []string {
	args := []string{
		"-key", c.Key,
		"-input", c.Input,
		"-output", c.Output,
		"-model", c.Model,
		"-promptTag", c.PromptTag,
		"-answerTag", c.AnswerTag,
		"-worker", strconv.Itoa(c.Workers),
		"-topP", formatFloat(c.TopP),
		"-topK", strconv.Itoa(c.TopK),
		"-temperature", formatFloat(c.Temperature),
	}
	if c.MaxOutFlag != "" && c.MaxOutLen > 0 {
		args = append(args, c.MaxOutFlag, strconv.Itoa(c.MaxOutLen))
	}
	return args
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// commandFor builds the spec for one session from the adapter config.
func commandFor(cfg Config, s Session, maxOutLen int) CommandSpec {
	return CommandSpec{
		Executable:  cfg.Executable,
		Key:         cfg.Key,
		Input:       s.RequestPath,
		Output:      s.ResponsePath,
		Model:       cfg.Model,
		PromptTag:   promptTag,
		AnswerTag:   answerTag,
		Workers:     cfg.Workers,
		TopP:        cfg.TopP,
		TopK:        cfg.TopK,
		Temperature: cfg.Temperature,
		MaxOutFlag:  cfg.MaxOutFlag,
		MaxOutLen:   maxOutLen,
	}
}
