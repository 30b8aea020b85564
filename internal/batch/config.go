package batch

import "time"

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultWorkers     = 8
	DefaultTopP        = 0
	DefaultTopK        = 1
	DefaultTemperature = 0.0001
	DefaultKillGrace   = 2 * time.Second

	sessionSubdir = "gptbridge"

	// Field names of RequestRecord.Question and ResponseRecord.Answer on the wire.
	promptTag = "question"
	answerTag = "answer"
)

// Config encapsulates all tunables for Adapter construction.
// No environment lookups happen here; callers fill it in.
type Config struct {
	// Executable is the tool binary. Required.
	Executable string
	Key        string
	Model      string
	Workers    int
	TopP       float64
	TopK       int
	// Temperature zero means DefaultTemperature; the tool rejects exactly zero.
	Temperature float64
	// TempDir is the base directory; sessions live in TempDir/gptbridge.
	TempDir string
	// MaxOutFlag, when set, forwards maxOutLen to the tool as "<flag> <n>".
	MaxOutFlag string
	// Lenient accepts a response id set that differs from the request ids,
	// returning the sorted answers as-is. The zero value fails such calls
	// with IncompleteResponseError.
	Lenient bool
	// KillGrace is the wait between SIGTERM and SIGKILL after cancellation.
	KillGrace time.Duration
	// QueriesPerSecond limits process launches; 0 disables the throttle.
	QueriesPerSecond float64
	// Env adds variables to the inherited child environment.
	Env map[string]string
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.TopP < 0 {
		c.TopP = DefaultTopP
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.KillGrace <= 0 {
		c.KillGrace = DefaultKillGrace
	}
	return c
}
