// Package astgrep drives an external structural-matching tool as an
// alternative site extractor. The in-process scanner in pyscan is the
// default; delegating to a real tree-sitter-backed matcher is useful when
// plugin sources use formatting the delimiter scanner was not written for.
//
// Any failure of the helper, including a timeout or output the runner
// cannot parse, is a STRUCTURAL_MATCH_TOOL_FAILURE: the caller falls back
// to dynamic discovery, it never hangs or guesses.
package astgrep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trellis-data/pluginkit/discerr"
	"github.com/trellis-data/pluginkit/exec"
)

// Match is one structural match in the target file, with byte offsets
// into the file content.
type Match struct {
	Text  string
	Start int
	End   int
}

// Matcher finds structural matches of a pattern in a source file.
type Matcher interface {
	Match(ctx context.Context, pattern, file string) ([]Match, error)
}

// CallPattern builds the match pattern for invocations of one descriptor
// constructor, any argument list included.
func CallPattern(constructor string) string {
	return constructor + "($$$ARGS)"
}

// DefaultTimeout bounds one helper invocation when the caller does not
// configure its own limit.
const DefaultTimeout = 10 * time.Second

// CLI runs the ast-grep binary once per Match call.
type CLI struct {
	// Binary is the helper executable; "ast-grep" on PATH when empty.
	Binary string

	// Timeout bounds one invocation; DefaultTimeout when zero.
	Timeout time.Duration
}

// matchJSON mirrors the helper's --json output for the fields the engine
// needs.
type matchJSON struct {
	Text  string `json:"text"`
	Range struct {
		ByteOffset struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"byteOffset"`
	} `json:"range"`
}

// Match invokes the helper with the given pattern against one file and
// returns the matched spans in file order.
func (c *CLI) Match(ctx context.Context, pattern, file string) ([]Match, error) {
	binary := c.Binary
	if binary == "" {
		binary = "ast-grep"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	result, err := exec.Run(ctx, exec.Config{
		Command: binary,
		Args:    []string{"run", "--pattern", pattern, "--lang", "python", "--json", file},
		Timeout: timeout,
	})
	if err != nil {
		return nil, discerr.New("", "match", discerr.CodeStructuralMatchToolFailure,
			"structural match helper did not run").WithCause(err)
	}
	if result.ExitCode != 0 {
		return nil, discerr.New("", "match", discerr.CodeStructuralMatchToolFailure,
			fmt.Sprintf("structural match helper exited with status %d", result.ExitCode)).
			WithDetails(map[string]any{"stderr": string(result.Stderr)})
	}

	var raw []matchJSON
	if err := json.Unmarshal(result.Stdout, &raw); err != nil {
		return nil, discerr.New("", "match", discerr.CodeStructuralMatchToolFailure,
			"structural match helper produced malformed output").WithCause(err)
	}

	matches := make([]Match, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, Match{
			Text:  m.Text,
			Start: m.Range.ByteOffset.Start,
			End:   m.Range.ByteOffset.End,
		})
	}
	return matches, nil
}
