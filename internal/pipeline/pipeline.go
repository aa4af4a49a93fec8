// Package pipeline implements the Pipeline Executor (spec.md §4.5): naive
// splitting on literal " | " and pipefail-semantics chaining of single
// command executions.
package pipeline

import (
	"context"
	"strings"

	"tierroute/internal/contracts"
)

// SegmentExecutor executes exactly one (non-pipeline) command line. The
// Tier Router supplies this as a closure over its own executeSingle.
type SegmentExecutor func(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error)

const separator = " | "

// HasPipeline reports whether line contains the literal space-pipe-space
// separator outside of quotes. "||", "|&", and an unspaced "|" do not
// count — this is intentionally the only supported pipe syntax.
func HasPipeline(line string) bool {
	return len(splitOutsideQuotes(line, separator)) > 1
}

// Execute runs line, which may be a pipeline, threading each segment's
// stdout into the next segment's stdin. Stops at the first non-zero exit
// (pipefail semantics), per spec.md §4.5 and §8's short-circuit invariant.
func Execute(ctx context.Context, line string, opts contracts.ExecOptions, exec SegmentExecutor) (contracts.ExecutionResult, error) {
	segments := splitOutsideQuotes(line, separator)
	if len(segments) == 1 {
		res, err := exec(ctx, line, opts)
		if err != nil {
			return res, err
		}
		res.Input = line
		return res, nil
	}

	stdin := opts.Stdin
	var last contracts.ExecutionResult
	for i, seg := range segments {
		segOpts := opts
		segOpts.Stdin = stdin
		res, err := exec(ctx, strings.TrimSpace(seg), segOpts)
		if err != nil {
			return res, err
		}
		last = res
		if res.ExitCode != 0 {
			break
		}
		stdin = res.Stdout
		_ = i
	}
	last.Input = line
	return last, nil
}

// splitOutsideQuotes splits line on sep, ignoring any sep that falls
// inside single or double quotes.
func splitOutsideQuotes(line, sep string) []string {
	var segments []string
	var current strings.Builder
	var inSingle, inDouble bool
	runes := []rune(line)

	i := 0
	for i < len(runes) {
		if !inDouble && runes[i] == '\'' {
			inSingle = !inSingle
			current.WriteRune(runes[i])
			i++
			continue
		}
		if !inSingle && runes[i] == '"' {
			inDouble = !inDouble
			current.WriteRune(runes[i])
			i++
			continue
		}
		if !inSingle && !inDouble && i+len(sep) <= len(runes) && string(runes[i:i+len(sep)]) == sep {
			segments = append(segments, current.String())
			current.Reset()
			i += len(sep)
			continue
		}
		current.WriteRune(runes[i])
		i++
	}
	segments = append(segments, current.String())
	return segments
}
