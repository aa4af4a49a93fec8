// Package genaiworker is a sample LanguageWorkerBinding (spec.md §4.7
// "Tier 2.5 (Polyglot)") backed by a Gemini model instead of a real warm
// language runtime: it asks the model to execute the command line
// mentally and report what the interpreter would have printed. Useful as
// a drop-in worker for embedders that have no real python/ruby/node
// runtime available but still want Tier 2.5 to do something other than
// immediately fall through to the sandbox. Adapted from codeNERD's
// internal/embedding GenAIEngine, which wraps the same client for
// embedding requests instead of generation.
package genaiworker

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"tierroute/internal/contracts"
	"tierroute/internal/logging"
)

// Worker is the sample genai-backed LanguageWorkerBinding.
type Worker struct {
	client *genai.Client
	model  string
	log    interface {
		Debugw(msg string, keysAndValues ...interface{})
		Warnw(msg string, keysAndValues ...interface{})
	}
}

// New creates a Worker. model defaults to "gemini-2.0-flash" when empty.
func New(ctx context.Context, apiKey, model string) (*Worker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genaiworker: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("genaiworker: failed to create client: %w", err)
	}

	return &Worker{client: client, model: model, log: logging.For("genaiworker")}, nil
}

// Execute implements contracts.LanguageWorkerBinding. It is deliberately
// conservative about what it treats as success: the model is asked to
// reply with ONLY the program's stdout, or the single line
// "ERROR: <message>" if it cannot simulate execution, and a
// "Network error"-prefixed stderr on any client failure so the router's
// polyglot fallback trigger (spec.md §4.6 step 3) can send the command on
// to the sandbox lane instead of returning a fabricated result.
func (w *Worker) Execute(ctx context.Context, line string, language string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	w.log.Debugw("dispatching to genai worker", "language", language, "model", w.model)

	prompt := fmt.Sprintf(
		"You are a %s interpreter. Given the command line below and its stdin, "+
			"reply with EXACTLY the text the command would print to stdout and "+
			"nothing else. If it cannot be determined, reply with a single line "+
			"starting with \"ERROR: \".\n\nCommand: %s\nStdin: %s",
		language, line, opts.Stdin,
	)

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	result, err := w.client.Models.GenerateContent(ctx, w.model, contents, nil)
	if err != nil {
		w.log.Warnw("genai request failed", "error", err)
		return contracts.ExecutionResult{
			Input: line, ExitCode: 1,
			Stderr: "Network error: " + err.Error(),
		}, nil
	}

	text := strings.TrimSpace(result.Text())
	if strings.HasPrefix(text, "ERROR: ") {
		return contracts.ExecutionResult{
			Input: line, ExitCode: 1,
			Stderr: strings.TrimPrefix(text, "ERROR: ") + "\n",
		}, nil
	}

	return contracts.ExecutionResult{
		Input: line, Stdout: text + "\n", ExitCode: 0,
	}, nil
}
