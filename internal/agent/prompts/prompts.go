// Package prompts holds the review prompt profiles. A profile binds a model
// identifier to the prompt it is sent and the shape of the answer expected
// back, so backends stay interchangeable and model-specific prompt drift
// lives in exactly one place.
package prompts

import "strings"

// OutputKind tells how a profile's response must be read.
type OutputKind string

const (
	OutputJSON OutputKind = "json"
	OutputText OutputKind = "text"
)

// Default models per backend family.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGroqModel   = "deepseek-r1-distill-llama-70b"
)

// Profile is one review configuration: which model to ask, what to tell it,
// and how to parse the answer.
type Profile struct {
	Model        string
	SystemPrompt string
	Output       OutputKind
}

// Registry resolves a profile for a requested model. Unknown models borrow
// the default profile with only the model identifier swapped, so a request
// can pick any model without a registered profile for it.
type Registry struct {
	defaultProfile Profile
	byModel        map[string]Profile
}

// NewRegistry creates a registry whose default is the structured profile
// bound to defaultModel.
func NewRegistry(defaultModel string) *Registry {
	r := &Registry{
		defaultProfile: Profile{
			Model:        defaultModel,
			SystemPrompt: structuredSystemPrompt,
			Output:       OutputJSON,
		},
		byModel: make(map[string]Profile),
	}
	r.Register(r.defaultProfile)
	return r
}

// Register adds or replaces the profile for its model.
func (r *Registry) Register(p Profile) {
	r.byModel[p.Model] = p
}

// ForModel returns the profile for model, falling back to the default
// profile (with the requested model substituted) when none is registered.
// An empty model selects the default profile as-is.
func (r *Registry) ForModel(model string) Profile {
	if model == "" {
		return r.defaultProfile
	}
	if p, ok := r.byModel[model]; ok {
		return p
	}
	p := r.defaultProfile
	p.Model = model
	return p
}

// UserPrompt renders the per-file request: the path for context and the
// file's diff section verbatim.
func UserPrompt(path, diff string) string {
	var b strings.Builder
	b.WriteString("File: ")
	b.WriteString(path)
	b.WriteString("\n\n```diff\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

const structuredSystemPrompt = `You are a meticulous and highly skilled code reviewer. Analyze the given unified diff of a single file and report ONLY critical issues in these categories:
- code_quality: misleading or unclear names, convention violations that hurt readability or maintainability
- functionality_correctness: logic errors, broken edge cases, incorrect behavior introduced by the change
- performance: inefficient algorithms, redundant computation, leaks, unnecessary resource usage
- security_compliance: injection risks, improper authentication, data leaks, insecure dependencies

Respond with a single JSON object and nothing else:
{
  "summary": "overall summary of the review",
  "issues": [
    {
      "category": "code_quality|functionality_correctness|performance|security_compliance",
      "description": "detailed description of the issue",
      "suggestion": "concrete, actionable improvement",
      "severity": "low|medium|high"
    }
  ],
  "has_issues": false,
  "review_status": "passed|needs_changes|critical_issues"
}

Set has_issues to true only when the issues list is non-empty. Keep the feedback actionable; do not report stylistic nitpicks.`

// PlainTextSystemPrompt is the profile body for models that cannot be
// trusted with JSON mode; the whole answer becomes the comment text.
const PlainTextSystemPrompt = `You are a meticulous and highly skilled code reviewer. Analyze the given unified diff of a single file and report only critical issues: misleading naming, correctness bugs, performance problems, security risks. For each issue give a short description and a concrete improvement. If there is nothing critical to report, respond with an empty message.`
