package reviewer

import (
	"strings"

	"github.com/gavelbot/gavel/internal/model"
)

// FormatComment renders an outcome into a comment body. Dispatch is on the
// outcome kind: structured reviews get the full markdown treatment, plain
// text passes through, absent renders empty (the caller never posts it).
func FormatComment(outcome *model.ReviewOutcome) string {
	if outcome == nil {
		return ""
	}
	switch outcome.Kind {
	case model.OutcomeStructured:
		return formatStructured(outcome.Structured)
	case model.OutcomeText:
		return outcome.Text
	default:
		return ""
	}
}

var categoryTitles = []struct {
	category model.FindingCategory
	title    string
}{
	{model.CategoryCodeQuality, "📝 Code quality"},
	{model.CategoryCorrectness, "🧩 Correctness"},
	{model.CategoryPerformance, "⚡ Performance"},
	{model.CategorySecurity, "🔒 Security"},
}

func formatStructured(review *model.StructuredReview) string {
	if review == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(statusHeader(review.Status))
	b.WriteString("\n\n")
	if review.Summary != "" {
		b.WriteString(review.Summary)
		b.WriteString("\n\n")
	}

	if len(review.Findings) == 0 {
		return strings.TrimSpace(b.String())
	}

	b.WriteString("### Found issues\n\n")

	for _, ct := range categoryTitles {
		var findings []model.Finding
		for _, f := range review.Findings {
			if f.Category == ct.category {
				findings = append(findings, f)
			}
		}
		if len(findings) == 0 {
			continue
		}

		b.WriteString("#### " + ct.title + "\n\n")
		for _, f := range findings {
			b.WriteString(severityMarker(f.Severity) + " **Problem**\n")
			b.WriteString(f.Description)
			b.WriteString("\n\n")
			if f.Suggestion != "" {
				b.WriteString("💡 **Suggestion**\n")
				b.WriteString(f.Suggestion)
				b.WriteString("\n\n")
			}
		}
	}

	return strings.TrimSpace(b.String())
}

func statusHeader(status model.ReviewStatus) string {
	switch status {
	case model.StatusPassed:
		return "## ✅ Code review passed"
	case model.StatusNeedsChanges:
		return "## ⚠️ Changes requested"
	case model.StatusCriticalIssues:
		return "## 🚨 Critical issues found"
	default:
		return "## Code review"
	}
}

func severityMarker(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "🔴"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🟢"
	default:
		return "❓"
	}
}
