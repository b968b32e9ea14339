package reviewer_test

import (
	"strings"
	"testing"

	"github.com/gavelbot/gavel/internal/model"
	"github.com/gavelbot/gavel/internal/reviewer"
	"github.com/stretchr/testify/assert"
)

func TestFormatCommentStructured(t *testing.T) {
	outcome := &model.ReviewOutcome{
		Kind: model.OutcomeStructured,
		Structured: &model.StructuredReview{
			Summary:   "Two problems worth fixing.",
			HasIssues: true,
			Status:    model.StatusCriticalIssues,
			Findings: []model.Finding{
				{Category: model.CategorySecurity, Description: "SQL built by concatenation", Suggestion: "use placeholders", Severity: model.SeverityHigh},
				{Category: model.CategoryCodeQuality, Description: "x2 is meaningless", Suggestion: "rename to retryCount", Severity: model.SeverityLow},
			},
		},
	}

	body := reviewer.FormatComment(outcome)

	assert.Contains(t, body, "## 🚨 Critical issues found")
	assert.Contains(t, body, "Two problems worth fixing.")
	assert.Contains(t, body, "### Found issues")
	assert.Contains(t, body, "#### 🔒 Security")
	assert.Contains(t, body, "🔴 **Problem**")
	assert.Contains(t, body, "SQL built by concatenation")
	assert.Contains(t, body, "💡 **Suggestion**")
	assert.Contains(t, body, "use placeholders")
	assert.Contains(t, body, "#### 📝 Code quality")
	assert.Contains(t, body, "🟢 **Problem**")

	// Code quality comes after security in the fixed category order.
	assert.Less(t, strings.Index(body, "#### 🔒 Security"), strings.Index(body, "#### 📝 Code quality"))
}

func TestFormatCommentStatusHeaders(t *testing.T) {
	for status, header := range map[model.ReviewStatus]string{
		model.StatusPassed:         "## ✅ Code review passed",
		model.StatusNeedsChanges:   "## ⚠️ Changes requested",
		model.StatusCriticalIssues: "## 🚨 Critical issues found",
	} {
		outcome := &model.ReviewOutcome{
			Kind:       model.OutcomeStructured,
			Structured: &model.StructuredReview{Status: status},
		}
		assert.Contains(t, reviewer.FormatComment(outcome), header)
	}
}

func TestFormatCommentText(t *testing.T) {
	outcome := &model.ReviewOutcome{Kind: model.OutcomeText, Text: "plain feedback"}
	assert.Equal(t, "plain feedback", reviewer.FormatComment(outcome))
}

func TestFormatCommentAbsent(t *testing.T) {
	assert.Empty(t, reviewer.FormatComment(model.AbsentOutcome()))
	assert.Empty(t, reviewer.FormatComment(nil))
}

