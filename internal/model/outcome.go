package model

// OutcomeKind tags the shape of a review generator response.
type OutcomeKind string

const (
	OutcomeAbsent     OutcomeKind = "absent"
	OutcomeStructured OutcomeKind = "structured"
	OutcomeText       OutcomeKind = "text"
)

// ReviewOutcome is the tagged union returned by the review generator.
// Exactly one of Structured/Text is meaningful, selected by Kind;
// formatting must dispatch on Kind, never on the runtime shape.
type ReviewOutcome struct {
	Kind       OutcomeKind
	Structured *StructuredReview
	Text       string
}

// HasFindings reports whether the outcome should produce a comment.
func (o *ReviewOutcome) HasFindings() bool {
	if o == nil {
		return false
	}
	switch o.Kind {
	case OutcomeStructured:
		return o.Structured != nil && o.Structured.HasIssues
	case OutcomeText:
		return o.Text != ""
	default:
		return false
	}
}

// AbsentOutcome is the canonical no-issues result.
func AbsentOutcome() *ReviewOutcome {
	return &ReviewOutcome{Kind: OutcomeAbsent}
}

// StructuredReview is the schema the structured prompt profiles ask for.
type StructuredReview struct {
	Summary   string       `json:"summary"`
	Findings  []Finding    `json:"issues"`
	HasIssues bool         `json:"has_issues"`
	Status    ReviewStatus `json:"review_status"`
}

// Finding is one reviewer-identified issue.
type Finding struct {
	Category    FindingCategory `json:"category"`
	Description string          `json:"description"`
	Suggestion  string          `json:"suggestion"`
	Severity    Severity        `json:"severity"`
}

// FindingCategory aligns with the review guideline steps of the prompt.
type FindingCategory string

const (
	CategoryCodeQuality FindingCategory = "code_quality"
	CategoryCorrectness FindingCategory = "functionality_correctness"
	CategoryPerformance FindingCategory = "performance"
	CategorySecurity    FindingCategory = "security_compliance"
)

// Severity defines the issue severity level
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ReviewStatus is the overall verdict of one file review.
type ReviewStatus string

const (
	StatusPassed         ReviewStatus = "passed"
	StatusNeedsChanges   ReviewStatus = "needs_changes"
	StatusCriticalIssues ReviewStatus = "critical_issues"
)

// ReviewResult aggregates what happened during one review workflow.
type ReviewResult struct {
	IsSuccess       bool
	ProcessedFiles  int
	CommentsCreated int
	SkippedFiles    int
	Errors          []error
}
