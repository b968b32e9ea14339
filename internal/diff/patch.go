package diff

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ChangeKind tells how a file changed within one diff section.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindDeleted  ChangeKind = "deleted"
	KindRenamed  ChangeKind = "renamed"
)

// Hunk is one contiguous block of changes with its line-range metadata
// from the `@@ -a,b +c,d @@` header. Invariant: TargetStart >= 1 when
// TargetLength > 0.
type Hunk struct {
	SourceStart  int
	SourceLength int
	TargetStart  int
	TargetLength int
	Added        int
	Removed      int
}

// PatchedFile is the structured form of one file section.
type PatchedFile struct {
	Path         string
	Kind         ChangeKind
	Hunks        []Hunk
	TotalAdded   int
	TotalRemoved int
}

var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Filter decides which patched files are worth reviewing.
type Filter struct {
	// AllowedExtensions is the allow-list of source extensions; anything
	// else (config, binary, markup) is skipped to bound review cost.
	AllowedExtensions []string `yaml:"allowed_extensions" env:"REVIEW_FILTER_ALLOWED_EXTENSIONS"`

	// DenySubstrings marks test or generated code by path substring.
	DenySubstrings []string `yaml:"deny_substrings" env:"REVIEW_FILTER_DENY_SUBSTRINGS"`
}

// DefaultFilter returns the stock reviewable-file policy.
func DefaultFilter() Filter {
	return Filter{
		AllowedExtensions: []string{".py", ".kt", ".ts", ".tsx", ".js", ".jsx", ".go", ".java"},
		DenySubstrings:    []string{"Test", "test"},
	}
}

// Allows reports whether a file with added lines should be reviewed.
func (f Filter) Allows(pf *PatchedFile) bool {
	ext := filepath.Ext(pf.Path)
	allowed := false
	for _, e := range f.AllowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	for _, deny := range f.DenySubstrings {
		if strings.Contains(pf.Path, deny) {
			return false
		}
	}

	return pf.TotalAdded > 0
}

// Classifier parses a unified-diff blob into reviewable patched files.
type Classifier struct {
	filter Filter
}

// NewClassifier creates a classifier with the given filter policy.
func NewClassifier(filter Filter) *Classifier {
	if len(filter.AllowedExtensions) == 0 {
		filter = DefaultFilter()
	}
	return &Classifier{filter: filter}
}

// Classify parses the blob and splits reviewable files into the added and
// modified sets. Deleted files never enter either set; renamed files with
// added lines count as modified. Classification is idempotent: files that
// pass the filter keep passing it.
func (c *Classifier) Classify(raw string) (added, modified []*PatchedFile) {
	for _, pf := range Parse(raw) {
		if !c.filter.Allows(pf) {
			continue
		}
		switch pf.Kind {
		case KindAdded:
			added = append(added, pf)
		case KindModified, KindRenamed:
			modified = append(modified, pf)
		}
	}
	return added, modified
}

// Parse extracts every file section of the blob into a PatchedFile with its
// ordered hunk sequence. Malformed sections degrade to fewer results, never
// to an error: no reviewable files is a valid outcome.
func Parse(raw string) []*PatchedFile {
	var files []*PatchedFile

	for _, sec := range splitSections(raw) {
		path := sec.destPath()
		if path == "" {
			continue
		}
		pf := &PatchedFile{
			Path: path,
			Kind: sec.changeKind(),
		}
		parseHunks(pf, sec.lines)
		files = append(files, pf)
	}

	return files
}

// changeKind inspects the extended header lines before the first hunk.
func (s section) changeKind() ChangeKind {
	renamed := false
	for _, line := range s.lines {
		if strings.HasPrefix(line, "@@") {
			break
		}
		switch {
		case line == "--- /dev/null", strings.HasPrefix(line, "new file mode"):
			return KindAdded
		case line == "+++ /dev/null", strings.HasPrefix(line, "deleted file mode"):
			return KindDeleted
		case strings.HasPrefix(line, "rename from "):
			renamed = true
		}
	}
	if renamed {
		return KindRenamed
	}
	return KindModified
}

// parseHunks fills pf.Hunks from `@@` headers and counts +/- lines per hunk.
func parseHunks(pf *PatchedFile, lines []string) {
	var current *Hunk

	for _, line := range lines {
		if matches := hunkHeaderRegex.FindStringSubmatch(line); matches != nil {
			pf.Hunks = append(pf.Hunks, Hunk{
				SourceStart:  atoiDefault(matches[1], 0),
				SourceLength: atoiDefault(matches[2], 1),
				TargetStart:  atoiDefault(matches[3], 0),
				TargetLength: atoiDefault(matches[4], 1),
			})
			current = &pf.Hunks[len(pf.Hunks)-1]
			continue
		}
		if current == nil || len(line) == 0 {
			continue
		}
		switch {
		case line[0] == '+' && !strings.HasPrefix(line, "+++ "):
			current.Added++
			pf.TotalAdded++
		case line[0] == '-' && !strings.HasPrefix(line, "--- "):
			current.Removed++
			pf.TotalRemoved++
		}
	}
}

// atoiDefault parses a hunk-header length field, which git omits when it
// equals the default.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
