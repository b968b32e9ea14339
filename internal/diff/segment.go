package diff

import (
	"strings"
)

const sectionMarker = "diff --git "

// Segment splits one unified-diff blob into per-file sections keyed by
// destination path. Sections are recognized by a boundary scan over lines,
// not by a path-backreferencing pattern: rename sections and paths with
// regex metacharacters segment the same as everything else.
//
// Zero sections yield an empty map. Duplicate destination paths must not
// occur in valid input; if they do, the last section wins.
func Segment(raw string) map[string]string {
	byFile := make(map[string]string)

	for _, sec := range splitSections(raw) {
		path := sec.destPath()
		if path == "" {
			continue
		}
		byFile[path] = strings.Trim(strings.Join(sec.lines, "\n"), "\n")
	}

	return byFile
}

// section is one `diff --git` block, header line included.
type section struct {
	lines []string
}

// splitSections cuts the blob at every `diff --git ` line. Content before
// the first marker (if any) is not part of any file section and is dropped.
func splitSections(raw string) []section {
	var (
		sections []section
		current  *section
	)

	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, sectionMarker) {
			sections = append(sections, section{})
			current = &sections[len(sections)-1]
		}
		if current == nil {
			continue
		}
		current.lines = append(current.lines, line)
	}

	return sections
}

// destPath resolves the destination path of a section. The `+++ b/` line is
// authoritative when present; deleted files and bare renames fall back to
// the rename target or the section header.
func (s section) destPath() string {
	for _, line := range s.lines {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
	}
	for _, line := range s.lines {
		if strings.HasPrefix(line, "rename to ") {
			return strings.TrimPrefix(line, "rename to ")
		}
	}
	if len(s.lines) == 0 {
		return ""
	}
	return destPathFromHeader(s.lines[0])
}

// destPathFromHeader parses `diff --git a/<old> b/<new>` structurally:
// the destination starts after the last ` b/` in the line, which also
// holds when old and new paths differ.
func destPathFromHeader(header string) string {
	rest := strings.TrimPrefix(header, sectionMarker)
	idx := strings.LastIndex(rest, " b/")
	if idx < 0 {
		return ""
	}
	return rest[idx+len(" b/"):]
}
