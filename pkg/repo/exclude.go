package repo

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Excluder decides which directory entries BuildTree leaves out of a
// snapshot. The storage root is always excluded, at any depth; further
// patterns use a gitignore-like syntax:
//
//	name        match the base name anywhere
//	dir/name    match the path relative to the walk root
//	**/name     globstar over directories
//	name/       match directories only
//	!name       re-include a previously excluded entry
//
// The last matching pattern wins.
type Excluder struct {
	patterns []excludePattern
}

type excludePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // pattern contains a slash, so match against full path
	regex    *regexp.Regexp
}

// NewExcluder creates an Excluder that always skips storageDir.
func NewExcluder(storageDir string, patterns []string) *Excluder {
	ex := &Excluder{}
	ex.patterns = append(ex.patterns, excludePattern{pattern: storageDir})
	ex.Add(patterns...)
	return ex
}

// Add appends patterns. Empty lines and '#' comments are skipped.
func (ex *Excluder) Add(patterns ...string) {
	for _, line := range patterns {
		if p := parseExcludeLine(line); p != nil {
			ex.patterns = append(ex.patterns, *p)
		}
	}
}

func parseExcludeLine(line string) *excludePattern {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &excludePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}
	p.hasSlash = strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// Excluded reports whether the entry at rel (relative to the walk root,
// either separator) should be skipped.
func (ex *Excluder) Excluded(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)

	excluded := false
	for _, p := range ex.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		target := base
		if p.hasSlash {
			target = rel
		}
		if p.match(target) {
			excluded = !p.negated
		}
	}
	return excluded
}

func (p *excludePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	if !strings.ContainsAny(p.pattern, "*?[") {
		return p.pattern == target
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// Globstar directory segment: match zero or more path segments.
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
			continue
		}
		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}
		if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteString("$")
	return b.String()
}
