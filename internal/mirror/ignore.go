package mirror

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// IgnoreFileName is the ignore list read from the root of a mirrored tree.
const IgnoreFileName = ".assetignore"

// LoadIgnorePatterns reads one glob per line from path. Blank lines and
// lines starting with # are dropped. A missing file yields no patterns.
func LoadIgnorePatterns(path string) ([]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open ignore file %s", path)
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read ignore file %s", path)
	}
	return patterns, nil
}

// Matcher tests slash-separated relative paths against shell globs.
// No separators are declared, so * also matches across directories.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// NewMatcher compiles patterns once. A pattern that is not a valid glob
// is matched literally.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{patterns: patterns, globs: make([]glob.Glob, 0, len(patterns))}
	for _, pattern := range patterns {
		m.globs = append(m.globs, compilePattern(pattern))
	}
	return m
}

func compilePattern(pattern string) glob.Glob {
	g, err := glob.Compile(translatePattern(pattern))
	if err != nil {
		return glob.MustCompile(glob.QuoteMeta(pattern))
	}
	return g
}

// translatePattern rewrites a shell glob into gobwas syntax. Backslash,
// braces, commas and stray brackets are literal in shell globs, and a [
// without a closing ] is matched as itself.
func translatePattern(pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*', '?':
			b.WriteRune(r)
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(string(runes[i : end+1]))
			i = end
		case '\\', ']', '{', '}', ',':
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// classEnd returns the index of the ] closing the class opened at start,
// or -1. A ] right after [ or [! belongs to the class.
func classEnd(runes []rune, start int) int {
	j := start + 1
	if j < len(runes) && runes[j] == '!' {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for ; j < len(runes); j++ {
		if runes[j] == ']' {
			return j
		}
	}
	return -1
}

// Match reports whether relativePath matches any pattern.
func (m *Matcher) Match(relativePath string) bool {
	if m == nil {
		return false
	}
	p := filepath.ToSlash(relativePath)
	for _, g := range m.globs {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether path, taken relative to baseDir, matches.
func (m *Matcher) ShouldIgnore(path string, baseDir string) bool {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return false
	}
	return m.Match(rel)
}

// Patterns returns the patterns the matcher was built from.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// ShouldIgnore compiles patterns and tests a single path.
func ShouldIgnore(path string, patterns []string, baseDir string) bool {
	return NewMatcher(patterns).ShouldIgnore(path, baseDir)
}
