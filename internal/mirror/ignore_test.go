package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadIgnorePatterns(t *testing.T) {
	patterns, err := LoadIgnorePatterns(filepath.Join("testdata", IgnoreFileName))
	require.NoError(t, err)
	require.Equal(t, []string{
		"*.psd",
		".DS_Store",
		"*.tmp",
		"raw/*",
		"sprite?.png",
		"[Tt]humbs.db",
		".assetignore",
	}, patterns)
}

func TestLoadIgnorePatternsMissingFile(t *testing.T) {
	patterns, err := LoadIgnorePatterns(filepath.Join(t.TempDir(), IgnoreFileName))
	require.NoError(t, err)
	require.Empty(t, patterns)
}

func TestLoadIgnorePatternsDirectory(t *testing.T) {
	dir := t.TempDir()
	ignorePath := filepath.Join(dir, IgnoreFileName)
	require.NoError(t, os.Mkdir(ignorePath, 0o755))

	_, err := LoadIgnorePatterns(ignorePath)
	require.Error(t, err)
}

func TestMatcher(t *testing.T) {
	patterns, err := LoadIgnorePatterns(filepath.Join("testdata", IgnoreFileName))
	require.NoError(t, err)
	m := NewMatcher(patterns)

	cases := []struct {
		name   string
		path   string
		expect bool
	}{
		{"TopLevelExtension", "hero.psd", true},
		{"StarCrossesDirectories", "art/layers/hero.psd", true},
		{"ExactName", ".DS_Store", true},
		{"ExactNameNested", "sub/.DS_Store", false},
		{"TrimmedPattern", "cache/build.tmp", true},
		{"DirectoryPrefix", "raw/a.png", true},
		{"DirectoryPrefixDeep", "raw/deep/a.png", true},
		{"QuestionMarkOne", "sprite1.png", true},
		{"QuestionMarkTwo", "sprite10.png", false},
		{"ClassUpper", "Thumbs.db", true},
		{"ClassLower", "thumbs.db", true},
		{"ClassMiss", "THUMBS.db", false},
		{"IgnoreFileItself", ".assetignore", true},
		{"RegularFile", "images/logo.png", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, m.Match(tc.path), "Match(%q)", tc.path)
		})
	}
}

func TestMatcherGlobSyntax(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		path    string
		expect  bool
	}{
		{"NegatedClassHit", "[!a]x", "bx", true},
		{"NegatedClassMiss", "[!a]x", "ax", false},
		{"Range", "level[0-9].json", "level7.json", true},
		{"RangeMiss", "level[0-9].json", "levelA.json", false},
		{"BracesAreLiteral", "{a,b}.txt", "{a,b}.txt", true},
		{"BracesDoNotExpand", "{a,b}.txt", "a.txt", false},
		{"CaseSensitive", "*.PNG", "logo.png", false},
		{"UnclosedBracketIsLiteral", "*[abc", "x[abc", true},
		{"UnclosedBracketKeepsStar", "*[abc", "deep/dir/x[abc", true},
		{"UnclosedBracketNeedsBracket", "*[abc", "xa", false},
		{"BackslashIsLiteral", `a\b.txt`, `a\b.txt`, true},
		{"BackslashDoesNotEscape", `a\*.txt`, "a*.txt", false},
		{"StrayCloseBracket", "]x*", "]xy", true},
		{"CommaOutsideBraces", "a,b.txt", "a,b.txt", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, NewMatcher([]string{tc.pattern}).Match(tc.path))
		})
	}
}

func TestShouldIgnoreUsesPathRelativeToBase(t *testing.T) {
	base := filepath.Join("project", "assets")
	patterns := []string{"fonts/*.ttf"}

	require.True(t, ShouldIgnore(filepath.Join(base, "fonts", "mono.ttf"), patterns, base))
	require.False(t, ShouldIgnore(filepath.Join(base, "mono.ttf"), patterns, base))
	require.False(t, ShouldIgnore(filepath.Join(base, "fonts", "mono.ttf"), nil, base))
}

func TestNilMatcherMatchesNothing(t *testing.T) {
	var m *Matcher
	require.False(t, m.Match("anything"))
	require.Nil(t, m.Patterns())
}
