package scanner

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// ignoreRule is one compiled ignore pattern, in one of three shapes:
// directory-component match, glob-as-anchored-regex, or literal substring.
type ignoreRule struct {
	dirName string         // shape (i): trailing `/` stripped, matched against any path component
	re      *regexp.Regexp // shape (ii): compiled glob
	reFull  bool           // shape (ii): re matches the full path rather than one component
	literal string         // shape (iii)
	litFull bool           // shape (iii): literal matched against the full path rather than one component
}

// IgnoreSet is an ordered list of compiled ignore rules; a path is ignored
// if any rule matches.
type IgnoreSet struct {
	rules []ignoreRule
}

// NewIgnoreSet compiles a list of raw ignore patterns per spec.md §4.4.
func NewIgnoreSet(patterns []string) (*IgnoreSet, error) {
	set := &IgnoreSet{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		rule, err := compileIgnoreRule(p)
		if err != nil {
			return nil, err
		}
		set.rules = append(set.rules, rule)
	}
	return set, nil
}

// LoadIgnoreFile reads one pattern per line from path, skipping blank lines
// and `#`-comments. A missing file is not an error: it compiles to an empty
// set, matching nothing.
func LoadIgnoreFile(path string) (*IgnoreSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &IgnoreSet{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewIgnoreSet(patterns)
}

func compileIgnoreRule(p string) (ignoreRule, error) {
	if strings.HasSuffix(p, "/") {
		return ignoreRule{dirName: strings.TrimSuffix(p, "/")}, nil
	}

	if strings.ContainsAny(p, "*?") {
		hasSlash := strings.Contains(p, "/")
		src := globToAnchoredRegex(p)
		re, err := regexp.Compile(src)
		if err != nil {
			return ignoreRule{}, err
		}
		return ignoreRule{re: re, reFull: hasSlash}, nil
	}

	return ignoreRule{literal: p, litFull: strings.Contains(p, "/")}, nil
}

// globToAnchoredRegex compiles a `*`/`?` glob into an anchored regex: `*`
// becomes `[^/]*`, `?` becomes `[^/]`, every other regex metacharacter is
// escaped literally.
func globToAnchoredRegex(glob string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

// Matches reports whether relPath (slash-separated, relative to the scan
// root) is ignored by any rule in the set.
func (s *IgnoreSet) Matches(relPath string) bool {
	if s == nil {
		return false
	}
	components := strings.Split(relPath, "/")

	for _, r := range s.rules {
		switch {
		case r.dirName != "":
			for _, c := range components {
				if c == r.dirName {
					return true
				}
			}
		case r.re != nil:
			if r.reFull {
				if r.re.MatchString(relPath) {
					return true
				}
			} else {
				for _, c := range components {
					if r.re.MatchString(c) {
						return true
					}
				}
			}
		case r.literal != "":
			if r.litFull {
				if strings.Contains(relPath, r.literal) {
					return true
				}
			} else {
				for _, c := range components {
					if strings.Contains(c, r.literal) {
						return true
					}
				}
			}
		}
	}
	return false
}
