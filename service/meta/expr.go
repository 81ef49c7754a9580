package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnv replaces ${env.KEY} expressions with lookup(KEY). A key with
// characters other than letters, digits or '_' leaves its prefix literal and
// scanning resumes right after it; an unterminated expression is kept as is.
func expandEnv(value string, lookup func(string) string) string {
	var b strings.Builder
	for {
		before, rest, found := strings.Cut(value, envPrefix)
		b.WriteString(before)
		if !found {
			return b.String()
		}
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(envPrefix + rest)
			return b.String()
		}
		key := rest[:end]
		if !isEnvKey(key) {
			b.WriteString(envPrefix)
			value = rest
			continue
		}
		b.WriteString(lookup(key))
		value = rest[end+1:]
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// ExpandEnv expands ${env.KEY} expressions using the process environment.
func ExpandEnv(value string) string {
	return expandEnv(value, os.Getenv)
}
