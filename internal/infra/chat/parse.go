package chat

import (
	"strings"
)

// ParseCommandLine splits "/name@bot arg1 arg2" into a lower-cased name without
// the leading slash or bot suffix, and its whitespace separated args.
func ParseCommandLine(raw string) (string, []string, bool) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", nil, false
	}

	return name, fields[1:], true
}

// NormalizeName accepts "report", "/report" and "/report@my_bot".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name
}
