// Package strutil contains small string helpers used when turning byte
// streams into values.
package strutil

// ChopLineEnding removes one trailing "\n" or "\r\n" from s.
func ChopLineEnding(s string) string {
	if n := len(s); n >= 2 && s[n-2:] == "\r\n" {
		return s[:n-2]
	} else if n >= 1 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}

// SplitLines splits s into lines, dropping the line ending of each line. A
// trailing line ending does not produce an empty last line.
func SplitLines(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := 0
		for i < len(s) && s[i] != '\n' {
			i++
		}
		if i < len(s) {
			i++
		}
		lines = append(lines, ChopLineEnding(s[:i]))
		s = s[i:]
	}
	return lines
}
