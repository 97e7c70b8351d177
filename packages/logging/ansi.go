package logging

import "regexp"

// ansiPattern matches CSI escape sequences (colors, cursor movement) and
// single-character OSC/ESC sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b[@-Z\\-_]`)

// StripANSI removes color and control escape sequences from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
