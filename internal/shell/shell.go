// Package shell renders command lines for the POSIX shell sessions the
// browser host runs.
package shell

import "strings"

const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:,+@%"

// Quote returns arg quoted for a POSIX shell; plain words are left as is.
func Quote(arg string) string {
	if arg == "" {
		return "''"
	}
	if strings.Trim(arg, safeChars) == "" {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// Join quotes and joins command arguments.
func Join(args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}

// InDir prefixes command with a change of directory.
func InDir(dir, command string) string {
	if dir == "" {
		return command
	}
	return "cd " + Quote(dir) + " && " + command
}
