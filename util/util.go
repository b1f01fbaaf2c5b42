// Package util holds small helpers shared by the commands.
package util

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anisan-cli/playtrack/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

// Quantify formats count with the singular or plural noun.
func Quantify(count int, singular, plural string) string {
	noun := plural
	if count == 1 {
		noun = singular
	}

	return fmt.Sprintf("%d %s", count, noun)
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// PrintErasable writes msg on the current line. The returned func blanks it again.
func PrintErasable(msg string) (erase func()) {
	fmt.Fprint(os.Stdout, "\r"+msg)

	return func() {
		fmt.Fprint(os.Stdout, "\r"+strings.Repeat(" ", utf8.RuneCountInString(msg))+"\r")
	}
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsInteractive reports whether prompts can be answered.
func IsInteractive() bool {
	return IsTerminal() && term.IsTerminal(int(os.Stdin.Fd()))
}

// Max returns the largest item, or the zero value when there are none.
func Max[T constraints.Ordered](items ...T) T {
	var largest T
	for i, item := range items {
		if i == 0 || item > largest {
			largest = item
		}
	}

	return largest
}

// Delete removes path, recursing into directories.
func Delete(path string) error {
	fs := filesystem.API()

	info, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fs.RemoveAll(path)
	}

	return fs.Remove(path)
}
