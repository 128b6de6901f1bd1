// Package ui prints operator-facing status lines. One line per step, one
// glyph per outcome, nothing parsed by machines.
package ui

import (
	"fmt"
	"strings"
)

// Console writes status lines to stdout.
type Console struct{}

func NewConsole() *Console { return &Console{} }

func (c *Console) OK(format string, args ...any) {
	fmt.Printf("✅ "+format+"\n", args...)
}

func (c *Console) Warn(format string, args ...any) {
	fmt.Printf("⚠️  "+format+"\n", args...)
}

func (c *Console) Fail(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
}

func (c *Console) Info(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Banner prints a section header the way the rest of the CLI does.
func (c *Console) Banner(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("=", 80))
}
