// Package ui renders progress and result output for the command line.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	blueColor    = color.New(color.FgBlue)
	yellowColor  = color.New(color.FgYellow)
)

// Header prints a banner with the text centered between rule lines.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(center(text, headerWidth))
	headerColor.Println(line)
}

// Step prints one numbered pipeline step.
func Step(current, total int, text string) {
	stepColor.Printf("[%d/%d] ", current, total)
	fmt.Println(text)
}

// Success prints a green confirmation line.
func Success(text string) {
	successColor.Println("✓ " + text)
}

// Info prints a plain informational line.
func Info(text string) {
	fmt.Println(text)
}

// Warning prints a yellow warning line.
func Warning(text string) {
	warningColor.Println("! " + text)
}

// Error prints a red error line.
func Error(text string) {
	errorColor.Println("✗ " + text)
}

// BlueText returns the text wrapped in blue.
func BlueText(text string) string {
	return blueColor.Sprint(text)
}

// YellowText returns the text wrapped in yellow.
func YellowText(text string) string {
	return yellowColor.Sprint(text)
}

// center left-pads text so it sits in the middle of width. Text wider than
// width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}
