package tui

import "github.com/atotto/clipboard"

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

// SystemClipboard copies to the desktop clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error { return clipboardWriteAll(text) }
