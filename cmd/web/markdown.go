package main

import (
	"bytes"
	"fmt"
)

// renderMarkdownToHTML converts exercise instruction markdown to HTML.
func (app *application) renderMarkdownToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := app.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
