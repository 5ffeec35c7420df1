package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStyles_RenderText(t *testing.T) {
	// Given: default styles
	styles := DefaultStyles()

	// Then: every style keeps the text
	for _, s := range []string{
		styles.Header.Render("Header"),
		styles.Active.Render("●"),
		styles.Dim.Render("○"),
		styles.Warning.Render("warn"),
	} {
		assert.NotEmpty(t, s)
	}
	assert.Contains(t, styles.Active.Render("●"), "●")
}

func TestGetStyles_WithNoColor(t *testing.T) {
	// When: getting styles with noColor=true
	styles := GetStyles(true)

	// Then: rendering is a no-op
	assert.Equal(t, "test", styles.Success.Render("test"))
	assert.Equal(t, "test", styles.Header.Render("test"))
}

func TestGetStyles_WithColor(t *testing.T) {
	// When: getting styles with noColor=false
	styles := GetStyles(false)

	// Then: text is present (ANSI codes depend on the terminal)
	assert.Contains(t, styles.Success.Render("test"), "test")
}
