package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderText(t *testing.T) {
	t.Run("keeps line breaks", func(t *testing.T) {
		out := RenderText("day one\r\nday two")
		assert.Contains(t, out, "day one<br")
		assert.Contains(t, out, "day two")
	})

	t.Run("never emits markup from input", func(t *testing.T) {
		out := RenderText(`<script>alert("x")</script><b>bold</b>`)
		assert.NotContains(t, out, "<script>")
		assert.NotContains(t, out, "<b>")
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Equal(t, "", RenderText(""))
	})
}
