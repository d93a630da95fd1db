package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	f := NewField(styles.DefaultStyles(), "Budget", "e.g. lowest cost")

	require.NotNil(t, f)
	assert.Equal(t, "", f.Value())
	assert.Equal(t, "Budget", f.Label())
	assert.False(t, f.Focused())
}

func TestNewField_NilStyles(t *testing.T) {
	f := NewField(nil, "Ask", "")

	require.NotNil(t, f)
	assert.NotNil(t, f.styles)
}

func TestField_Init(t *testing.T) {
	f := NewField(nil, "Ask", "")

	assert.NotNil(t, f.Init())
}

func TestField_UpdateWhenFocused(t *testing.T) {
	f := NewField(nil, "Ask", "")
	f.Focus()

	updated, _ := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, f, updated)
	assert.Equal(t, "a", f.Value())
}

func TestField_UpdateIgnoredWhenBlurred(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, "", f.Value())
}

func TestField_View(t *testing.T) {
	f := NewField(nil, "Ask", "")

	assert.Contains(t, f.View(), "Ask")
	f.Focus()
	assert.Contains(t, f.View(), "Ask")
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.SetValue("How do I get to Orchard?")
	assert.Equal(t, "How do I get to Orchard?", f.Value())

	f.Reset()
	assert.Equal(t, "", f.Value())
}

func TestField_FocusAndBlur(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.Focus()
	assert.True(t, f.Focused())

	f.Blur()
	assert.False(t, f.Focused())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Ask", "")

	f.SetWidth(120)
	assert.Equal(t, 120, f.Width())
	assert.Equal(t, 120-len("Ask")-8, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)
}
