package term

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/axon/internal/config"
)

func TestConfigure(t *testing.T) {
	Configure(config.ColorNever)
	assert.False(t, Enabled())
	assert.Equal(t, "[ERROR]", Styles.Error.Render("[ERROR]"))

	Configure(config.ColorAlways)
	assert.True(t, Enabled())
	assert.Contains(t, Styles.Error.Render("[ERROR]"), "\x1b[")

	Configure(config.ColorNever)
}

func TestResolve_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, resolve(config.ColorAuto))
	assert.True(t, resolve(config.ColorAlways))
}
