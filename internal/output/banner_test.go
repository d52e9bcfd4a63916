package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner_TextOnlyWhenBannerDisabled(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0", BannerOptions{ShowBanner: false, ShowVersion: true})
	assert.Equal(t, "pathfinder-ls v0.1.0\n", buf.String())
}

func TestPrintBanner_IncludesASCIIArtWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0", DefaultBannerOptions())
	assert.Contains(t, buf.String(), "pathfinder-ls v0.1.0")
	assert.NotEmpty(t, buf.String())
}

func TestShouldShowBanner(t *testing.T) {
	assert.True(t, ShouldShowBanner(true, false))
	assert.False(t, ShouldShowBanner(true, true))
	assert.False(t, ShouldShowBanner(false, false))
}
