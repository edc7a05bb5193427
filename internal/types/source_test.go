package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataSource(t *testing.T) {
	for _, s := range AllSources() {
		parsed, err := ParseDataSource(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseDataSource("carrier_pigeon")
	require.Error(t, err)
}

func TestDataSource_FastChanging(t *testing.T) {
	assert.True(t, SourceNews.FastChanging())
	assert.True(t, SourceSocialMedia.FastChanging())
	assert.False(t, SourceGlassdoor.FastChanging())
	assert.False(t, SourceWebsite.FastChanging())
}
