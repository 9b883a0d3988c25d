package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "dev"
	assert.Equal(t, "dvnt version dev (built from source)", Full())

	Version = "1.2.3"
	assert.Equal(t, "dvnt version 1.2.3", Full())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "dvnt/"), "user agent should start with dvnt/: %s", ua)
	assert.Contains(t, ua, "github.com/scottbw/dvnt")
}
