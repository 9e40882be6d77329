package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bennypowers.dev/csslens/internal/version"
)

func TestString(t *testing.T) {
	assert.NotEmpty(t, version.String())
}

func TestFull(t *testing.T) {
	orig := version.Commit
	defer func() { version.Commit = orig }()

	version.Commit = "0123456789abcdef"
	assert.Contains(t, version.Full(), "0123456")
}
