package env

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert := assert.New(t)

	orig := Version
	defer func() { Version = orig }()

	Version = unset
	assert.False(IsProd())
	assert.NotEmpty(Short())

	Version = "v0.1.0"
	assert.True(IsProd())
	assert.Equal("v0.1.0", Short())

	rec := httptest.NewRecorder()
	VersionHandler(rec, httptest.NewRequest("GET", "/version", nil))
	assert.Equal("v0.1.0\n", rec.Body.String())
}
