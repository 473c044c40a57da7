package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notblankSubject struct {
	Code string `validate:"required,notblank"`
}

func TestNew_RegistersNotblank(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(notblankSubject{Code: "SUMMER10"}))

	err := v.Struct(notblankSubject{Code: "   "})
	assert.Error(t, err, "whitespace-only strings must be rejected")

	err = v.Struct(notblankSubject{Code: "\t\n"})
	assert.Error(t, err)
}
