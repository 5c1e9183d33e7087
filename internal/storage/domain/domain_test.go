package domain

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var keyPattern = regexp.MustCompile(`^objects/[0-9a-f]{2}/[0-9a-f-]{36}$`)

func TestNewStorageKey(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := NewStorageKey()
		assert.Regexp(t, keyPattern, key)
		assert.NoError(t, ValidateKey(key))
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestValidateKey(t *testing.T) {
	cases := []struct {
		key string
		ok  bool
	}{
		{"objects/ab/0b0f7c2e-3d0a-4f3f-9d5e-8a7f0e6c1b2a", true},
		{"a.b/c_d-e", true},
		{"", false},
		{"/etc/passwd", false},
		{"objects/../../etc/passwd", false},
		{"objects//x", false},
		{"objects/./x", false},
		{"objects/x/", false},
		{`objects\x`, false},
		{"objects/x y", false},
		{"objects/\x00", false},
	}
	for _, tc := range cases {
		err := ValidateKey(tc.key)
		if tc.ok {
			assert.NoError(t, err, tc.key)
		} else {
			assert.ErrorIs(t, err, ErrInvalidKey, tc.key)
		}
	}
}

func TestStorageError_Classification(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("put: %w", NewStorageError(KindIOFailure, "put", "objects/ab/x", cause))

	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
	assert.True(t, IsRetryable(err))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindIOFailure, kind)
	assert.Contains(t, err.Error(), "objects/ab/x")

	quota := NewStorageError(KindQuotaExceeded, "put", "k", nil)
	assert.ErrorIs(t, quota, ErrQuotaExceeded)
	assert.False(t, IsRetryable(quota))

	_, ok = KindOf(cause)
	assert.False(t, ok)
}
