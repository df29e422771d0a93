package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetNotFound_MatchesNotFound(t *testing.T) {
	assert.True(t, errors.Is(ErrTargetNotFound, ErrorNotFound))
	assert.False(t, errors.Is(ErrorNotFound, ErrTargetNotFound))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrMalformedHeader, "malformed_header"},
		{fmt.Errorf("decode: %w", ErrMalformedPayload), "malformed_payload"},
		{ErrUnknownRequestCode, "unknown_request_code"},
		{ErrorUnauthorized, "unauthorized"},
		{fmt.Errorf("send: %w", ErrTargetNotFound), "target_not_found"},
		{ErrorNotFound, "not_found"},
		{fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.New("conn refused")), "store_unavailable"},
		{ErrEncodingOverflow, "encoding_overflow"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "err=%v", tt.err)
	}
}
