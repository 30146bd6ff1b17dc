package referral

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkRoundTrip(t *testing.T) {
	for _, id := range []int64{1, 42, 123456789, 9999999999} {
		link := Link(id, "growth_bot")
		require.True(t, strings.HasPrefix(link, "https://t.me/growth_bot?start=ref_"))

		code := strings.TrimPrefix(link, "https://t.me/growth_bot?start=")
		got, ok := DecodeStartCode(code)
		require.True(t, ok, "id=%d", id)
		assert.Equal(t, id, got)
	}
}

func TestDecodeStartCodeMalformed(t *testing.T) {
	tests := []string{
		"",
		"ref_",
		"ref_!!!not-base64",
		"ref_aGVsbG8=", // decodes to "hello", not a number
		"ref_LTU=",     // decodes to "-5"
		"ref_MA==",     // decodes to "0"
		"somethingelse",
		"REF_NDI=", // wrong case prefix
	}
	for _, code := range tests {
		id, ok := DecodeStartCode(code)
		assert.False(t, ok, "code=%q", code)
		assert.Zero(t, id, "code=%q", code)
	}
}
