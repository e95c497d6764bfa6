package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"end-of-call-report"}`)
	mac := hmac.New(sha256.New, []byte("k"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, verifySignature("k", body, sig))
	assert.True(t, verifySignature("k", body, "sha256="+sig))
	assert.True(t, verifySignature("k", body, " "+sig+" "))
	assert.False(t, verifySignature("k", append(body, ' '), sig))
	assert.False(t, verifySignature("other", body, sig))
	assert.False(t, verifySignature("k", body, ""))
	assert.False(t, verifySignature("k", body, "zz"))
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"Bearer ":     "",
		"":            "",
	}
	for header, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(r), header)
	}
}

func TestAllowedCallbackMIME(t *testing.T) {
	assert.True(t, allowedCallbackMIME("application/json"))
	assert.True(t, allowedCallbackMIME("text/plain; charset=utf-8"))
	assert.False(t, allowedCallbackMIME("image/png"))
	assert.False(t, allowedCallbackMIME("application/octet-stream"))
}

func TestParseLimit(t *testing.T) {
	n, err := parseLimit("")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = parseLimit("500")
	assert.NoError(t, err)
	assert.Equal(t, 500, n)
	_, err = parseLimit("-1")
	assert.Error(t, err)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("id", "2c7e-11_ab"))
	assert.Error(t, ValidateID("id", ""))
	assert.Error(t, ValidateID("id", "a/b"))
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateID("id", string(long)))
}
