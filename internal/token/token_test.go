// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"testing"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key")

func TestMintAndVerify(t *testing.T) {
	codec := token.NewCodec(testSecret, 24*time.Hour)

	tok, err := codec.Mint(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerify_TamperedSignature(t *testing.T) {
	codec := token.NewCodec(testSecret, 24*time.Hour)

	tok, err := codec.Mint(42)
	require.NoError(t, err)

	tampered := tok[:len(tok)-2] + "xx"

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	codec := token.NewCodec(testSecret, 24*time.Hour)
	other := token.NewCodec([]byte("another-secret"), 24*time.Hour)

	tok, err := codec.Mint(42)
	require.NoError(t, err)

	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	codec := token.NewCodec(testSecret, -time.Minute)

	tok, err := codec.Mint(42)
	require.NoError(t, err)

	_, err = codec.Verify(tok)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	codec := token.NewCodec(testSecret, 24*time.Hour)

	_, err := codec.Verify("not-a-token")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
