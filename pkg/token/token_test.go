package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/staff-portal/pkg/token"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := token.NewSigner("test-secret", "staff-portal")

	tok, err := signer.Issue("session-1", time.Now())
	require.NoError(t, err)

	sid, err := signer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sid)
}

func TestSigner_RejectsForeignTokens(t *testing.T) {
	signer := token.NewSigner("test-secret", "staff-portal")
	other := token.NewSigner("other-secret", "staff-portal")
	wrongIssuer := token.NewSigner("test-secret", "someone-else")

	tok, err := other.Issue("session-1", time.Now())
	require.NoError(t, err)
	_, err = signer.Parse(tok)
	assert.ErrorIs(t, err, token.ErrInvalid)

	tok, err = wrongIssuer.Issue("session-1", time.Now())
	require.NoError(t, err)
	_, err = signer.Parse(tok)
	assert.ErrorIs(t, err, token.ErrInvalid)

	_, err = signer.Parse("not.a.token")
	assert.ErrorIs(t, err, token.ErrInvalid)

	_, err = signer.Parse("")
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestSigner_IssueRequiresSessionID(t *testing.T) {
	_, err := token.NewSigner("s", "i").Issue("", time.Now())
	assert.Error(t, err)
}
