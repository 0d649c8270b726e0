/*

This file contains the authentication shim between the API surface and the
ledger. Real signature verification belongs to the hosting platform; the
static verifier maps pre-shared bearer tokens to identities, which is
enough for the ledger to compare principals.

*/

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/optionsvault/ovm/internal/types"
)

// Error definitions for credential handling.
var (
	ErrUnknownCredential = errors.New("credential does not map to a known identity")
	ErrEmptyCredential   = errors.New("credential is empty")
)

// StaticVerifier resolves bearer tokens against a fixed token->identity map.
type StaticVerifier struct {
	tokens map[string]types.Identity
}

// NewStaticVerifier creates a verifier over the given token map.
func NewStaticVerifier(tokens map[string]types.Identity) *StaticVerifier {
	if tokens == nil {
		tokens = make(map[string]types.Identity)
	}
	return &StaticVerifier{tokens: tokens}
}

// ParseTokenSpec builds a verifier from a "token:identity,token:identity"
// specification, the format of the OVM_API_TOKENS environment variable.
func ParseTokenSpec(spec string) (*StaticVerifier, error) {
	tokens := make(map[string]types.Identity)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, id, found := strings.Cut(pair, ":")
		if !found || token == "" || id == "" {
			return nil, fmt.Errorf("invalid token spec entry %q (want token:identity)", pair)
		}
		tokens[token] = types.Identity(id)
	}
	return NewStaticVerifier(tokens), nil
}

// Identify resolves a credential to the identity it controls.
func (v *StaticVerifier) Identify(_ context.Context, credential string) (types.Identity, error) {
	if credential == "" {
		return "", ErrEmptyCredential
	}
	id, ok := v.tokens[credential]
	if !ok {
		return "", ErrUnknownCredential
	}
	return id, nil
}
