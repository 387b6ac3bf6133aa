package auth

import (
	"context"
	"crypto/subtle"

	"homeboard/internal/errs"
)

// CodeSource hands out the persisted pairing code, generating it on first use.
type CodeSource interface {
	PairingCode(ctx context.Context) (string, error)
}

type PairingServiceInterface interface {
	Pair(ctx context.Context, code string) (string, error)
}

type PairingService struct {
	codes  CodeSource
	tokens TokenServiceInterface
}

func NewPairingService(codes CodeSource, tokens TokenServiceInterface) *PairingService {
	return &PairingService{codes: codes, tokens: tokens}
}

// Pair exchanges the pairing code for a control token. The code is static
// and attempts are not rate limited; the server is meant for a trusted LAN.
func (p *PairingService) Pair(ctx context.Context, code string) (string, error) {
	expected, err := p.codes.PairingCode(ctx)
	if err != nil {
		return "", err
	}
	if code == "" || subtle.ConstantTimeCompare([]byte(code), []byte(expected)) != 1 {
		return "", errs.ErrUnauthorized
	}
	return p.tokens.Issue()
}
