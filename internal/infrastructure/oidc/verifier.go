package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc"
	"go.uber.org/zap"
)

var ErrNoSubject = errors.New("id token has no subject")

// Verifier checks ID tokens against an OpenID Connect issuer.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// New discovers the issuer's keys. An empty clientID disables the audience
// check.
func New(ctx context.Context, logger *zap.Logger, issuerURL, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", issuerURL, err)
	}

	v := provider.Verifier(&oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: clientID == "",
	})

	logger.Info("oidc verifier initialized",
		zap.String("issuer", issuerURL),
		zap.Bool("client_id_check", clientID != ""),
	)

	return &Verifier{verifier: v}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	if idToken.Subject == "" {
		return "", ErrNoSubject
	}

	return idToken.Subject, nil
}
