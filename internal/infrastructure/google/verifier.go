package google

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/fastygo/taskboard/usecase/auth"
)

// Verifier validates Google Sign-In ID tokens for one OAuth client id.
type Verifier struct {
	validator *idtoken.Validator
	audience  string
}

// NewVerifier returns nil when no client id is configured so Google login stays disabled.
func NewVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*Verifier, error) {
	if clientID == "" {
		return nil, nil
	}
	validator, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Verifier{validator: validator, audience: clientID}, nil
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error) {
	payload, err := v.validator.Validate(ctx, idToken, v.audience)
	if err != nil {
		return nil, err
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google email not verified")
	}
	return &auth.GoogleIdentity{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

var _ auth.GoogleVerifier = (*Verifier)(nil)
