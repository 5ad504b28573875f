package client

import (
	"context"
	"time"

	"asset-backend/app/domain"
	apperrors "asset-backend/app/utils/errors"
)

// resolutionKind tags the outcome of one resolver step
type resolutionKind int

const (
	// resolved carries a usable identity; the chain stops.
	resolved resolutionKind = iota
	// retry signals a transient server-side failure worth retrying.
	retry
	// fallbackNeeded signals the chain is exhausted and a synthesized
	// identity should be granted.
	fallbackNeeded
)

// resolution is the tagged result of a resolver step
type resolution struct {
	kind     resolutionKind
	identity *domain.Identity
}

// resolveProfile runs one lookup-then-register attempt for the given
// email. The decision table:
//
//	lookup ok          -> resolved with the profile
//	lookup 404         -> register as read_only; ok -> resolved,
//	                      failure -> fallbackNeeded
//	lookup server-side -> retry
//	anything else      -> fallbackNeeded
func (o *Orchestrator) resolveProfile(ctx context.Context, email, nameHint string) resolution {
	user, err := o.api.UserByEmail(ctx, email)
	if err == nil {
		return resolution{kind: resolved, identity: user.Identity()}
	}

	switch apperrors.GetErrorCode(err) {
	case apperrors.ErrCodeUserNotFound:
		registered, regErr := o.api.RegisterRequest(ctx, email, nameHint)
		if regErr != nil {
			o.logger.Warn("auto-registration failed, granting fallback identity",
				"email", email, "error", regErr)
			return resolution{kind: fallbackNeeded}
		}
		return resolution{kind: resolved, identity: registered.Identity()}

	case apperrors.ErrCodeProfileLookup:
		o.logger.Debug("profile lookup failed transiently", "email", email, "error", err)
		return resolution{kind: retry}

	default:
		o.logger.Warn("profile lookup failed terminally", "email", email, "error", err)
		return resolution{kind: fallbackNeeded}
	}
}

// resolveWithRetries evaluates the resolver chain with linear backoff:
// the n-th retry waits n times the base delay. The chain never fails:
// exhaustion degrades to the synthesized read-only fallback identity.
func (o *Orchestrator) resolveWithRetries(ctx context.Context, email, nameHint string) *domain.Identity {
	for attempt := 0; ; attempt++ {
		result := o.resolveProfile(ctx, email, nameHint)

		switch result.kind {
		case resolved:
			return result.identity

		case retry:
			if attempt >= o.maxRetries {
				return domain.FallbackIdentity(email, nameHint)
			}
			select {
			case <-time.After(time.Duration(attempt+1) * o.retryBase):
			case <-ctx.Done():
				return domain.FallbackIdentity(email, nameHint)
			}

		case fallbackNeeded:
			return domain.FallbackIdentity(email, nameHint)
		}
	}
}
