package application

import "github.com/oksasatya/go-community-market/internal/domain/entity"

// Decision is the outcome of an ownership check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Err converts a denied decision into a service error.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return errUnauthenticated()
	default:
		return errForbidden()
	}
}

// Authorize decides whether identity may mutate a resource owned by ownerID.
// ownerID must come from the stored row, never from a request payload.
func Authorize(identity *entity.Identity, ownerID string) Decision {
	if identity == nil || identity.ID == "" {
		return Decision{Reason: ReasonUnauthenticated}
	}
	if ownerID == "" || identity.ID != ownerID {
		return Decision{Reason: ReasonForbidden}
	}
	return Decision{Allowed: true}
}

// requireIdentity guards create operations, where the caller becomes the owner.
func requireIdentity(identity *entity.Identity) error {
	if identity == nil || identity.ID == "" {
		return errUnauthenticated()
	}
	return nil
}
