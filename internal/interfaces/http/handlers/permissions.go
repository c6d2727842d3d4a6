// Package handlers implements the OpenADR 3 resource endpoints. Each
// handler validates the request, derives the caller's permission from
// its claims, and delegates to the object store.
package handlers

import (
	"context"

	"openadr/internal/domain/storage"
	"openadr/internal/infrastructure/auth"
)

// readPrivacy derives the program/event read permission of the caller.
// BL callers read everything; VEN callers read objects whose targets are
// covered by their VEN's target set. A caller without a registered VEN
// sees only untargeted objects.
func readPrivacy(ctx context.Context, claims *auth.Claims, vens storage.VenStore) (storage.ReadPrivacy, error) {
	if claims.CanReadAll() {
		return storage.ReadAllPrivacy, nil
	}
	targets, found, err := vens.TargetsByClientID(ctx, claims.ClientID)
	if err != nil {
		return storage.ReadPrivacy{}, err
	}
	if !found {
		return storage.PrivacyFor(nil), nil
	}
	return storage.PrivacyFor(targets), nil
}

// ownerPerm derives the owned-object permission of the caller.
func ownerPerm(claims *auth.Claims) storage.OwnerPermission {
	if claims.IsBusinessLogic() {
		return storage.BLOwner
	}
	return storage.OwnerFor(claims.ClientID)
}
