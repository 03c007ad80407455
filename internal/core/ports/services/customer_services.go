package services

import "context"

// CustomerVerifier is the one contract this core consumes from the customer
// management collaborator. Customer identity, uniqueness and age checks all
// live on the other side of it.
type CustomerVerifier interface {
	// CustomerExists reports whether the given owner ID refers to a known customer.
	CustomerExists(ctx context.Context, ownerID string) (bool, error)
}
