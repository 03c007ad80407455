// Package numbering issues unique, type-prefixed account numbers.
package numbering

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/financiera/banking-backend/internal/apperrors"
	"github.com/financiera/banking-backend/internal/core/domain"
)

const (
	// SavingsPrefix starts every savings account number.
	SavingsPrefix = "53"
	// CheckingPrefix starts every checking account number.
	CheckingPrefix = "33"

	bodyDigits  = 8
	maxAttempts = 5
)

// NumberChecker reports whether a candidate number is already taken.
type NumberChecker interface {
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
}

// Allocator draws candidate numbers from an injected rand source and accepts
// the first one the checker does not know. Attempts are bounded; exhausting
// them returns apperrors.ErrAllocationExhausted instead of looping forever.
type Allocator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAllocator creates an Allocator around the given source. Injecting the
// source keeps allocation deterministic under test.
func NewAllocator(rng *rand.Rand) *Allocator {
	return &Allocator{rng: rng}
}

// PrefixFor returns the two-digit prefix for an account type.
func PrefixFor(accountType domain.AccountType) string {
	if accountType == domain.Savings {
		return SavingsPrefix
	}
	return CheckingPrefix
}

// Allocate produces an unused account number for the given account type.
func (a *Allocator) Allocate(ctx context.Context, accountType domain.AccountType, checker NumberChecker) (string, error) {
	prefix := PrefixFor(accountType)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := prefix + a.randomBody()
		exists, err := checker.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check candidate account number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: gave up after %d attempts for type %s", apperrors.ErrAllocationExhausted, maxAttempts, accountType)
}

// randomBody draws the fixed-width digit body. rand.Rand is not safe for
// concurrent use, so draws are serialized.
func (a *Allocator) randomBody() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	sb.Grow(bodyDigits)
	for i := 0; i < bodyDigits; i++ {
		sb.WriteByte(byte('0' + a.rng.Intn(10)))
	}
	return sb.String()
}
