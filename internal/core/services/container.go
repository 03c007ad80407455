package services

import (
	"math/rand"

	portsrepo "github.com/financiera/banking-backend/internal/core/ports/repositories"
	portssvc "github.com/financiera/banking-backend/internal/core/ports/services"
	"github.com/financiera/banking-backend/internal/utils/numbering"
)

// NewServiceContainer wires every service from the repository provider and
// external collaborators.
func NewServiceContainer(repos portsrepo.RepositoryProvider, customers portssvc.CustomerVerifier, rng *rand.Rand) *portssvc.ServiceContainer {
	allocator := numbering.NewAllocator(rng)

	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, allocator, customers),
		Ledger:  NewLedgerService(repos.AccountRepo, repos.LedgerRepo),
	}
}
