package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/barter/internal/domain"
)

// ReconciliationUseCase checks ledger-wide invariants.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	clock       Clock
	pageSize    int
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository, clock Clock) *ReconciliationUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		clock:       clock,
		pageSize:    MaxListLimit,
	}
}

// ConsistencyReport summarizes a scan of every account.
type ConsistencyReport struct {
	TotalAccounts int
	ItemTotals    map[string]int
	Violations    []string
	Consistent    bool
	CheckedAt     time.Time
}

// CheckConsistency scans all accounts for negative counts and totals items.
// A violation returns the report together with ErrInternalInconsistency.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{
		ItemTotals: make(map[string]int),
		Violations: make([]string, 0),
	}

	for offset := 0; ; offset += uc.pageSize {
		accounts, err := uc.accountRepo.List(ctx, uc.pageSize, offset)
		if err != nil {
			return nil, storageError("list accounts", err)
		}

		for _, acc := range accounts {
			report.TotalAccounts++

			if err := acc.Inventory.Validate(); err != nil {
				report.Violations = append(report.Violations, fmt.Sprintf("account %s: %v", acc.ID, err))
			}

			for item, n := range acc.Inventory {
				report.ItemTotals[item] += n
			}
		}

		if len(accounts) < uc.pageSize {
			break
		}
	}

	report.Consistent = len(report.Violations) == 0
	report.CheckedAt = uc.clock.Now()

	if !report.Consistent {
		return report, fmt.Errorf("%w: %d accounts violate inventory invariants", domain.ErrInternalInconsistency, len(report.Violations))
	}

	return report, nil
}
