package inventory

import (
	"context"

	"github.com/obralink/obralink-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción. Stock es la única vía para modificar
// stock_actual y solo se entrega dentro de TxRunner.
type TxRepos struct {
	Products  repository.ProductRepository
	Stock     repository.StockMutator
	Movements repository.MovementRepository
	Sites     repository.SiteRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el ledger.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// LedgerMetrics observa operaciones del ledger. Implementado por pkg/metrics; nil-safe.
type LedgerMetrics interface {
	MovementRecorded(kind string)
	MovementReversed(kind string)
	LineReconciled(outcome string)
	OperationFailed(op string)
}

type nopMetrics struct{}

func (nopMetrics) MovementRecorded(string) {}
func (nopMetrics) MovementReversed(string) {}
func (nopMetrics) LineReconciled(string)   {}
func (nopMetrics) OperationFailed(string)  {}
