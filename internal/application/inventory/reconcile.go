package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/pkg/logger"
)

// InvoiceSupplier proveedor asignado a productos y movimientos creados por importación.
const InvoiceSupplier = "Invoice Import"

// Resultado por línea para métricas.
const (
	OutcomeMatched = "matched"
	OutcomeCreated = "created"
)

// LineItem línea de factura ya interpretada.
type LineItem struct {
	Name     string `json:"nombre"`
	SKU      string `json:"sku,omitempty"`
	Quantity int64  `json:"cantidad"`
	UnitCost int64  `json:"precio_costo"`
}

// InvoiceParser extrae líneas de un archivo de factura. No persiste nada.
type InvoiceParser interface {
	Parse(filename string, content []byte) ([]LineItem, error)
}

// ReconciledLine resultado de una línea importada.
type ReconciledLine struct {
	Line       int
	Name       string
	SKU        string
	ProductID  int64
	MovementID int64
	Created    bool
}

// ImportResult resultado del lote completo.
type ImportResult struct {
	BatchID string
	Lines   []ReconciledLine
	Matched int
	Created int
}

// ReconcileUseCase importa lotes de líneas de factura: cada línea se asocia a un producto
// existente (SKU o nombre) o crea uno nuevo, y registra su ENTRADA. El lote es atómico.
// No hay clave de deduplicación: reimportar la misma factura duplica las entradas.
type ReconcileUseCase struct {
	txRunner  TxRunner
	ledger    *LedgerUseCase
	nameMatch repository.NameMatch
	metrics   LedgerMetrics
	log       *logger.Logger
}

// NewReconcileUseCase construye el caso de uso. nameMatch vacío = contains.
func NewReconcileUseCase(txRunner TxRunner, ledger *LedgerUseCase, nameMatch repository.NameMatch, metrics LedgerMetrics, log *logger.Logger) *ReconcileUseCase {
	if nameMatch == "" {
		nameMatch = repository.NameMatchContains
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		nameMatch: nameMatch,
		metrics:   metrics,
		log:       log,
	}
}

// Import procesa las líneas en orden dentro de una única transacción.
// Cualquier línea inválida o fallo revierte el lote entero.
func (uc *ReconcileUseCase) Import(ctx context.Context, items []LineItem) (*ImportResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: la factura no tiene líneas", domain.ErrInvalidInput)
	}
	for i, item := range items {
		if err := validateLine(item); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
	}

	res := &ImportResult{BatchID: uuid.NewString()}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		res.Lines = res.Lines[:0]
		now := time.Now()
		for i, item := range items {
			line, err := uc.reconcileLine(ctx, repos, item, now)
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}
			line.Line = i + 1
			res.Lines = append(res.Lines, line)
		}
		return nil
	})
	if err != nil {
		uc.metrics.OperationFailed("import")
		uc.log.Warn().Err(err).Str("batch_id", res.BatchID).Int("lines", len(items)).Msg("importación de factura revertida")
		return nil, err
	}

	for _, line := range res.Lines {
		outcome := OutcomeMatched
		if line.Created {
			outcome = OutcomeCreated
			res.Created++
		} else {
			res.Matched++
		}
		uc.metrics.LineReconciled(outcome)
		uc.metrics.MovementRecorded(string(entity.MovementEntrada))
	}
	uc.log.Info().
		Str("batch_id", res.BatchID).
		Int("lines", len(res.Lines)).
		Int("matched", res.Matched).
		Int("created", res.Created).
		Msg("factura importada")
	return res, nil
}

func (uc *ReconcileUseCase) reconcileLine(ctx context.Context, repos TxRepos, item LineItem, now time.Time) (ReconciledLine, error) {
	name := strings.TrimSpace(item.Name)
	sku := strings.TrimSpace(item.SKU)

	var product *entity.Product
	if sku != "" {
		p, err := repos.Products.GetBySKU(ctx, sku)
		if err != nil {
			return ReconciledLine{}, err
		}
		product = p
	}
	if product == nil {
		p, err := repos.Products.FindByName(ctx, name, uc.nameMatch)
		if err != nil {
			return ReconciledLine{}, err
		}
		product = p
	}

	created := false
	if product != nil {
		if err := repos.Products.UpdateCost(ctx, product.ID, item.UnitCost); err != nil {
			return ReconciledLine{}, err
		}
	} else {
		supplier := InvoiceSupplier
		product = &entity.Product{
			Name:         name,
			SKU:          sku,
			Category:     entity.ImportCategory,
			UnitCost:     item.UnitCost,
			LastSupplier: &supplier,
		}
		if err := uc.ledger.CreateProductInTx(ctx, repos, product); err != nil {
			return ReconciledLine{}, err
		}
		created = true
	}

	supplier := InvoiceSupplier
	mov, err := uc.ledger.RecordInTx(ctx, repos, RecordMovementInput{
		ProductID: product.ID,
		Kind:      entity.MovementEntrada,
		Quantity:  item.Quantity,
		Supplier:  &supplier,
	}, now)
	if err != nil {
		return ReconciledLine{}, err
	}
	return ReconciledLine{
		Name:       product.Name,
		SKU:        product.SKU,
		ProductID:  product.ID,
		MovementID: mov.ID,
		Created:    created,
	}, nil
}

func validateLine(item LineItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if item.UnitCost < 0 {
		return fmt.Errorf("%w: el costo no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}
