package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	domaininv "github.com/obralink/obralink-api/internal/domain/inventory"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/pkg/logger"
)

// LedgerConfig parámetros del ledger.
type LedgerConfig struct {
	CentralSiteID int64
	SKUAttempts   int
	SKUs          *domaininv.SKUGenerator // nil = aleatorio
}

// LedgerUseCase registra y revierte movimientos de stock. Es el único componente que recibe
// repository.StockMutator: cada cambio de stock_actual pasa por aquí, dentro de una transacción.
type LedgerUseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	cfg       LedgerConfig
	metrics   LedgerMetrics
	log       *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	movements repository.MovementRepository,
	cfg LedgerConfig,
	metrics LedgerMetrics,
	log *logger.Logger,
) *LedgerUseCase {
	if cfg.SKUAttempts <= 0 {
		cfg.SKUAttempts = 5
	}
	if cfg.SKUs == nil {
		cfg.SKUs = domaininv.NewSKUGenerator(nil)
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:  txRunner,
		movements: movements,
		cfg:       cfg,
		metrics:   metrics,
		log:       log,
	}
}

// RecordMovementInput entrada para registrar un movimiento.
// SiteID es obligatorio para SALIDA y prohibido para ENTRADA. EventAt nil = ahora.
type RecordMovementInput struct {
	ProductID  int64
	Kind       entity.MovementKind
	Quantity   int64
	SiteID     *int64
	EventAt    *time.Time
	Supplier   *string
	ReceivedBy *string
}

// RecordMovement inserta el movimiento y aplica el delta de stock en una sola transacción.
// No hay piso en cero: el stock negativo se permite y señala una discrepancia.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in RecordMovementInput) (*entity.Movement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		mov, err = uc.RecordInTx(ctx, repos, in, time.Now())
		return err
	})
	if err != nil {
		uc.metrics.OperationFailed("record")
		return nil, err
	}
	uc.metrics.MovementRecorded(string(mov.Kind))
	return mov, nil
}

// RecordInTx registra el movimiento usando los repositorios de la transacción del caller
// (ingreso completo, importación de facturas, stock inicial del catálogo).
func (uc *LedgerUseCase) RecordInTx(ctx context.Context, repos TxRepos, in RecordMovementInput, now time.Time) (*entity.Movement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if in.Kind == entity.MovementSalida {
		site, err := repos.Sites.GetByID(ctx, *in.SiteID)
		if err != nil {
			return nil, err
		}
		if site == nil {
			return nil, fmt.Errorf("%w: obra %d", domain.ErrNotFound, *in.SiteID)
		}
		if site.IsCentralWarehouse(uc.cfg.CentralSiteID) {
			return nil, fmt.Errorf("%w: la Bodega Central no puede ser destino de una salida", domain.ErrInvalidInput)
		}
	}

	eventAt := now
	if in.EventAt != nil && !in.EventAt.IsZero() {
		eventAt = *in.EventAt
	}
	mov := &entity.Movement{
		ProductID:  in.ProductID,
		Kind:       in.Kind,
		Quantity:   in.Quantity,
		SiteID:     in.SiteID,
		EventAt:    eventAt,
		RecordedAt: now,
		Supplier:   optional(in.Supplier),
		ReceivedBy: optional(in.ReceivedBy),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Stock.ApplyDelta(ctx, mov.ProductID, mov.Kind.Delta(mov.Quantity)); err != nil {
		return nil, err
	}
	if mov.Kind == entity.MovementEntrada && mov.Supplier != nil {
		if err := repos.Stock.SetLastSupplier(ctx, mov.ProductID, *mov.Supplier); err != nil {
			return nil, err
		}
	}
	return mov, nil
}

// DeleteMovement revierte un movimiento: bloquea la fila, aplica el delta inverso y la borra,
// todo en una transacción. Una segunda reversa del mismo id devuelve ErrNotFound.
func (uc *LedgerUseCase) DeleteMovement(ctx context.Context, id int64) (*entity.Movement, error) {
	var reversed *entity.Movement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		mov, err := repos.Movements.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if mov == nil {
			return fmt.Errorf("%w: movimiento %d", domain.ErrNotFound, id)
		}
		if err := repos.Stock.ApplyDelta(ctx, mov.ProductID, -mov.Kind.Delta(mov.Quantity)); err != nil {
			return err
		}
		if err := repos.Movements.Delete(ctx, id); err != nil {
			return err
		}
		reversed = mov
		return nil
	})
	if err != nil {
		uc.metrics.OperationFailed("reverse")
		return nil, err
	}
	uc.metrics.MovementReversed(string(reversed.Kind))
	uc.log.Info().
		Int64("movement_id", reversed.ID).
		Int64("product_id", reversed.ProductID).
		Str("kind", string(reversed.Kind)).
		Int64("quantity", reversed.Quantity).
		Msg("movimiento revertido")
	return reversed, nil
}

// ReverseSiteMovementsInTx revierte y borra todos los movimientos de una obra (borrado de obra).
// Los deltas se agrupan por producto y se aplican en orden de id para un orden de bloqueo estable.
func (uc *LedgerUseCase) ReverseSiteMovementsInTx(ctx context.Context, repos TxRepos, siteID int64) (int, error) {
	movs, err := repos.Movements.ListBySite(ctx, siteID)
	if err != nil {
		return 0, err
	}
	deltas := make(map[int64]int64)
	for _, m := range movs {
		deltas[m.ProductID] -= m.Kind.Delta(m.Quantity)
	}
	ids := make([]int64, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, productID := range ids {
		if deltas[productID] == 0 {
			continue
		}
		if err := repos.Stock.ApplyDelta(ctx, productID, deltas[productID]); err != nil {
			return 0, err
		}
	}
	if err := repos.Movements.DeleteBySite(ctx, siteID); err != nil {
		return 0, err
	}
	return len(movs), nil
}

// CreateProductInTx crea un producto (stock 0) resolviendo el SKU: el explícito debe estar libre;
// el automático se reintenta con otro sufijo hasta SKUAttempts veces.
func (uc *LedgerUseCase) CreateProductInTx(ctx context.Context, repos TxRepos, product *entity.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if product.UnitCost < 0 || product.UnitPrice < 0 {
		return fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(product.Category) == "" {
		product.Category = entity.DefaultCategory
	}
	product.CurrentStock = 0

	if sku := strings.TrimSpace(product.SKU); sku != "" {
		exists, err := repos.Products.SKUExists(ctx, sku)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, sku)
		}
		product.SKU = sku
		return repos.Products.Create(ctx, product)
	}
	return uc.createWithAutoSKU(ctx, repos.Products, product)
}

// createWithAutoSKU prueba candidatos hasta SKUAttempts. Un Create que devuelve ErrDuplicateSKU
// (otra tx insertó el mismo SKU entre la consulta y el insert) cuenta como una colisión más.
func (uc *LedgerUseCase) createWithAutoSKU(ctx context.Context, products repository.ProductRepository, product *entity.Product) error {
	for i := 0; i < uc.cfg.SKUAttempts; i++ {
		candidate := uc.cfg.SKUs.Candidate(product.Name)
		exists, err := products.SKUExists(ctx, candidate)
		if err != nil {
			return err
		}
		if !exists {
			product.SKU = candidate
			err := products.Create(ctx, product)
			if !errors.Is(err, domain.ErrDuplicateSKU) {
				return err
			}
		}
		uc.log.Debug().Str("sku", candidate).Int("attempt", i+1).Msg("colisión de SKU automático")
	}
	product.SKU = ""
	return fmt.Errorf("%w: sin SKU libre para %q tras %d intentos", domain.ErrDuplicateSKU, product.Name, uc.cfg.SKUAttempts)
}

// List devuelve el historial con nombres de producto y obra, más reciente primero.
func (uc *LedgerUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementDetail, error) {
	return uc.movements.List(ctx, filter)
}

func validateMovement(in RecordMovementInput) error {
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: tipo debe ser ENTRADA o SALIDA", domain.ErrInvalidInput)
	}
	if in.ProductID <= 0 {
		return fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	switch in.Kind {
	case entity.MovementSalida:
		if in.SiteID == nil || *in.SiteID <= 0 {
			return fmt.Errorf("%w: una salida requiere obra de destino", domain.ErrInvalidInput)
		}
		if optional(in.Supplier) != nil {
			return fmt.Errorf("%w: el proveedor solo aplica a entradas", domain.ErrInvalidInput)
		}
	case entity.MovementEntrada:
		if in.SiteID != nil {
			return fmt.Errorf("%w: una entrada no lleva obra", domain.ErrInvalidInput)
		}
	}
	return nil
}

// optional normaliza strings opcionales: vacío o solo espacios = nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
