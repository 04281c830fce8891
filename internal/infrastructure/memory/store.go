// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y con
// STORAGE_DRIVER=memory. Las transacciones trabajan sobre una copia del estado que solo se publica
// en el commit, y se pueden inyectar fallos por operación.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// Operaciones con inyección de fallos.
const (
	OpTxBegin           = "tx.begin"
	OpTxCommit          = "tx.commit"
	OpProductCreate     = "products.create"
	OpProductUpdate     = "products.update"
	OpProductDelete     = "products.delete"
	OpStockApplyDelta   = "stock.apply_delta"
	OpStockSupplier     = "stock.set_last_supplier"
	OpMovementCreate    = "movements.create"
	OpMovementDelete    = "movements.delete"
	OpMovementBySite    = "movements.delete_by_site"
	OpMovementByProduct = "movements.delete_by_product"
	OpSiteCreate        = "sites.create"
	OpSiteDelete        = "sites.delete"
)

type state struct {
	products  map[int64]entity.Product
	sites     map[int64]entity.Site
	movements map[int64]entity.Movement
	users     map[int64]entity.User

	nextProduct  int64
	nextSite     int64
	nextMovement int64
	nextUser     int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]entity.Product),
		sites:     make(map[int64]entity.Site),
		movements: make(map[int64]entity.Movement),
		users:     make(map[int64]entity.User),
	}
}

func (st *state) clone() *state {
	c := *st
	c.products = make(map[int64]entity.Product, len(st.products))
	for k, v := range st.products {
		c.products[k] = v
	}
	c.sites = make(map[int64]entity.Site, len(st.sites))
	for k, v := range st.sites {
		c.sites[k] = v
	}
	c.movements = make(map[int64]entity.Movement, len(st.movements))
	for k, v := range st.movements {
		c.movements[k] = v
	}
	c.users = make(map[int64]entity.User, len(st.users))
	for k, v := range st.users {
		c.users[k] = v
	}
	return &c
}

type fault struct {
	skip int
	err  error
}

// Store estado en memoria. Las transacciones se serializan con mu.
type Store struct {
	mu   sync.Mutex
	data *state

	faultMu sync.Mutex
	faults  map[string]*fault
	calls   map[string]int
}

// New crea un store con la Bodega Central sembrada como obra 1, igual que la migración inicial.
func New() *Store {
	st := newState()
	st.nextSite = 1
	st.sites[1] = entity.Site{ID: 1, Name: entity.CentralWarehouseName, Client: "Interno"}
	return &Store{
		data:   st,
		faults: make(map[string]*fault),
		calls:  make(map[string]int),
	}
}

// FailOn hace que la operación op falle con err después de skip llamadas exitosas. Un solo disparo.
func (s *Store) FailOn(op string, skip int, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = &fault{skip: skip, err: err}
}

// Calls cantidad de veces que se invocó op.
func (s *Store) Calls(op string) int {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.calls[op]
}

func (s *Store) check(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.calls[op]++
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(s.faults, op)
	return f.err
}

// view ejecuta fn sobre el estado de la tx o, fuera de una tx, sobre el estado publicado.
// Las escrituras fuera de tx (catálogo, obras) se aplican directo.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransaction, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(OpTxBegin); err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransaction, err)
	}
	work := s.data.clone()
	repos := inventory.TxRepos{
		Products:  &ProductRepo{store: s, tx: work},
		Stock:     &stockRepo{store: s, tx: work},
		Movements: &MovementRepo{store: s, tx: work},
		Sites:     &SiteRepo{store: s, tx: work},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := s.check(OpTxCommit); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrTransaction, err)
	}
	s.data = work
	return nil
}

// Products repositorio de catálogo fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Sites repositorio de obras fuera de transacción.
func (s *Store) Sites() *SiteRepo { return &SiteRepo{store: s} }

// Movements repositorio de movimientos fuera de transacción (lecturas).
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Reports consultas de proyección.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{store: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{store: s} }

var (
	_ inventory.TxRunner            = (*Store)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.StockMutator       = (*stockRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.SiteRepository     = (*SiteRepo)(nil)
	_ repository.ReportRepository   = (*ReportRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)
