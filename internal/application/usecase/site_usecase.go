package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/pkg/logger"
)

// SiteUseCase casos de uso para obras.
type SiteUseCase struct {
	repo          repository.SiteRepository
	reports       repository.ReportRepository
	txRunner      inventory.TxRunner
	ledger        *inventory.LedgerUseCase
	centralSiteID int64
	log           *logger.Logger
}

// NewSiteUseCase construye el caso de uso. centralSiteID identifica la Bodega Central.
func NewSiteUseCase(
	repo repository.SiteRepository,
	reports repository.ReportRepository,
	txRunner inventory.TxRunner,
	ledger *inventory.LedgerUseCase,
	centralSiteID int64,
	log *logger.Logger,
) *SiteUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SiteUseCase{
		repo:          repo,
		reports:       reports,
		txRunner:      txRunner,
		ledger:        ledger,
		centralSiteID: centralSiteID,
		log:           log,
	}
}

// Create crea una nueva obra.
func (uc *SiteUseCase) Create(ctx context.Context, in dto.CreateSiteRequest) (*dto.SiteResponse, error) {
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if in.Presupuesto < 0 {
		return nil, fmt.Errorf("%w: el presupuesto no puede ser negativo", domain.ErrInvalidInput)
	}
	site := &entity.Site{Name: name, Client: strings.TrimSpace(in.Cliente), Budget: in.Presupuesto.Int64()}
	if err := uc.repo.Create(ctx, site); err != nil {
		return nil, err
	}
	return toSiteResponse(site), nil
}

// GetByID obtiene una obra por ID.
func (uc *SiteUseCase) GetByID(ctx context.Context, id int64) (*dto.SiteResponse, error) {
	site, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSiteResponse(site), nil
}

// List lista las obras por id (la Bodega Central incluida).
func (uc *SiteUseCase) List(ctx context.Context) ([]dto.SiteResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SiteResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSiteResponse(s))
	}
	return items, nil
}

// Delete borra la obra. La Bodega Central está protegida. Los despachos a la obra se revierten
// (el stock vuelve a bodega) y se borran junto con la obra, en una sola transacción.
func (uc *SiteUseCase) Delete(ctx context.Context, id int64) (*dto.SiteDeletedResponse, error) {
	var reversed int
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		site, err := repos.Sites.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if site == nil {
			return fmt.Errorf("%w: obra %d", domain.ErrNotFound, id)
		}
		if site.IsCentralWarehouse(uc.centralSiteID) {
			return fmt.Errorf("%w: la Bodega Central no se puede eliminar", domain.ErrProtected)
		}
		reversed, err = uc.ledger.ReverseSiteMovementsInTx(ctx, repos, id)
		if err != nil {
			return err
		}
		deleted, err := repos.Sites.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: obra %d", domain.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("site_id", id).Int("movements_reversed", reversed).Msg("obra eliminada")
	return &dto.SiteDeletedResponse{Mensaje: "Obra eliminada", MovimientosRevertidos: reversed}, nil
}

// TotalReceived suma de cantidades despachadas (SALIDA) a la obra.
func (uc *SiteUseCase) TotalReceived(ctx context.Context, id int64) (*dto.SiteReceivedResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	total, err := uc.reports.SiteReceived(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SiteReceivedResponse{IDObra: id, TotalRecibido: total}, nil
}

func (uc *SiteUseCase) get(ctx context.Context, id int64) (*entity.Site, error) {
	site, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("%w: obra %d", domain.ErrNotFound, id)
	}
	return site, nil
}

func toSiteResponse(s *entity.Site) *dto.SiteResponse {
	return &dto.SiteResponse{ID: s.ID, Nombre: s.Name, Cliente: s.Client, Presupuesto: s.Budget}
}
