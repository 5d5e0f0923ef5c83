package reservation

import (
	"context"
	"time"

	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// ExpirySweeper proceso periódico que libera las reservas vencidas a través
// del Manager. Es seguro frente al tráfico concurrente de usuarios: una
// reserva que otro caller resolvió entre la consulta y la expiración cuenta
// como no-op, y una segunda pasada sobre la misma reserva no libera stock
// dos veces.
type ExpirySweeper struct {
	reservations repository.StockReservationRepository
	manager      *Manager
	log          *logger.Logger
	interval     time.Duration
	batchSize    int
}

// NewExpirySweeper construye el sweeper. interval <= 0 usa un minuto;
// batchSize <= 0 usa 100.
func NewExpirySweeper(reservations repository.StockReservationRepository, manager *Manager,
	log *logger.Logger, interval time.Duration, batchSize int) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirySweeper{
		reservations: reservations,
		manager:      manager,
		log:          log,
		interval:     interval,
		batchSize:    batchSize,
	}
}

// ReleaseExpiredReservations expira todas las reservas vencidas no
// terminales y devuelve cuántas cambiaron de estado. Un fallo sobre una
// reserva se registra y no corta la pasada.
func (s *ExpirySweeper) ReleaseExpiredReservations(ctx context.Context) (int, error) {
	expired, err := s.reservations.FindExpired(ctx, time.Now().UTC(), s.batchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range expired {
		changed, err := s.manager.Expire(ctx, r.ID)
		if err != nil {
			s.log.Error().Err(err).
				Str("reservation_id", r.ID.String()).
				Msg("expirar reserva vencida")
			continue
		}
		if changed {
			count++
		}
	}

	if count > 0 {
		s.log.Info().Int("released", count).Msg("reservas vencidas liberadas")
	}
	return count, nil
}

// Run ejecuta la pasada en cada tick hasta que el contexto se cancele.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("iniciando expiry sweeper")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("deteniendo expiry sweeper")
			return
		case <-ticker.C:
			if _, err := s.ReleaseExpiredReservations(ctx); err != nil {
				s.log.Error().Err(err).Msg("pasada del expiry sweeper")
			}
		}
	}
}
