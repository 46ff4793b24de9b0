package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramyakv/ecom-store/internal/storage"
	"github.com/shopspring/decimal"
)

// ErrTaxResolution — временный сбой справочника ставок, запрос можно повторить
var ErrTaxResolution = errors.New("tax rate resolution failed")

// TaxService определяет интерфейс резолвинга налоговой ставки по стране доставки.
type TaxService interface {
	// ResolveRate возвращает ставку как долю в [0, 1) и признак того,
	// была ли ставка найдена для страны или применен запасной вариант.
	ResolveRate(ctx context.Context, country string) (decimal.Decimal, bool, error)
}

type taxService struct {
	log          *slog.Logger
	taxRepo      storage.TaxRateStorage
	fallbackRate decimal.Decimal
	timeout      time.Duration
}

// NewTaxService собирает сервис ставок. fallbackPercent — политика по умолчанию:
// ставка, применяемая когда страна не найдена в справочнике.
func NewTaxService(log *slog.Logger, taxRepo storage.TaxRateStorage, fallbackPercent int, timeout time.Duration) TaxService {
	return &taxService{
		log:          log,
		taxRepo:      taxRepo,
		fallbackRate: decimal.NewFromInt(int64(fallbackPercent)).Div(decimal.NewFromInt(100)),
		timeout:      timeout,
	}
}

// ResolveRate ограничивает обращение к справочнику таймаутом.
// Неизвестная страна — штатный случай с запасной ставкой; ошибка запроса —
// нет: она всплывает как ErrTaxResolution, заказ можно повторить.
func (s *taxService) ResolveRate(ctx context.Context, country string) (decimal.Decimal, bool, error) {
	const op = "service.TaxService.ResolveRate"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rate, err := s.taxRepo.GetRateByCountry(ctx, country)
	if err != nil {
		if errors.Is(err, storage.ErrTaxRateNotFound) {
			s.log.Info("tax rate not found, using fallback",
				slog.String("op", op),
				slog.String("country", country),
				slog.String("fallbackRate", s.fallbackRate.String()),
			)
			return s.fallbackRate, false, nil
		}
		s.log.Error("failed to resolve tax rate", slog.String("op", op), slog.Any("error", err))
		return decimal.Zero, false, fmt.Errorf("%s: %w: %w", op, ErrTaxResolution, err)
	}
	return rate, true, nil
}
