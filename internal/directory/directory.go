// Package directory справочники страховых компаний и служб эвакуации.
package directory

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/validation"
)

// ProviderAPI транспорт справочников.
type ProviderAPI interface {
	ListCompanies(ctx context.Context) ([]models.Provider, error)
	ListBreakdowns(ctx context.Context) ([]models.Provider, error)
	ResolveURL(ref string) string
}

// Service загружает справочники и приводит ссылки на логотипы к абсолютным.
type Service struct {
	api ProviderAPI
}

// NewService создаёт сервис справочников.
func NewService(api ProviderAPI) *Service {
	return &Service{api: api}
}

// Companies возвращает страховые компании.
func (s *Service) Companies(ctx context.Context) ([]models.Provider, error) {
	return s.load(ctx, models.ProviderKindCompany, s.api.ListCompanies)
}

// Breakdowns возвращает службы эвакуации.
func (s *Service) Breakdowns(ctx context.Context) ([]models.Provider, error) {
	return s.load(ctx, models.ProviderKindBreakdown, s.api.ListBreakdowns)
}

func (s *Service) load(ctx context.Context, kind string, fetch func(context.Context) ([]models.Provider, error)) ([]models.Provider, error) {
	providers, err := fetch(ctx)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"kind":  kind,
			"error": err.Error(),
		}).Error("directory: не удалось загрузить справочник")
		return nil, err
	}
	for i := range providers {
		providers[i].Kind = kind
		providers[i].Logo = s.api.ResolveURL(providers[i].Logo)
	}
	return providers, nil
}

// DialURL строит ссылку tel:// из номера. false, если цифр в номере нет.
func DialURL(phone string) (string, bool) {
	digits := validation.Digits(phone)
	if digits == "" {
		return "", false
	}
	u := url.URL{Scheme: "tel", Host: digits}
	return u.String(), true
}
