// Package service реализует бизнес-логику партнёрского портала.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/craudioviz/partner-portal/internal/assistant"
	"github.com/craudioviz/partner-portal/internal/commission"
	"github.com/craudioviz/partner-portal/internal/model"
	"github.com/craudioviz/partner-portal/internal/repository"
)

// ErrInvalidLeadStatus возвращается при попытке установить неизвестный статус лида.
var ErrInvalidLeadStatus = errors.New("invalid lead status")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetPartnerByUserID(ctx context.Context, userID string) (*model.Partner, error)
	CreateApplication(ctx context.Context, app *model.PartnerApplication) (*model.PartnerApplication, error)
	GetApplicationByUserID(ctx context.Context, userID string) (*model.PartnerApplication, error)
	GetLeadsByPartner(ctx context.Context, partnerID int64) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, partnerID, leadID int64, status model.LeadStatus) error
	MarkExpiredLeads(ctx context.Context, now time.Time) (int64, error)
	GetDealsByPartner(ctx context.Context, partnerID int64) ([]model.Deal, error)
	CreateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error)
	GetActiveProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	GetDocumentsForTiers(ctx context.Context, tiers []model.PartnerTier) ([]model.Document, error)
}

// Service содержит бизнес-логику партнёрского портала.
type Service struct {
	repo Repository
	ai   *assistant.Client
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом ассистента.
// Нулевой клиент ассистента включает детерминированный демо-режим чата.
func NewService(repo Repository, ai *assistant.Client) *Service {
	return &Service{
		repo: repo,
		ai:   ai,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// SubmitApplication сохраняет заявку на вступление в программу со статусом pending.
// На пользователя допускается одна заявка; повторная подача возвращает
// repository.ErrApplicationExists. 90-дневный кулдаун повторной подачи после
// отклонения описан в условиях программы, но здесь не проверяется.
func (s *Service) SubmitApplication(ctx context.Context, app *model.PartnerApplication) (*model.PartnerApplication, error) {
	_, err := s.repo.GetApplicationByUserID(ctx, app.UserID)
	if err == nil {
		return nil, repository.ErrApplicationExists
	}
	if !errors.Is(err, repository.ErrApplicationNotFound) {
		return nil, err
	}

	// Гонку между проверкой и вставкой закрывает уникальный индекс по user_id
	return s.repo.CreateApplication(ctx, app)
}

// GetApplicationByUserID возвращает заявку пользователя.
// Отсутствие заявки — не ошибка: возвращается nil, nil.
func (s *Service) GetApplicationByUserID(ctx context.Context, userID string) (*model.PartnerApplication, error) {
	app, err := s.repo.GetApplicationByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

// GetPartnerByUserID возвращает партнёра текущего пользователя.
func (s *Service) GetPartnerByUserID(ctx context.Context, userID string) (*model.Partner, error) {
	return s.repo.GetPartnerByUserID(ctx, userID)
}

// Dashboard возвращает агрегаты дашборда партнёра по его сделкам и лидам.
func (s *Service) Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error) {
	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	deals, err := s.repo.GetDealsByPartner(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	leads, err := s.repo.GetLeadsByPartner(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	stats := commission.Stats(deals)
	stats.TotalLeads = len(leads)

	now := time.Now()
	for _, l := range leads {
		if l.CreatedAt.Year() == now.Year() && l.CreatedAt.Month() == now.Month() {
			stats.LeadsThisMonth++
		}
	}

	return &stats, nil
}

// LeadSummary дополняет лид числом дней до дедлайнов; отрицательное значение — просрочка.
type LeadSummary struct {
	model.Lead
	ContactDaysLeft int `json:"contact_days_left"`
	CloseDaysLeft   int `json:"close_days_left"`
}

// LeadsForUser возвращает лиды партнёра текущего пользователя с оставшимися сроками.
func (s *Service) LeadsForUser(ctx context.Context, userID string) ([]LeadSummary, error) {
	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	leads, err := s.repo.GetLeadsByPartner(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := make([]LeadSummary, 0, len(leads))
	for _, l := range leads {
		res = append(res, LeadSummary{
			Lead:            l,
			ContactDaysLeft: commission.DaysUntil(l.ContactDeadline, now),
			CloseDaysLeft:   commission.DaysUntil(l.CloseDeadline, now),
		})
	}

	return res, nil
}

// SetLeadStatus устанавливает статус лида текущего пользователя.
// Воронка свободная: допустим переход между любыми известными статусами.
func (s *Service) SetLeadStatus(ctx context.Context, userID string, leadID int64, status model.LeadStatus) error {
	if !model.IsValidLeadStatus(status) {
		return ErrInvalidLeadStatus
	}

	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return err
	}

	return s.repo.UpdateLeadStatus(ctx, partner.ID, leadID, status)
}

// DealSummary дополняет сделку текущим состоянием окна возврата комиссии.
// Сумма возврата считается от сохранённой commission_amount.
type DealSummary struct {
	model.Deal
	ClawbackEligible bool    `json:"clawback_eligible"`
	ClawbackAmount   float64 `json:"clawback_amount"`
}

// DealsForUser возвращает сделки партнёра текущего пользователя.
func (s *Service) DealsForUser(ctx context.Context, userID string) ([]DealSummary, error) {
	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	deals, err := s.repo.GetDealsByPartner(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := make([]DealSummary, 0, len(deals))
	for _, d := range deals {
		summary := DealSummary{Deal: d}
		if d.ClosedAt != nil {
			days := int(now.Sub(*d.ClosedAt).Hours() / 24)
			summary.ClawbackEligible = commission.IsClawbackEligible(*d.ClosedAt, commission.DefaultClawbackWindowDays)
			summary.ClawbackAmount = commission.ClawbackAmount(d.CommissionAmount, days)
		}
		res = append(res, summary)
	}

	return res, nil
}

// DealInput описывает данные новой сделки.
type DealInput struct {
	LeadID        int64
	ProductID     int64
	CustomerName  string
	CustomerEmail string
	DealValue     float64
	Notes         string
}

// CreateDeal создаёт сделку текущего пользователя. Ставка берётся из каталога
// (комиссия первого года продукта), сумма комиссии рассчитывается и сохраняется
// один раз — дальнейшие чтения используют сохранённое значение.
func (s *Service) CreateDeal(ctx context.Context, userID string, in DealInput) (*model.Deal, error) {
	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.GetProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	rate := product.CommissionYear1
	deal := &model.Deal{
		PartnerID:        partner.ID,
		LeadID:           in.LeadID,
		ProductID:        in.ProductID,
		CustomerName:     in.CustomerName,
		CustomerEmail:    in.CustomerEmail,
		DealValue:        in.DealValue,
		CommissionRate:   rate,
		CommissionAmount: commission.Calculate(in.DealValue, rate),
		Status:           model.DealStatusPending,
		PaymentStatus:    model.PaymentStatusPending,
		Notes:            in.Notes,
	}

	return s.repo.CreateDeal(ctx, deal)
}

// Products возвращает активный каталог продуктов.
func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	return s.repo.GetActiveProducts(ctx)
}

// DocumentsForUser возвращает документы, доступные партнёру текущего пользователя:
// все уровни не выше его собственного. Неизвестный уровень не открывает ничего.
func (s *Service) DocumentsForUser(ctx context.Context, userID string) ([]model.Document, error) {
	partner, err := s.repo.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.GetDocumentsForTiers(ctx, model.AccessibleTiers(partner.Tier))
}

// Chat возвращает ответ ассистента на диалог.
// Без настроенного AI-клиента используется детерминированный набор ответов.
func (s *Service) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if s.ai == nil {
		return assistant.FallbackReply(messages), nil
	}
	return s.ai.Reply(ctx, messages)
}

// StartLeadExpirySweeper запускает фоновый процесс, помечающий лиды
// с истёкшим close_deadline статусом expired.
func (s *Service) StartLeadExpirySweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = s.repo.MarkExpiredLeads(ctx, time.Now())
			}
		}
	}()
}
