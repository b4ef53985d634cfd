// Package handler содержит HTTP-обработчики API партнёрского портала.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/craudioviz/partner-portal/internal/middleware"
	"github.com/craudioviz/partner-portal/internal/model"
	"github.com/craudioviz/partner-portal/internal/repository"
	"github.com/craudioviz/partner-portal/internal/service"
	"github.com/craudioviz/partner-portal/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	SubmitApplication(ctx context.Context, app *model.PartnerApplication) (*model.PartnerApplication, error)
	GetApplicationByUserID(ctx context.Context, userID string) (*model.PartnerApplication, error)
	GetPartnerByUserID(ctx context.Context, userID string) (*model.Partner, error)
	Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error)
	LeadsForUser(ctx context.Context, userID string) ([]service.LeadSummary, error)
	SetLeadStatus(ctx context.Context, userID string, leadID int64, status model.LeadStatus) error
	DealsForUser(ctx context.Context, userID string) ([]service.DealSummary, error)
	CreateDeal(ctx context.Context, userID string, in service.DealInput) (*model.Deal, error)
	Products(ctx context.Context) ([]model.Product, error)
	DocumentsForUser(ctx context.Context, userID string) ([]model.Document, error)
	Chat(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// Handler реализует HTTP-обработчики API партнёрского портала.
type Handler struct {
	service        Service
	logger         *zap.Logger
	validator      *validation.Validator
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		validator:      validation.New(),
		authMiddleware: auth,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

type applicationRequest struct {
	UserID               string   `json:"user_id" validate:"required"`
	CompanyName          string   `json:"company_name" validate:"required"`
	ContactName          string   `json:"contact_name" validate:"required"`
	Email                string   `json:"email" validate:"required"`
	Phone                string   `json:"phone" validate:"required"`
	Website              string   `json:"website"`
	BusinessType         string   `json:"business_type" validate:"required"`
	YearsInBusiness      int      `json:"years_in_business" validate:"required"`
	SalesExperience      string   `json:"sales_experience" validate:"required"`
	TargetMarkets        []string `json:"target_markets" validate:"required,min=1"`
	ExpectedMonthlySales float64  `json:"expected_monthly_sales" validate:"required"`
	HowHeardAboutUs      string   `json:"how_heard_about_us" validate:"required"`
	LinkedinURL          string   `json:"linkedin_url"`
	References           string   `json:"references"`
}

type applicationResponse struct {
	Success     bool                      `json:"success"`
	Application *model.PartnerApplication `json:"application"`
	Message     string                    `json:"message"`
}

// SubmitApplication принимает заявку на вступление в партнёрскую программу.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		var ferr *validation.FieldError
		if errors.As(err, &ferr) {
			h.writeError(w, http.StatusBadRequest, ferr.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app := &model.PartnerApplication{
		UserID:               req.UserID,
		CompanyName:          req.CompanyName,
		ContactName:          req.ContactName,
		Email:                req.Email,
		Phone:                req.Phone,
		Website:              req.Website,
		BusinessType:         req.BusinessType,
		YearsInBusiness:      req.YearsInBusiness,
		SalesExperience:      req.SalesExperience,
		TargetMarkets:        req.TargetMarkets,
		ExpectedMonthlySales: req.ExpectedMonthlySales,
		HowHeardAboutUs:      req.HowHeardAboutUs,
		LinkedinURL:          req.LinkedinURL,
		References:           req.References,
	}

	stored, err := h.service.SubmitApplication(r.Context(), app)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationExists) {
			h.writeError(w, http.StatusConflict, "Application already exists for this user")
			return
		}
		h.logger.Error("submit application error", zap.Error(err), zap.String("userID", req.UserID))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, applicationResponse{
		Success:     true,
		Application: stored,
		Message:     "Application submitted successfully",
	})
}

// GetApplication возвращает заявку по user_id.
// Отсутствие заявки — успешный ответ с application = null.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id parameter required")
		return
	}

	app, err := h.service.GetApplicationByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("get application error", zap.Error(err), zap.String("userID", userID))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Application *model.PartnerApplication `json:"application"`
	}{Application: app})
}

// GetDashboard возвращает агрегаты дашборда текущего партнёра.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	stats, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			h.writeError(w, http.StatusNotFound, "partner not found")
			return
		}
		h.logger.Error("dashboard error", zap.Error(err), zap.String("userID", userID))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// GetLeads возвращает лиды текущего партнёра с оставшимися сроками.
func (h *Handler) GetLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	leads, err := h.service.LeadsForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			h.writeError(w, http.StatusNotFound, "partner not found")
			return
		}
		h.logger.Error("get leads error", zap.Error(err), zap.String("userID", userID))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, leads)
}

type leadStatusRequest struct {
	Status model.LeadStatus `json:"status"`
}

// SetLeadStatus устанавливает статус лида текущего партнёра.
func (h *Handler) SetLeadStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	leadID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var req leadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetLeadStatus(r.Context(), userID, leadID, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLeadStatus):
			h.writeError(w, http.StatusUnprocessableEntity, "invalid lead status")
		case errors.Is(err, repository.ErrLeadNotFound):
			h.writeError(w, http.StatusNotFound, "lead not found")
		case errors.Is(err, repository.ErrPartnerNotFound):
			h.writeError(w, http.StatusNotFound, "partner not found")
		default:
			h.logger.Error("set lead status error", zap.Error(err),
				zap.String("userID", userID), zap.Int64("leadID", leadID))
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetDeals возвращает сделки текущего партнёра с состоянием окна возврата комиссии.
func (h *Handler) GetDeals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	deals, err := h.service.DealsForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			h.writeError(w, http.StatusNotFound, "partner not found")
			return
		}
		h.logger.Error("get deals error", zap.Error(err), zap.String("userID", userID))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, deals)
}

type dealRequest struct {
	LeadID        int64   `json:"lead_id" validate:"required"`
	ProductID     int64   `json:"product_id" validate:"required"`
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerEmail string  `json:"customer_email" validate:"required"`
	DealValue     float64 `json:"deal_value" validate:"required"`
	Notes         string  `json:"notes"`
}

// CreateDeal регистрирует новую сделку текущего партнёра.
func (h *Handler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req dealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		var ferr *validation.FieldError
		if errors.As(err, &ferr) {
			h.writeError(w, http.StatusBadRequest, ferr.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deal, err := h.service.CreateDeal(r.Context(), userID, service.DealInput{
		LeadID:        req.LeadID,
		ProductID:     req.ProductID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		DealValue:     req.DealValue,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPartnerNotFound):
			h.writeError(w, http.StatusNotFound, "partner not found")
		case errors.Is(err, repository.ErrProductNotFound):
			h.writeError(w, http.StatusUnprocessableEntity, "unknown product")
		default:
			h.logger.Error("create deal error", zap.Error(err), zap.String("userID", userID))
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, deal)
}

// GetProducts возвращает активный каталог продуктов.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		h.logger.Error("get products error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// GetDocuments возвращает документы, доступные текущему партнёру по его уровню.
func (h *Handler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	docs, err := h.service.DocumentsForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			h.writeError(w, http.StatusNotFound, "partner not found")
			return
		}
		h.logger.Error("get documents error", zap.Error(err), zap.String("userID", userID))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, docs)
}

type chatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Message string `json:"message"`
}

// Chat возвращает ответ ассистента на переданный диалог.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request: messages array required")
		return
	}

	if req.Messages == nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request: messages array required")
		return
	}

	reply, err := h.service.Chat(r.Context(), req.Messages)
	if err != nil {
		h.logger.Error("chat error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get response from AI")
		return
	}

	h.writeJSON(w, http.StatusOK, chatResponse{Message: reply})
}
