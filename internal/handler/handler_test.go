package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/craudioviz/partner-portal/internal/middleware"
	"github.com/craudioviz/partner-portal/internal/model"
	"github.com/craudioviz/partner-portal/internal/repository"
	"github.com/craudioviz/partner-portal/internal/service"
)

type stubService struct {
	submitResp *model.PartnerApplication
	submitErr  error

	appResp *model.PartnerApplication
	appErr  error

	statsResp *model.DashboardStats
	statsErr  error

	leadsResp []service.LeadSummary
	leadsErr  error

	setStatusErr error

	dealsResp []service.DealSummary
	dealsErr  error

	createDealResp *model.Deal
	createDealErr  error

	productsResp []model.Product
	productsErr  error

	documentsResp []model.Document
	documentsErr  error

	chatResp string
	chatErr  error
}

func (s *stubService) SubmitApplication(ctx context.Context, app *model.PartnerApplication) (*model.PartnerApplication, error) {
	return s.submitResp, s.submitErr
}

func (s *stubService) GetApplicationByUserID(ctx context.Context, userID string) (*model.PartnerApplication, error) {
	return s.appResp, s.appErr
}

func (s *stubService) GetPartnerByUserID(ctx context.Context, userID string) (*model.Partner, error) {
	return nil, nil
}

func (s *stubService) Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error) {
	return s.statsResp, s.statsErr
}

func (s *stubService) LeadsForUser(ctx context.Context, userID string) ([]service.LeadSummary, error) {
	return s.leadsResp, s.leadsErr
}

func (s *stubService) SetLeadStatus(ctx context.Context, userID string, leadID int64, status model.LeadStatus) error {
	return s.setStatusErr
}

func (s *stubService) DealsForUser(ctx context.Context, userID string) ([]service.DealSummary, error) {
	return s.dealsResp, s.dealsErr
}

func (s *stubService) CreateDeal(ctx context.Context, userID string, in service.DealInput) (*model.Deal, error) {
	return s.createDealResp, s.createDealErr
}

func (s *stubService) Products(ctx context.Context) ([]model.Product, error) {
	return s.productsResp, s.productsErr
}

func (s *stubService) DocumentsForUser(ctx context.Context, userID string) ([]model.Document, error) {
	return s.documentsResp, s.documentsErr
}

func (s *stubService) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	return s.chatResp, s.chatErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth)
}

func validApplicationBody() map[string]any {
	return map[string]any{
		"user_id":                "u-1",
		"company_name":           "Acme Partners",
		"contact_name":           "Jo Smith",
		"email":                  "jo@acme.test",
		"phone":                  "+1-555-0100",
		"business_type":          "consulting",
		"years_in_business":      4,
		"sales_experience":       "5 years b2b saas",
		"target_markets":         []string{"real estate"},
		"expected_monthly_sales": 20000,
		"how_heard_about_us":     "referral",
	}
}

func TestSubmitApplication_Success(t *testing.T) {
	svc := &stubService{
		submitResp: &model.PartnerApplication{
			ID:     1,
			UserID: "u-1",
			Status: model.ApplicationStatusPending,
		},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(validApplicationBody())

	req := httptest.NewRequest(http.MethodPost, "/api/partner/applications", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.SubmitApplication(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp applicationResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Application == nil || resp.Application.Status != model.ApplicationStatusPending {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubmitApplication_MissingField(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	payload := validApplicationBody()
	delete(payload, "business_type")
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/partner/applications", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.SubmitApplication(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	var resp errorResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "missing required field: business_type" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestSubmitApplication_Duplicate(t *testing.T) {
	svc := &stubService{
		submitErr: repository.ErrApplicationExists,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(validApplicationBody())

	req := httptest.NewRequest(http.MethodPost, "/api/partner/applications", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.SubmitApplication(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
}

func TestGetApplication_RequiresUserID(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/partner/applications", nil)
	rec := httptest.NewRecorder()

	h.GetApplication(rec, req)

	if rec.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestGetApplication_NotFoundIsNull(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/partner/applications?user_id=u-1", nil)
	rec := httptest.NewRecorder()

	h.GetApplication(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp struct {
		Application *model.PartnerApplication `json:"application"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Application != nil {
		t.Fatalf("application = %+v, want null", resp.Application)
	}
}

func authRequest(t *testing.T, h *Handler, method, target string, body *bytes.Reader) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	h.authMiddleware.SetAuthCookie(rec, "u-1")
	req.AddCookie(rec.Result().Cookies()[0])

	return req
}

func TestGetDashboard_OK(t *testing.T) {
	svc := &stubService{
		statsResp: &model.DashboardStats{TotalLeads: 3, ConversionRate: 66.7},
	}
	h := newTestHandler(t, svc)

	req := authRequest(t, h, http.MethodGet, "/api/partner/dashboard", nil)
	rec := httptest.NewRecorder()

	h.authMiddleware.Middleware(http.HandlerFunc(h.GetDashboard)).ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var stats model.DashboardStats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.ConversionRate != 66.7 {
		t.Fatalf("conversion rate = %v, want 66.7", stats.ConversionRate)
	}
}

func TestGetDashboard_NoPartner(t *testing.T) {
	svc := &stubService{
		statsErr: repository.ErrPartnerNotFound,
	}
	h := newTestHandler(t, svc)

	req := authRequest(t, h, http.MethodGet, "/api/partner/dashboard", nil)
	rec := httptest.NewRecorder()

	h.authMiddleware.Middleware(http.HandlerFunc(h.GetDashboard)).ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusNotFound)
	}
}

func TestSetLeadStatus_InvalidStatus(t *testing.T) {
	svc := &stubService{
		setStatusErr: service.ErrInvalidLeadStatus,
	}
	h := newTestHandler(t, svc)

	router := h.SetupRouter()

	body, _ := json.Marshal(leadStatusRequest{Status: "archived"})
	req := authRequest(t, h, http.MethodPost, "/api/partner/leads/5/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestSetLeadStatus_BadID(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	router := h.SetupRouter()

	body, _ := json.Marshal(leadStatusRequest{Status: model.LeadStatusContacted})
	req := authRequest(t, h, http.MethodPost, "/api/partner/leads/abc/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestProtectedRoutes_Unauthorized(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/partner/deals", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestCreateDeal_MissingField(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	router := h.SetupRouter()

	body, _ := json.Marshal(map[string]any{
		"lead_id":    1,
		"product_id": 2,
		"deal_value": 5000,
	})
	req := authRequest(t, h, http.MethodPost, "/api/partner/deals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	var resp errorResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Error, "missing required field: ") {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestChat_ReturnsMessage(t *testing.T) {
	svc := &stubService{
		chatResp: "canned reply",
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	body, _ := json.Marshal(chatRequest{
		Messages: []model.ChatMessage{{Role: "user", Content: "hello"}},
	})
	req := authRequest(t, h, http.MethodPost, "/api/partner/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp chatResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "canned reply" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestChat_MissingMessages(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	router := h.SetupRouter()

	body, _ := json.Marshal(map[string]any{})
	req := authRequest(t, h, http.MethodPost, "/api/partner/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusBadRequest)
	}
}
