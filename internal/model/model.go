// Package model содержит доменные сущности партнёрского портала.
package model

import "time"

// PartnerTier описывает уровень партнёра в программе.
type PartnerTier string

const (
	TierStarter   PartnerTier = "STARTER"
	TierProven    PartnerTier = "PROVEN"
	TierElite     PartnerTier = "ELITE"
	TierElitePlus PartnerTier = "ELITE_PLUS"
)

// TierOrder задаёт фиксированный порядок уровней партнёров от младшего к старшему.
var TierOrder = []PartnerTier{TierStarter, TierProven, TierElite, TierElitePlus}

// TierIndex возвращает позицию уровня в фиксированном порядке или -1 для неизвестного значения.
func TierIndex(tier PartnerTier) int {
	for i, t := range TierOrder {
		if t == tier {
			return i
		}
	}
	return -1
}

// AccessibleTiers возвращает уровни документов, доступные партнёру указанного уровня:
// префикс фиксированного порядка до уровня партнёра включительно.
// Для неизвестного уровня возвращается пустой набор — доступ запрещён по умолчанию.
func AccessibleTiers(tier PartnerTier) []PartnerTier {
	idx := TierIndex(tier)
	if idx < 0 {
		return nil
	}
	res := make([]PartnerTier, idx+1)
	copy(res, TierOrder[:idx+1])
	return res
}

// PartnerStatus описывает статус партнёра в программе.
type PartnerStatus string

const (
	PartnerStatusPending    PartnerStatus = "pending"
	PartnerStatusApproved   PartnerStatus = "approved"
	PartnerStatusActive     PartnerStatus = "active"
	PartnerStatusSuspended  PartnerStatus = "suspended"
	PartnerStatusTerminated PartnerStatus = "terminated"
)

// Partner представляет участника партнёрской программы.
// Счётчики total_sales, total_commissions, leads_allocated и leads_converted
// выводятся из закрытых сделок и никогда не редактируются напрямую.
type Partner struct {
	ID               int64         `json:"id"`
	UserID           string        `json:"user_id"`
	CompanyName      string        `json:"company_name"`
	ContactName      string        `json:"contact_name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	Website          string        `json:"website,omitempty"`
	Tier             PartnerTier   `json:"tier"`
	Status           PartnerStatus `json:"status"`
	CommissionRate   float64       `json:"commission_rate"`
	TotalSales       float64       `json:"total_sales"`
	TotalCommissions float64       `json:"total_commissions"`
	LeadsAllocated   int           `json:"leads_allocated"`
	LeadsConverted   int           `json:"leads_converted"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ApplicationStatus описывает статус заявки на вступление в программу.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// PartnerApplication представляет заявку на вступление в партнёрскую программу.
// У пользователя может быть не более одной заявки; статус меняет только ревьюер.
type PartnerApplication struct {
	ID                   int64             `json:"id"`
	UserID               string            `json:"user_id"`
	CompanyName          string            `json:"company_name"`
	ContactName          string            `json:"contact_name"`
	Email                string            `json:"email"`
	Phone                string            `json:"phone"`
	Website              string            `json:"website,omitempty"`
	BusinessType         string            `json:"business_type"`
	YearsInBusiness      int               `json:"years_in_business"`
	SalesExperience      string            `json:"sales_experience"`
	TargetMarkets        []string          `json:"target_markets"`
	ExpectedMonthlySales float64           `json:"expected_monthly_sales"`
	HowHeardAboutUs      string            `json:"how_heard_about_us"`
	LinkedinURL          string            `json:"linkedin_url,omitempty"`
	References           string            `json:"references,omitempty"`
	Status               ApplicationStatus `json:"status"`
	ReviewedBy           string            `json:"reviewed_by,omitempty"`
	ReviewNotes          string            `json:"review_notes,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// LeadStatus описывает стадию лида в воронке продаж.
// Граф переходов не контролируется: любой статус может смениться на любой другой.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusProposal    LeadStatus = "proposal"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusWon         LeadStatus = "won"
	LeadStatusLost        LeadStatus = "lost"
	LeadStatusExpired     LeadStatus = "expired"
)

// LeadStatuses перечисляет допустимые значения статуса лида.
var LeadStatuses = []LeadStatus{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusProposal,
	LeadStatusNegotiation, LeadStatusWon, LeadStatusLost, LeadStatusExpired,
}

// IsValidLeadStatus проверяет, что значение входит в набор допустимых статусов лида.
func IsValidLeadStatus(s LeadStatus) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Lead представляет потенциального клиента, закреплённого за партнёром.
type Lead struct {
	ID              int64      `json:"id"`
	PartnerID       int64      `json:"partner_id"`
	CompanyName     string     `json:"company_name"`
	ContactName     string     `json:"contact_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Source          string     `json:"source"`
	Status          LeadStatus `json:"status"`
	EstimatedValue  float64    `json:"estimated_value"`
	Notes           string     `json:"notes,omitempty"`
	ContactDeadline time.Time  `json:"contact_deadline"`
	CloseDeadline   time.Time  `json:"close_deadline"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DealStatus описывает статус сделки.
type DealStatus string

const (
	DealStatusPending   DealStatus = "pending"
	DealStatusActive    DealStatus = "active"
	DealStatusCompleted DealStatus = "completed"
	DealStatusCancelled DealStatus = "cancelled"
	DealStatusClawback  DealStatus = "clawback"
)

// PaymentStatus описывает статус выплаты комиссии — независимая от статуса сделки ось.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusClawback PaymentStatus = "clawback"
)

// Deal представляет сделку партнёра по лиду и продукту.
// CommissionAmount рассчитывается один раз при создании сделки и хранится;
// при расхождении с rate × value для выплат используется сохранённое значение.
type Deal struct {
	ID                    int64         `json:"id"`
	PartnerID             int64         `json:"partner_id"`
	LeadID                int64         `json:"lead_id"`
	ProductID             int64         `json:"product_id"`
	CustomerName          string        `json:"customer_name"`
	CustomerEmail         string        `json:"customer_email"`
	DealValue             float64       `json:"deal_value"`
	CommissionRate        float64       `json:"commission_rate"`
	CommissionAmount      float64       `json:"commission_amount"`
	Status                DealStatus    `json:"status"`
	PaymentStatus         PaymentStatus `json:"payment_status"`
	ClawbackEligibleUntil *time.Time    `json:"clawback_eligible_until,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
	ClosedAt              *time.Time    `json:"closed_at,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// ProductDifficulty описывает сложность продажи продукта.
type ProductDifficulty string

const (
	DifficultyEasy   ProductDifficulty = "easy"
	DifficultyMedium ProductDifficulty = "medium"
	DifficultyHard   ProductDifficulty = "hard"
	DifficultyExpert ProductDifficulty = "expert"
)

// Product представляет позицию каталога продуктов.
// Tier продукта (1–4) — категория сложности и цены, не связанная с уровнем партнёра.
type Product struct {
	ID                  int64             `json:"id"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	Tier                int               `json:"tier"`
	Difficulty          ProductDifficulty `json:"difficulty"`
	BasePrice           float64           `json:"base_price"`
	CommissionYear1     float64           `json:"commission_year1"`
	CommissionRecurring float64           `json:"commission_recurring"`
	TargetBuyer         string            `json:"target_buyer"`
	SalesCycleDays      int               `json:"sales_cycle_days"`
	TrainingRequired    bool              `json:"training_required"`
	NewProductBonus     float64           `json:"new_product_bonus,omitempty"`
	BonusExpiresAt      *time.Time        `json:"bonus_expires_at,omitempty"`
	Active              bool              `json:"active"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Document представляет материал, доступ к которому ограничен уровнем партнёра.
type Document struct {
	ID                  int64       `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Category            string      `json:"category"`
	FileURL             string      `json:"file_url"`
	FileType            string      `json:"file_type"`
	FileSize            int64       `json:"file_size"`
	PartnerTierRequired PartnerTier `json:"partner_tier_required"`
	Downloads           int         `json:"downloads"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// DashboardStats содержит агрегаты дашборда партнёра, вычисленные по его сделкам и лидам.
type DashboardStats struct {
	TotalLeads         int     `json:"total_leads"`
	LeadsThisMonth     int     `json:"leads_this_month"`
	ActiveDeals        int     `json:"active_deals"`
	DealsWon           int     `json:"deals_won"`
	TotalCommissions   float64 `json:"total_commissions"`
	PendingCommissions float64 `json:"pending_commissions"`
	ConversionRate     float64 `json:"conversion_rate"`
	AvgDealSize        float64 `json:"avg_deal_size"`
}

// ChatMessage представляет одно сообщение диалога с ассистентом.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
