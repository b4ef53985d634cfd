// Package display отображает статусы и уровни в презентационные категории бейджей.
package display

import (
	"fmt"

	"github.com/craudioviz/partner-portal/internal/model"
)

// Category описывает презентационную категорию бейджа.
// Конкретные цвета выбирает клиент; сервер отдаёт только семантику.
type Category string

const (
	CategoryWarning  Category = "warning"  // жёлтый: новое, в ожидании
	CategoryInfo     Category = "info"     // синий: в работе, на рассмотрении
	CategorySuccess  Category = "success"  // зелёный: подтверждено, активно
	CategoryProgress Category = "progress" // фиолетовый: переговоры, предложение
	CategoryComplete Category = "complete" // изумрудный: выиграно, завершено
	CategoryDanger   Category = "danger"   // красный: потеряно, отклонено
	CategoryAlert    Category = "alert"    // оранжевый: возврат комиссии
	CategoryPremium  Category = "premium"  // янтарный: высший уровень партнёра
	CategoryNeutral  Category = "neutral"  // серый: значение по умолчанию
)

// LeadStatusCategory возвращает категорию бейджа для статуса лида.
func LeadStatusCategory(s model.LeadStatus) Category {
	switch s {
	case model.LeadStatusNew:
		return CategoryWarning
	case model.LeadStatusContacted:
		return CategoryInfo
	case model.LeadStatusQualified:
		return CategorySuccess
	case model.LeadStatusProposal, model.LeadStatusNegotiation:
		return CategoryProgress
	case model.LeadStatusWon:
		return CategoryComplete
	case model.LeadStatusLost, model.LeadStatusExpired:
		return CategoryDanger
	default:
		return CategoryNeutral
	}
}

// DealStatusCategory возвращает категорию бейджа для статуса сделки.
func DealStatusCategory(s model.DealStatus) Category {
	switch s {
	case model.DealStatusPending:
		return CategoryWarning
	case model.DealStatusActive:
		return CategorySuccess
	case model.DealStatusCompleted:
		return CategoryComplete
	case model.DealStatusCancelled:
		return CategoryDanger
	case model.DealStatusClawback:
		return CategoryAlert
	default:
		return CategoryNeutral
	}
}

// PaymentStatusCategory возвращает категорию бейджа для статуса выплаты.
func PaymentStatusCategory(s model.PaymentStatus) Category {
	switch s {
	case model.PaymentStatusPending:
		return CategoryWarning
	case model.PaymentStatusPaid:
		return CategorySuccess
	case model.PaymentStatusClawback:
		return CategoryDanger
	default:
		return CategoryNeutral
	}
}

// ApplicationStatusCategory возвращает категорию бейджа для статуса заявки.
func ApplicationStatusCategory(s model.ApplicationStatus) Category {
	switch s {
	case model.ApplicationStatusPending:
		return CategoryWarning
	case model.ApplicationStatusUnderReview:
		return CategoryInfo
	case model.ApplicationStatusApproved:
		return CategorySuccess
	case model.ApplicationStatusRejected:
		return CategoryDanger
	default:
		return CategoryNeutral
	}
}

// TierCategory возвращает категорию бейджа для уровня партнёра.
func TierCategory(t model.PartnerTier) Category {
	switch t {
	case model.TierStarter:
		return CategoryNeutral
	case model.TierProven:
		return CategoryInfo
	case model.TierElite:
		return CategoryProgress
	case model.TierElitePlus:
		return CategoryPremium
	default:
		return CategoryNeutral
	}
}

// DifficultyCategory возвращает категорию бейджа для сложности продукта.
func DifficultyCategory(d model.ProductDifficulty) Category {
	switch d {
	case model.DifficultyEasy:
		return CategorySuccess
	case model.DifficultyMedium:
		return CategoryWarning
	case model.DifficultyHard:
		return CategoryAlert
	case model.DifficultyExpert:
		return CategoryDanger
	default:
		return CategoryNeutral
	}
}

// ProductTierLabel возвращает человекочитаемую подпись уровня продукта.
func ProductTierLabel(tier int) string {
	switch tier {
	case 1:
		return "Tier 1 - Entry Level"
	case 2:
		return "Tier 2 - Professional"
	case 3:
		return "Tier 3 - Enterprise"
	case 4:
		return "Tier 4 - Custom Solutions"
	default:
		return fmt.Sprintf("Tier %d", tier)
	}
}
