// Package commission реализует расчёт комиссий, возвратов и агрегатов по сделкам.
// Все функции чистые: результат зависит только от аргументов, состояние не хранится.
package commission

import (
	"math"
	"time"

	"github.com/craudioviz/partner-portal/internal/model"
)

// DefaultClawbackWindowDays — стандартное окно возврата комиссии в днях.
const DefaultClawbackWindowDays = 90

// Calculate возвращает сумму комиссии: dealValue × ratePercent / 100.
// Ставка задаётся в процентах (0–100). Округление не применяется —
// вызывающая сторона округляет только при отображении. Знак не проверяется.
func Calculate(dealValue, ratePercent float64) float64 {
	return dealValue * ratePercent / 100
}

// IsClawbackEligible сообщает, попадает ли сделка в окно возврата комиссии
// на текущий момент. Результат зависит от времени вычисления и не кэшируется.
func IsClawbackEligible(closedAt time.Time, windowDays int) bool {
	return eligibleAt(closedAt, windowDays, time.Now())
}

// Ровно windowDays прошедших дней — уже не в окне (строгое «меньше»).
func eligibleAt(closedAt time.Time, windowDays int, now time.Time) bool {
	days := int(math.Floor(now.Sub(closedAt).Hours() / 24))
	return days < windowDays
}

// ClawbackAmount возвращает сумму возврата комиссии по числу дней с момента закрытия сделки.
// До 90 дней включительно возвращается вся комиссия, с 91 по 180 день — половина,
// после 180 дней комиссия закреплена и возврату не подлежит.
// Границы 90 и 180 относятся к нижнему интервалу; сдвиг на день меняет сумму списания.
func ClawbackAmount(commission float64, daysSinceClosed int) float64 {
	switch {
	case daysSinceClosed <= 90:
		return commission
	case daysSinceClosed <= 180:
		return commission * 0.5
	default:
		return 0
	}
}

// DaysUntil возвращает число полных дней до дедлайна: ceil((deadline − now) / сутки).
// Отрицательное значение означает просроченный дедлайн.
func DaysUntil(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

// Stats вычисляет агрегаты дашборда по набору сделок партнёра.
// Используются сохранённые commission_amount — суммы не пересчитываются из ставки и стоимости.
func Stats(deals []model.Deal) model.DashboardStats {
	var s model.DashboardStats

	completed := 0
	completedValue := 0.0
	nonPending := 0

	for _, d := range deals {
		switch d.PaymentStatus {
		case model.PaymentStatusPaid:
			s.TotalCommissions += d.CommissionAmount
		case model.PaymentStatusPending:
			s.PendingCommissions += d.CommissionAmount
		}

		if d.Status != model.DealStatusPending {
			nonPending++
		}
		if d.Status == model.DealStatusActive {
			s.ActiveDeals++
		}
		if d.Status == model.DealStatusCompleted {
			s.DealsWon++
			completed++
			completedValue += d.DealValue
		}
	}

	if len(deals) > 0 {
		s.ConversionRate = round1(float64(nonPending) / float64(len(deals)) * 100)
	}
	if completed > 0 {
		s.AvgDealSize = completedValue / float64(completed)
	}

	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
