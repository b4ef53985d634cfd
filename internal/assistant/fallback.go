// Package assistant предоставляет клиент чат-ассистента партнёрского портала.
package assistant

import (
	"strings"

	"github.com/craudioviz/partner-portal/internal/model"
)

// Канонические ответы демо-режима. Тексты зафиксированы: клиенты
// сверяют их побайтово, менять формулировки нельзя.
const (
	fallbackDefault    = "Hi! I'm Javari, your AI assistant for the CR AudioViz AI Partner Portal. I can help you understand our products, commission structures, and sales strategies. What would you like to know?"
	fallbackCommission = "Our commission structure offers 15-25% on Year 1 sales, with 3-10% recurring annually. The exact rate depends on the product tier and your partner status. STARTER partners begin at 15-20%, while ELITE+ partners can earn up to 25%."
	fallbackProducts   = "We have 5 main product categories: Spirits App (Tier 1, easiest to sell), Realtor AI Suite (Tier 2), Market Oracle (Tier 2), CRAudioViz Pro (Tier 3), and Enterprise Solutions (Tier 4). Each has different commission rates and sales cycles."
	fallbackClawback   = "Our clawback policy protects both parties: 100% clawback within 90 days if the customer cancels, 50% clawback between 90-180 days. After 180 days, your commission is fully vested."
)

// FallbackReply выбирает детерминированный ответ без обращения к внешнему AI.
// Выбор идёт по подстрокам последнего сообщения диалога; порядок проверок фиксирован.
func FallbackReply(messages []model.ChatMessage) string {
	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}

	lower := strings.ToLower(last)

	switch {
	case strings.Contains(lower, "commission") || strings.Contains(lower, "earn"):
		return fallbackCommission
	case strings.Contains(lower, "product") || strings.Contains(lower, "sell"):
		return fallbackProducts
	case strings.Contains(lower, "clawback") || strings.Contains(lower, "cancel"):
		return fallbackClawback
	default:
		return fallbackDefault
	}
}
