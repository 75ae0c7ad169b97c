package models

import "strings"

// Стоимость одного кредита и множитель для перевода в минорные единицы валюты.
const (
	creditUnitRate  = 10
	currencySubunit = 100
)

// Plan тарифный план покупки кредитов.
type Plan struct {
	ID      string
	Credits int
}

// Plans фиксированная таблица тарифов.
var Plans = map[string]Plan{
	"basic":    {ID: "basic", Credits: 100},
	"standard": {ID: "standard", Credits: 250},
	"premium":  {ID: "premium", Credits: 500},
}

// FindPlan возвращает план по идентификатору без учета регистра.
func FindPlan(planID string) (Plan, bool) {
	plan, ok := Plans[strings.ToLower(strings.TrimSpace(planID))]
	return plan, ok
}

// Amount возвращает стоимость плана в минорных единицах валюты.
func (p Plan) Amount() int64 {
	return int64(p.Credits) * creditUnitRate * currencySubunit
}
