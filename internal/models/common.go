package models

// Currency tokens accepted on money-bearing entities.
const (
	CurrencyBRL = "BRL"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

var Currencies = []string{CurrencyBRL, CurrencyUSD, CurrencyEUR}

// Priority tokens shared by projects and tasks.
var Priorities = []string{"low", "medium", "high", "urgent"}

const DefaultPriority = "medium"
