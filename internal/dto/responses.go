package dto

import "github.com/anyulbade/trade-cost-backoffice/internal/model"

type ErrorResponse struct {
	Error string `json:"error"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

type QuoteListResponse struct {
	Data       []model.Quote `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

type HSCodeSearchResponse struct {
	Query   string              `json:"query"`
	Results []model.HSCandidate `json:"results"`
}

type ConversionResponse struct {
	Amount    float64            `json:"amount"`
	From      string             `json:"from"`
	To        string             `json:"to"`
	Result    float64            `json:"result"`
	Rate      model.ExchangeRate `json:"rate"`
	Estimated bool               `json:"estimated"`
}
