package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

// ErrUnavailable is returned when an Edge Function fails, times out, or
// reports success=false.
var ErrUnavailable = errors.New("lookup service unavailable")

const (
	fnClassify       = "hs-code-smart-search"
	fnTariffRate     = "tariff-rate"
	fnCertifications = "customs-verification"
	fnExchangeRate   = "exchange-rate"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) invoke(ctx context.Context, fn string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+fn, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: status %d: %s", ErrUnavailable, fn, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrUnavailable, fn, err)
	}
	return nil
}

type classifyResponse struct {
	Status      string  `json:"status"`
	HSCode      string  `json:"hsCode"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Card        *struct {
		NameKo *string `json:"name_ko"`
		NameEn *string `json:"name_en"`
	} `json:"card"`
	Candidates []struct {
		HSCode     string  `json:"hs_code"`
		NameKo     string  `json:"name_ko"`
		Confidence float64 `json:"confidence"`
	} `json:"candidates"`
}

func (c *Client) Classify(ctx context.Context, productName string) ([]model.HSCandidate, error) {
	var resp classifyResponse
	if err := c.invoke(ctx, fnClassify, map[string]string{"query": productName}, &resp); err != nil {
		return nil, err
	}

	candidates := []model.HSCandidate{}
	if resp.Status != "success" && len(resp.Candidates) == 0 {
		return candidates, nil
	}

	seen := map[string]bool{}
	if resp.HSCode != "" {
		name := resp.Description
		if resp.Card != nil && resp.Card.NameKo != nil {
			name = *resp.Card.NameKo
		}
		candidates = append(candidates, model.HSCandidate{Code: resp.HSCode, LocalName: name, Confidence: resp.Score})
		seen[resp.HSCode] = true
	}
	for _, cand := range resp.Candidates {
		if seen[cand.HSCode] {
			continue
		}
		seen[cand.HSCode] = true
		candidates = append(candidates, model.HSCandidate{Code: cand.HSCode, LocalName: cand.NameKo, Confidence: cand.Confidence})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates, nil
}

type tier struct {
	Rate *float64 `json:"rate"`
}

type tariffResponse struct {
	Success     bool `json:"success"`
	TariffRates struct {
		Basic      *tier `json:"basic"`
		WTO        *tier `json:"wto"`
		FTAUS      *tier `json:"fta_us"`
		FTAVietnam *tier `json:"fta_vietnam"`
		FTAChina   *tier `json:"fta_china"`
	} `json:"tariffRates"`
}

func (t *tier) rate() *float64 {
	if t == nil {
		return nil
	}
	return t.Rate
}

// LookupRates fetches the published tariff tiers for a 10-digit HS code.
// The US and Vietnam agreements share the FTA tier; when both exist the
// lower one is kept.
func (c *Client) LookupRates(ctx context.Context, hsCode string) (model.TariffRates, error) {
	var resp tariffResponse
	if err := c.invoke(ctx, fnTariffRate, map[string]string{"hsCode": hsCode}, &resp); err != nil {
		return model.TariffRates{}, err
	}
	if !resp.Success {
		return model.TariffRates{}, fmt.Errorf("%w: %s: success=false", ErrUnavailable, fnTariffRate)
	}

	r := resp.TariffRates
	return model.TariffRates{
		Basic:        r.Basic.rate(),
		WTO:          r.WTO.rate(),
		FTA:          lower(r.FTAUS.rate(), r.FTAVietnam.rate()),
		BilateralFTA: r.FTAChina.rate(),
	}, nil
}

func lower(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return b
	default:
		return a
	}
}

type certificationResponse struct {
	Success      bool `json:"success"`
	TotalCount   int  `json:"totalCount"`
	Requirements []struct {
		DocumentName string `json:"documentName"`
		LawName      string `json:"lawName"`
	} `json:"requirements"`
}

func (c *Client) Certifications(ctx context.Context, hsCode string) ([]string, error) {
	var resp certificationResponse
	if err := c.invoke(ctx, fnCertifications, map[string]string{"hsCode": hsCode}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s: success=false", ErrUnavailable, fnCertifications)
	}

	names := []string{}
	for _, req := range resp.Requirements {
		name := req.DocumentName
		if name == "" {
			name = req.LawName
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

type rateResponse struct {
	Success           bool   `json:"success"`
	Date              string `json:"date"`
	PrimaryCurrencies map[string]struct {
		Rate float64 `json:"rate"`
	} `json:"primaryCurrencies"`
}

func (c *Client) LatestRate(ctx context.Context, date *time.Time) (model.ExchangeRate, error) {
	day := time.Now().UTC()
	if date != nil {
		day = *date
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var resp rateResponse
	if err := c.invoke(ctx, fnExchangeRate, map[string]string{"date": day.Format("20060102")}, &resp); err != nil {
		return model.ExchangeRate{}, err
	}
	if !resp.Success {
		return model.ExchangeRate{}, fmt.Errorf("%w: %s: success=false", ErrUnavailable, fnExchangeRate)
	}

	usd, cny := resp.PrimaryCurrencies["USD"].Rate, resp.PrimaryCurrencies["CNY"].Rate
	if usd <= 0 || cny <= 0 {
		return model.ExchangeRate{}, fmt.Errorf("%w: %s: missing USD or CNY rate", ErrUnavailable, fnExchangeRate)
	}

	if parsed, err := time.Parse("20060102", resp.Date); err == nil {
		day = parsed
	}
	rate := model.ExchangeRate{Date: day, USDRate: usd, CNYRate: cny, Source: fnExchangeRate}
	if eur, ok := resp.PrimaryCurrencies["EUR"]; ok && eur.Rate > 0 {
		rate.EURRate = &eur.Rate
	}
	if jpy, ok := resp.PrimaryCurrencies["JPY"]; ok && jpy.Rate > 0 {
		rate.JPYRate = &jpy.Rate
	}
	return rate, nil
}
