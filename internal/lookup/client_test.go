package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, fn string, status int, body string) (*Client, *map[string]string) {
	t.Helper()
	received := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/functions/v1/"+fn, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		_ = json.NewDecoder(r.Body).Decode(&received)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "test-key", 2*time.Second), &received
}

func TestClassify(t *testing.T) {
	t.Run("selection and candidates sorted by confidence", func(t *testing.T) {
		c, received := newTestServer(t, fnClassify, http.StatusOK, `{
			"status": "success", "hsCode": "3924100000", "description": "kitchenware", "score": 0.7,
			"card": {"name_ko": "주방용품"},
			"candidates": [
				{"hs_code": "3924100000", "name_ko": "dup", "confidence": 0.7},
				{"hs_code": "8215990000", "name_ko": "스푼", "confidence": 0.9}
			]}`)

		got, err := c.Classify(context.Background(), "silicone spatula")
		require.NoError(t, err)
		assert.Equal(t, "silicone spatula", (*received)["query"])
		require.Len(t, got, 2)
		assert.Equal(t, "8215990000", got[0].Code)
		assert.Equal(t, "3924100000", got[1].Code)
		assert.Equal(t, "주방용품", got[1].LocalName)
	})

	t.Run("no results is empty", func(t *testing.T) {
		c, _ := newTestServer(t, fnClassify, http.StatusOK, `{"status": "no_results"}`)
		got, err := c.Classify(context.Background(), "???")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLookupRates(t *testing.T) {
	t.Run("maps tiers", func(t *testing.T) {
		c, received := newTestServer(t, fnTariffRate, http.StatusOK, `{
			"success": true,
			"tariffRates": {
				"basic": {"rate": 8},
				"wto": {"rate": 6.5},
				"fta_us": {"rate": 4},
				"fta_vietnam": {"rate": 2},
				"fta_china": {"rate": 5.2}
			}}`)

		rates, err := c.LookupRates(context.Background(), "3924100000")
		require.NoError(t, err)
		assert.Equal(t, "3924100000", (*received)["hsCode"])
		assert.Equal(t, 8.0, *rates.Basic)
		assert.Equal(t, 6.5, *rates.WTO)
		assert.Equal(t, 2.0, *rates.FTA)
		assert.Equal(t, 5.2, *rates.BilateralFTA)
	})

	t.Run("missing tiers stay nil", func(t *testing.T) {
		c, _ := newTestServer(t, fnTariffRate, http.StatusOK, `{"success": true, "tariffRates": {"basic": {"rate": 0}}}`)
		rates, err := c.LookupRates(context.Background(), "3924100000")
		require.NoError(t, err)
		require.NotNil(t, rates.Basic)
		assert.Equal(t, 0.0, *rates.Basic)
		assert.Nil(t, rates.WTO)
		assert.Nil(t, rates.FTA)
		assert.Nil(t, rates.BilateralFTA)
	})

	t.Run("success false", func(t *testing.T) {
		c, _ := newTestServer(t, fnTariffRate, http.StatusOK, `{"success": false}`)
		_, err := c.LookupRates(context.Background(), "3924100000")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("server error", func(t *testing.T) {
		c, _ := newTestServer(t, fnTariffRate, http.StatusInternalServerError, `boom`)
		_, err := c.LookupRates(context.Background(), "3924100000")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Contains(t, err.Error(), "status 500")
	})
}

func TestCertifications(t *testing.T) {
	c, _ := newTestServer(t, fnCertifications, http.StatusOK, `{
		"success": true, "totalCount": 2,
		"requirements": [{"documentName": "KC certificate"}, {"lawName": "Food Sanitation Act"}, {}]}`)

	got, err := c.Certifications(context.Background(), "3924100000")
	require.NoError(t, err)
	assert.Equal(t, []string{"KC certificate", "Food Sanitation Act"}, got)
}

func TestLatestRate(t *testing.T) {
	t.Run("parses primary currencies", func(t *testing.T) {
		c, received := newTestServer(t, fnExchangeRate, http.StatusOK, `{
			"success": true, "date": "20251017",
			"primaryCurrencies": {"USD": {"rate": 1425.5}, "CNY": {"rate": 199.8}, "EUR": {"rate": 1660}}}`)

		day := time.Date(2025, 10, 17, 15, 0, 0, 0, time.UTC)
		rate, err := c.LatestRate(context.Background(), &day)
		require.NoError(t, err)
		assert.Equal(t, "20251017", (*received)["date"])
		assert.Equal(t, 1425.5, rate.USDRate)
		assert.Equal(t, 199.8, rate.CNYRate)
		require.NotNil(t, rate.EURRate)
		assert.Equal(t, 1660.0, *rate.EURRate)
		assert.Nil(t, rate.JPYRate)
		assert.Equal(t, time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC), rate.Date)
		assert.False(t, rate.Estimated)
	})

	t.Run("missing CNY", func(t *testing.T) {
		c, _ := newTestServer(t, fnExchangeRate, http.StatusOK, `{"success": true, "primaryCurrencies": {"USD": {"rate": 1425.5}}}`)
		_, err := c.LatestRate(context.Background(), nil)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 20*time.Millisecond)
	_, err := c.Certifications(context.Background(), "3924100000")
	assert.ErrorIs(t, err, ErrUnavailable)
}
