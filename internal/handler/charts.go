package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hedgeblotter/internal/marketdata"
	"hedgeblotter/internal/models"
	"hedgeblotter/internal/session"
)

type ChartHandler struct {
	Sessions *session.Manager
	Client   marketdata.Client
	Logger   *zap.Logger
}

func (h *ChartHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/charts/history", h.history)
	api.GET("/charts/price", h.price)
	api.GET("/charts/trade/:type/:index", h.trade)
}

// chartData is the shared payload: price series, optional spot, optional
// rooting caption. Missing market data is not an error; the payload comes
// back empty with a warning so the page can render a placeholder.
type chartData struct {
	Ticker  string                  `json:"ticker"`
	Points  []marketdata.PricePoint `json:"points"`
	Spot    any                     `json:"spot,omitempty"`
	Caption string                  `json:"caption,omitempty"`
}

func (h *ChartHandler) history(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		Error(c, http.StatusBadRequest, "ticker is required", nil)
		return
	}
	months := 6
	if raw := c.Query("months"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			months = n
		}
	}
	data, warnings := h.fetch(c, ticker, months)
	Ok(c, data, warningsMeta(warnings))
}

func (h *ChartHandler) price(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		Error(c, http.StatusBadRequest, "ticker is required", nil)
		return
	}
	price, err := h.Client.CurrentPrice(c.Request.Context(), ticker)
	if err != nil {
		h.Logger.Warn("current price lookup failed", zap.String("ticker", ticker), zap.Error(err))
		Ok(c, gin.H{"ticker": ticker, "price": nil},
			warningsMeta([]string{"market data unavailable: " + err.Error()}))
		return
	}
	Ok(c, gin.H{"ticker": ticker, "price": price}, nil)
}

// trade charts the underlying of a live trade, with the rooting caption.
// Exotics pick the leg via ?leg=2 (default leg 1).
func (h *ChartHandler) trade(c *gin.Context) {
	tradeType, index, ok := tradeRef(c)
	if !ok {
		return
	}
	st := state(c, h.Sessions)
	st.Lock()
	var t models.Trade
	found := false
	live := st.Vanilla
	if tradeType == models.TradeTypeExotic {
		live = st.Exotic
	}
	if index < len(live) {
		t = live[index]
		found = true
	}
	st.Unlock()
	if !found {
		Error(c, http.StatusNotFound, "no trade at that index", nil)
		return
	}

	ticker := t.Underlying()
	if tradeType == models.TradeTypeExotic && c.Query("leg") == "2" {
		ticker = t.Index2
	}
	if ticker == "" {
		Ok(c, chartData{}, warningsMeta([]string{"trade has no underlying ticker"}))
		return
	}

	data, warnings := h.fetch(c, ticker, 6)
	data.Caption = marketdata.RootingDescription(t, ticker)
	Ok(c, data, warningsMeta(warnings))
}

func (h *ChartHandler) fetch(c *gin.Context, ticker string, months int) (chartData, []string) {
	ctx := c.Request.Context()
	end := time.Now()
	start := end.AddDate(0, -months, 0)

	data := chartData{Ticker: ticker}
	var warnings []string
	points, err := h.Client.HistoricalPrices(ctx, ticker, []string{marketdata.FieldLastPrice}, start, end)
	if err != nil {
		h.Logger.Warn("history lookup failed", zap.String("ticker", ticker), zap.Error(err))
		warnings = append(warnings, "market data unavailable: "+err.Error())
	} else if len(points) == 0 {
		warnings = append(warnings, "no market data for "+ticker)
	}
	data.Points = points

	spot, err := h.Client.CurrentPrice(ctx, ticker)
	if err == nil && spot != nil {
		data.Spot = spot
	}
	return data, warnings
}
