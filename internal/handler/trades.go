package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/normalize"
	"hedgeblotter/internal/service"
	"hedgeblotter/internal/session"
)

type TradeHandler struct {
	Sessions *session.Manager
	Blotter  *service.Blotter
}

func (h *TradeHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/trades", h.list)
	api.POST("/trades/vanilla", h.addVanilla)
	api.POST("/trades/exotic", h.addExotic)
	api.PUT("/trades/:type/:index", h.edit)
	api.DELETE("/trades/:type/:index", h.remove)
	api.POST("/trades/:type/:index/unwind", h.unwind)
	api.POST("/trades/:type/:index/expire", h.expire)
	api.GET("/portfolio", h.portfolio)
}

// tradeRequest is the JSON body for create and edit. Dates arrive as
// YYYY-MM-DD strings; numerics as JSON numbers or quoted strings.
type tradeRequest struct {
	TradeID    string           `json:"trade_id"`
	TradeDate  string           `json:"trade_date"`
	Book       string           `json:"book"`
	Strategy   string           `json:"strategy"`
	Side       string           `json:"side"`
	Index      string           `json:"index"`
	BBGTicker  string           `json:"bbg_ticker"`
	PayoffType string           `json:"payoff_type"`
	Strike     *decimal.Decimal `json:"strike"`
	NotionalMM *decimal.Decimal `json:"notional_mm"`
	Contracts  *decimal.Decimal `json:"contracts"`
	Expiry     string           `json:"expiry"`
	Index1     string           `json:"index1"`
	Cond1      string           `json:"cond1"`
	Strike1    *decimal.Decimal `json:"strike1"`
	Index2     string           `json:"index2"`
	Cond2      string           `json:"cond2"`
	Strike2    *decimal.Decimal `json:"strike2"`
	Logic      string           `json:"logic"`
	CostBP     *decimal.Decimal `json:"cost_bp"`
	CostUSD    *decimal.Decimal `json:"cost_usd"`
	MarsID     string           `json:"mars_id"`
	Notes      string           `json:"notes"`
}

func (req tradeRequest) toTrade() (models.Trade, error) {
	t := models.Trade{
		TradeID:    req.TradeID,
		Book:       req.Book,
		Strategy:   req.Strategy,
		Side:       req.Side,
		Index:      req.Index,
		BBGTicker:  req.BBGTicker,
		PayoffType: req.PayoffType,
		Strike:     req.Strike,
		NotionalMM: req.NotionalMM,
		Contracts:  req.Contracts,
		Index1:     req.Index1,
		Cond1:      req.Cond1,
		Strike1:    req.Strike1,
		Index2:     req.Index2,
		Cond2:      req.Cond2,
		Strike2:    req.Strike2,
		Logic:      req.Logic,
		CostBP:     req.CostBP,
		CostUSD:    req.CostUSD,
		MarsID:     req.MarsID,
		Notes:      req.Notes,
	}
	if req.TradeDate != "" {
		d, ok := normalize.ParseDate(req.TradeDate)
		if !ok {
			return models.Trade{}, fmt.Errorf("invalid trade_date %q", req.TradeDate)
		}
		t.TradeDate = &d
	}
	if req.Expiry != "" {
		d, ok := normalize.ParseDate(req.Expiry)
		if !ok {
			return models.Trade{}, fmt.Errorf("invalid expiry %q", req.Expiry)
		}
		t.Expiry = &d
	}
	return t, nil
}

func (h *TradeHandler) list(c *gin.Context) {
	st := state(c, h.Sessions)
	st.Lock()
	vanilla := append([]models.Trade{}, st.Vanilla...)
	exotic := append([]models.Trade{}, st.Exotic...)
	st.Unlock()
	Ok(c, gin.H{"vanilla": vanilla, "exotic": exotic}, nil)
}

func (h *TradeHandler) addVanilla(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	t, err := req.toTrade()
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	st := state(c, h.Sessions)
	warnings := h.Blotter.AddVanilla(st, t)
	Ok(c, t, warningsMeta(warnings))
}

func (h *TradeHandler) addExotic(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	t, err := req.toTrade()
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	st := state(c, h.Sessions)
	warnings := h.Blotter.AddExotic(st, t)
	Ok(c, t, warningsMeta(warnings))
}

func (h *TradeHandler) edit(c *gin.Context) {
	tradeType, index, ok := tradeRef(c)
	if !ok {
		return
	}
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	t, err := req.toTrade()
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	st := state(c, h.Sessions)
	if err := h.Blotter.Edit(st, tradeType, index, t); err != nil {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	Ok(c, t, nil)
}

func (h *TradeHandler) remove(c *gin.Context) {
	tradeType, index, ok := tradeRef(c)
	if !ok {
		return
	}
	st := state(c, h.Sessions)
	removed, err := h.Blotter.Delete(st, tradeType, index)
	if err != nil {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	Ok(c, removed, nil)
}

type unwindRequest struct {
	UnwindDate  string           `json:"unwind_date"`
	UnwindPrice *decimal.Decimal `json:"unwind_price"`
	Notes       string           `json:"notes"`
}

func (h *TradeHandler) unwind(c *gin.Context) {
	tradeType, index, ok := tradeRef(c)
	if !ok {
		return
	}
	var req unwindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	if req.UnwindPrice == nil {
		Error(c, http.StatusBadRequest, "unwind_price is required", nil)
		return
	}
	date, parsed := normalize.ParseDate(req.UnwindDate)
	if !parsed {
		Error(c, http.StatusBadRequest, fmt.Sprintf("invalid unwind_date %q", req.UnwindDate), nil)
		return
	}
	st := state(c, h.Sessions)
	closed, err := h.Blotter.Unwind(st, tradeType, index, date, *req.UnwindPrice, req.Notes)
	if err != nil {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	Ok(c, closed, nil)
}

func (h *TradeHandler) expire(c *gin.Context) {
	tradeType, index, ok := tradeRef(c)
	if !ok {
		return
	}
	st := state(c, h.Sessions)
	closed, err := h.Blotter.Expire(st, tradeType, index)
	if err != nil {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	Ok(c, closed, nil)
}

func (h *TradeHandler) portfolio(c *gin.Context) {
	st := state(c, h.Sessions)
	Ok(c, h.Blotter.Portfolio(st), nil)
}

// tradeRef pulls the :type/:index pair out of the path, writing the error
// response itself when the pair is malformed.
func tradeRef(c *gin.Context) (string, int, bool) {
	tradeType := c.Param("type")
	if tradeType != models.TradeTypeVanilla && tradeType != models.TradeTypeExotic {
		Error(c, http.StatusBadRequest, fmt.Sprintf("unknown trade type %q", tradeType), nil)
		return "", 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		Error(c, http.StatusBadRequest, "index must be a non-negative integer", nil)
		return "", 0, false
	}
	return tradeType, index, true
}
