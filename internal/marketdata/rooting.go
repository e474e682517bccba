package marketdata

import (
	"fmt"
	"strings"

	"hedgeblotter/internal/models"
)

// RootingDescription captions a chart with which way the trade wants the
// ticker to move. For dual digitals the direction comes from the barrier
// condition on the matching leg; for vanillas from payoff type and side.
func RootingDescription(t models.Trade, ticker string) string {
	side := strings.ToLower(t.Side)
	payoff := strings.ToLower(t.PayoffType)

	if payoff == strings.ToLower(models.PayoffDualDigital) {
		cond := ""
		switch ticker {
		case t.Index1:
			cond = strings.ToLower(t.Cond1)
		case t.Index2:
			cond = strings.ToLower(t.Cond2)
		}
		switch {
		case strings.Contains(cond, ">=") || strings.Contains(cond, "above"):
			return fmt.Sprintf("Rooting for %s to go HIGHER", ticker)
		case strings.Contains(cond, "<=") || strings.Contains(cond, "below"):
			return fmt.Sprintf("Rooting for %s to go LOWER", ticker)
		}
	} else if strings.Contains(payoff, "call") {
		if strings.Contains(side, "long") {
			return fmt.Sprintf("Rooting for %s to go HIGHER", ticker)
		}
		return fmt.Sprintf("Rooting for %s to go LOWER", ticker)
	} else if strings.Contains(payoff, "put") {
		if strings.Contains(side, "long") {
			return fmt.Sprintf("Rooting for %s to go LOWER", ticker)
		}
		return fmt.Sprintf("Rooting for %s to go HIGHER", ticker)
	}

	return fmt.Sprintf("Rooting for %s favorable move", ticker)
}
