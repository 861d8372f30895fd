/*
scenarios.go - Demo request bodies for testing and demonstrations

PURPOSE:

	Provides ready-made request bodies that exercise specific features.
	Nothing is stored: a scenario is just a body plus the endpoint it is
	meant for, so a client can replay it as is.

AVAILABLE SCENARIOS:

	parse-basic:          Two expenses through :parse
	validate-duplicates:  Duplicate and negative records through :validate
	filter-periods:       Q override, P surcharge and K flag through :filter
	returns-basic:        Negative expense excluded from the totals (NPS)
	returns-windows:      Overlapping K windows projected in the index fund

USAGE VIA API:

	GET /scenarios

USAGE VIA CLI:

	server project --scenario returns-windows --mode index

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, method, path
 2. Build the body with the helpers at the bottom of this file

SEE ALSO:
  - dto.go: Request types used as bodies
  - cmd/server/main.go: project command
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/warp/roundup-engine/logging"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "parse-basic",
		Name:        "Parse",
		Description: "Ceiling and remanent for two expenses",
		Method:      http.MethodPost,
		Path:        "/transactions:parse",
		Body: []TransactionRequest{
			tx("2024-01-01 12:07:00", 150),
			tx("2024-01-02 13:15:00", 275),
		},
	},
	{
		ID:          "validate-duplicates",
		Name:        "Validate",
		Description: "Same timestamp and amount twice, plus a refund",
		Method:      http.MethodPost,
		Path:        "/transactions:validate",
		Body: ValidateRequest{
			Wage: f64(50000),
			Transaction: []RecordRequest{
				rec("2026-02-21 06:04:11", 250, 300, 50),
				rec("2026-02-21 06:04:11", 250, 300, 50),
				rec("2026-02-21 06:04:11", 3500, 3500, 0),
				rec("2026-02-22 09:00:00", -40, 0, 40),
			},
		},
	},
	{
		ID:          "filter-periods",
		Name:        "Filter",
		Description: "July remanents fixed to 0, +25 from October, a duplicate and a refund",
		Method:      http.MethodPost,
		Path:        "/transactions:filter",
		Body:        yearFilterRequest(append(yearTransactions(), tx("2023-12-17 08:09:45", 480), tx("2023-12-18 10:00:00", -10))),
	},
	{
		ID:          "returns-basic",
		Name:        "Returns (NPS)",
		Description: "A refund in the middle is excluded from both totals",
		Method:      http.MethodPost,
		Path:        "/returns:nps",
		Body: ReturnsRequest{
			FilterRequest: FilterRequest{
				Q:    []QPeriodRequest{},
				P:    []PPeriodRequest{},
				K:    []KPeriodRequest{period("2026-01-01 00:00:00", "2026-12-31 23:59:59")},
				Wage: f64(0),
				Transaction: []TransactionRequest{
					tx("2026-02-21 06:04:11", 150),
					tx("2026-02-22 06:04:11", -50),
					tx("2026-02-23 06:04:11", 275),
				},
			},
			Age:       intp(30),
			Inflation: f64(5),
		},
	},
	{
		ID:          "returns-windows",
		Name:        "Returns (index)",
		Description: "Full year and March-November windows over the same expenses",
		Method:      http.MethodPost,
		Path:        "/returns:index",
		Body: ReturnsRequest{
			FilterRequest: yearFilterRequest(yearTransactions()),
			Age:           intp(29),
			Inflation:     f64(5.5),
		},
	},
}

// ListScenarios returns available scenarios with their bodies.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	writeJSON(w, http.StatusOK, scenarios)
	return nil
}

// ScenarioReturnsRequest returns the body of a returns scenario.
func ScenarioReturnsRequest(id string) (ReturnsRequest, error) {
	for _, s := range scenarios {
		if s.ID != id {
			continue
		}
		req, ok := s.Body.(ReturnsRequest)
		if !ok {
			return ReturnsRequest{}, fmt.Errorf("scenario %q is not a returns request", id)
		}
		return req, nil
	}
	return ReturnsRequest{}, fmt.Errorf("unknown scenario %q", id)
}

// =============================================================================
// BODY BUILDERS
// =============================================================================

func yearTransactions() []TransactionRequest {
	return []TransactionRequest{
		tx("2023-02-28 15:49:20", 375),
		tx("2023-07-01 21:59:00", 620),
		tx("2023-10-12 20:15:30", 250),
		tx("2023-12-17 08:09:45", 480),
	}
}

func yearFilterRequest(txs []TransactionRequest) FilterRequest {
	return FilterRequest{
		Q: []QPeriodRequest{{
			KPeriodRequest: period("2023-07-01 00:00:00", "2023-07-31 23:59:59"),
			Fixed:          f64(0),
		}},
		P: []PPeriodRequest{{
			KPeriodRequest: period("2023-10-01 08:00:00", "2023-12-31 19:59:59"),
			Extra:          f64(25),
		}},
		K: []KPeriodRequest{
			period("2023-01-01 00:00:00", "2023-12-31 23:59:59"),
			period("2023-03-01 00:00:00", "2023-11-30 23:59:59"),
		},
		Wage:        f64(50000),
		Transaction: txs,
	}
}

func tx(date string, amount float64) TransactionRequest {
	return TransactionRequest{Date: &date, Amount: &amount}
}

func rec(date string, amount, ceiling, remanent float64) RecordRequest {
	return RecordRequest{Date: &date, Amount: &amount, Ceiling: &ceiling, Remanent: &remanent}
}

func period(start, end string) KPeriodRequest {
	return KPeriodRequest{Start: &start, End: &end}
}

func f64(f float64) *float64 { return &f }
func intp(i int) *int        { return &i }
