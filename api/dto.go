/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the decimal domain model from the float64 wire contract.

NAMING CONVENTION:
  - *Request: Request body types from clients (pointer fields = required)
  - *DTO: Items inside responses
  - *Response: Top-level response bodies

TYPES:
  Transactions:
    TransactionRequest, RecordRequest, ValidateRequest, FilterRequest
    RecordDTO, RejectionDTO, FilteredDTO, ValidateResponse, FilterResponse

  Returns:
    ReturnsRequest, SavingDTO, ReturnsResponse

  Misc:
    PerformanceResponse, MessageResponse, ScenarioDTO, ErrorResponse

VALIDATION:
  Request types carry pointer fields so an absent field can be told apart
  from a zero one. Conversion to domain types happens in the toDomain-style
  methods below, which return *generic.FieldError naming the offending path
  (e.g. "transaction[2].amount"). A nil list means the key was missing; an
  empty JSON array is a valid empty list.

  The same request types decode from YAML for the `project` CLI command.

SEE ALSO:
  - handlers.go: Uses these types
  - generic/errors.go: FieldError
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/generic"
	"github.com/warp/roundup-engine/remanent"
	"github.com/warp/roundup-engine/returns"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// TransactionRequest is a raw expense.
type TransactionRequest struct {
	Date   *string  `json:"date" yaml:"date"`
	Amount *float64 `json:"amount" yaml:"amount"`
}

// RecordRequest is an expense that already carries its ceiling and remanent,
// as returned by :parse.
type RecordRequest struct {
	Date     *string  `json:"date" yaml:"date"`
	Amount   *float64 `json:"amount" yaml:"amount"`
	Ceiling  *float64 `json:"ceiling" yaml:"ceiling"`
	Remanent *float64 `json:"remanent" yaml:"remanent"`
}

// ValidateRequest is the body of POST /transactions:validate.
type ValidateRequest struct {
	Wage        *float64        `json:"wage" yaml:"wage"`
	Transaction []RecordRequest `json:"transaction" yaml:"transaction"`
}

// KPeriodRequest is a reporting window.
type KPeriodRequest struct {
	Start *string `json:"start" yaml:"start"`
	End   *string `json:"end" yaml:"end"`
}

// QPeriodRequest is a fixed-override window.
type QPeriodRequest struct {
	KPeriodRequest `yaml:",inline"`
	Fixed          *float64 `json:"fixed" yaml:"fixed"`
}

// PPeriodRequest is an extra-amount window.
type PPeriodRequest struct {
	KPeriodRequest `yaml:",inline"`
	Extra          *float64 `json:"extra" yaml:"extra"`
}

// FilterRequest is the body of POST /transactions:filter.
type FilterRequest struct {
	Q           []QPeriodRequest     `json:"q" yaml:"q"`
	P           []PPeriodRequest     `json:"p" yaml:"p"`
	K           []KPeriodRequest     `json:"k" yaml:"k"`
	Wage        *float64             `json:"wage" yaml:"wage"`
	Transaction []TransactionRequest `json:"transaction" yaml:"transaction"`
}

// ReturnsRequest is the body of POST /returns:nps and /returns:index.
type ReturnsRequest struct {
	FilterRequest `yaml:",inline"`
	Age           *int     `json:"age" yaml:"age"`
	Inflation     *float64 `json:"inflation" yaml:"inflation"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RecordDTO is a transaction with its ceiling and remanent.
type RecordDTO struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Ceiling  float64 `json:"ceiling"`
	Remanent float64 `json:"remanent"`
}

// RejectionDTO is a transaction refused by validation.
type RejectionDTO struct {
	Date    string  `json:"date"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// FilteredDTO is an accepted transaction after the Q and P rules.
type FilteredDTO struct {
	RecordDTO
	InKPeriod bool `json:"inKPeriod"`
}

type ValidateResponse struct {
	Valid   []RecordDTO    `json:"valid"`
	Invalid []RejectionDTO `json:"invalid"`
}

type FilterResponse struct {
	Valid   []FilteredDTO  `json:"valid"`
	Invalid []RejectionDTO `json:"invalid"`
}

// SavingDTO is the projection for one K window.
type SavingDTO struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Amount     float64 `json:"amount"`
	Profit     float64 `json:"profit"`
	TaxBenefit float64 `json:"taxBenefit"`
}

type ReturnsResponse struct {
	TotalTransactionAmount float64     `json:"totalTransactionAmount"`
	TotalCeilingAmount     float64     `json:"totalCeilingAmount"`
	SavingsByDates         []SavingDTO `json:"savingsByDates"`
}

// PerformanceResponse reports process resource usage.
type PerformanceResponse struct {
	ResponseTimeMS float64 `json:"response_time_ms"`
	MemoryUsageMB  float64 `json:"memory_usage_mb"`
	ThreadCount    int     `json:"thread_count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ScenarioDTO is a ready-to-send demo request.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Body        any    `json:"body"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// REQUEST -> DOMAIN
// =============================================================================

func parseDate(field string, s *string) (generic.TimePoint, error) {
	if s == nil {
		return generic.TimePoint{}, generic.Missing(field)
	}
	tp, err := generic.ParseTimePoint(*s)
	if err != nil {
		return generic.TimePoint{}, &generic.FieldError{Field: field, Err: err}
	}
	return tp, nil
}

func requireFloat(field string, f *float64) (decimal.Decimal, error) {
	if f == nil {
		return decimal.Zero, generic.Missing(field)
	}
	return decimal.NewFromFloat(*f), nil
}

func (r TransactionRequest) toDomain(field string) (generic.Transaction, error) {
	at, err := parseDate(field+".date", r.Date)
	if err != nil {
		return generic.Transaction{}, err
	}
	amount, err := requireFloat(field+".amount", r.Amount)
	if err != nil {
		return generic.Transaction{}, err
	}
	return generic.Transaction{At: at, Amount: amount}, nil
}

func (r RecordRequest) toDomain(field string) (generic.Transaction, error) {
	tx, err := TransactionRequest{Date: r.Date, Amount: r.Amount}.toDomain(field)
	if err != nil {
		return generic.Transaction{}, err
	}
	if r.Ceiling == nil {
		return generic.Transaction{}, generic.Missing(field + ".ceiling")
	}
	if r.Remanent == nil {
		return generic.Transaction{}, generic.Missing(field + ".remanent")
	}
	return tx, nil
}

func (r KPeriodRequest) toDomain(field string) (generic.Period, error) {
	start, err := parseDate(field+".start", r.Start)
	if err != nil {
		return generic.Period{}, err
	}
	end, err := parseDate(field+".end", r.End)
	if err != nil {
		return generic.Period{}, err
	}
	return generic.Period{Start: start, End: end}, nil
}

func transactionsToDomain(reqs []TransactionRequest) ([]generic.Transaction, error) {
	if reqs == nil {
		return nil, generic.Missing("transaction")
	}
	txs := make([]generic.Transaction, len(reqs))
	for i, r := range reqs {
		tx, err := r.toDomain(fmt.Sprintf("transaction[%d]", i))
		if err != nil {
			return nil, err
		}
		txs[i] = tx
	}
	return txs, nil
}

// parseRequestToDomain converts a :parse body. A null body is an empty list.
func parseRequestToDomain(reqs []TransactionRequest) ([]generic.Transaction, error) {
	txs := make([]generic.Transaction, len(reqs))
	for i, r := range reqs {
		tx, err := r.toDomain(fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		txs[i] = tx
	}
	return txs, nil
}

func (r ValidateRequest) toDomain() (decimal.Decimal, []generic.Transaction, error) {
	wage, err := requireFloat("wage", r.Wage)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if r.Transaction == nil {
		return decimal.Zero, nil, generic.Missing("transaction")
	}
	txs := make([]generic.Transaction, len(r.Transaction))
	for i, rec := range r.Transaction {
		tx, err := rec.toDomain(fmt.Sprintf("transaction[%d]", i))
		if err != nil {
			return decimal.Zero, nil, err
		}
		txs[i] = tx
	}
	return wage, txs, nil
}

// filterInput is a FilterRequest after validation.
type filterInput struct {
	Wage         decimal.Decimal
	Transactions []generic.Transaction
	Rules        remanent.Rules
	K            []generic.KPeriod
}

func (r FilterRequest) toDomain() (filterInput, error) {
	var in filterInput

	if r.Q == nil {
		return in, generic.Missing("q")
	}
	in.Rules.Q = make([]generic.QPeriod, len(r.Q))
	for i, q := range r.Q {
		field := fmt.Sprintf("q[%d]", i)
		period, err := q.KPeriodRequest.toDomain(field)
		if err != nil {
			return in, err
		}
		fixed, err := requireFloat(field+".fixed", q.Fixed)
		if err != nil {
			return in, err
		}
		in.Rules.Q[i] = generic.QPeriod{Period: period, Fixed: fixed}
	}

	if r.P == nil {
		return in, generic.Missing("p")
	}
	in.Rules.P = make([]generic.PPeriod, len(r.P))
	for i, p := range r.P {
		field := fmt.Sprintf("p[%d]", i)
		period, err := p.KPeriodRequest.toDomain(field)
		if err != nil {
			return in, err
		}
		extra, err := requireFloat(field+".extra", p.Extra)
		if err != nil {
			return in, err
		}
		in.Rules.P[i] = generic.PPeriod{Period: period, Extra: extra}
	}

	if r.K == nil {
		return in, generic.Missing("k")
	}
	in.K = make([]generic.KPeriod, len(r.K))
	for i, k := range r.K {
		period, err := k.toDomain(fmt.Sprintf("k[%d]", i))
		if err != nil {
			return in, err
		}
		in.K[i] = generic.KPeriod{Period: period}
	}

	wage, err := requireFloat("wage", r.Wage)
	if err != nil {
		return in, err
	}
	in.Wage = wage

	txs, err := transactionsToDomain(r.Transaction)
	if err != nil {
		return in, err
	}
	in.Transactions = txs
	return in, nil
}

// ToInput validates the request and converts it to a projection input.
func (r ReturnsRequest) ToInput() (returns.Input, error) {
	in, err := r.FilterRequest.toDomain()
	if err != nil {
		return returns.Input{}, err
	}
	if r.Age == nil {
		return returns.Input{}, generic.Missing("age")
	}
	if *r.Age < 0 {
		return returns.Input{}, &generic.FieldError{Field: "age", Err: fmt.Errorf("%w: %d must not be negative", generic.ErrInvalidField, *r.Age)}
	}
	inflation, err := requireFloat("inflation", r.Inflation)
	if err != nil {
		return returns.Input{}, err
	}
	return returns.Input{
		Wage:         in.Wage,
		Age:          *r.Age,
		Inflation:    inflation,
		Transactions: in.Transactions,
		Q:            in.Rules.Q,
		P:            in.Rules.P,
		K:            in.K,
	}, nil
}

// =============================================================================
// DOMAIN -> RESPONSE
// =============================================================================

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toRecordDTO(r remanent.Record) RecordDTO {
	return RecordDTO{
		Date:     r.At.String(),
		Amount:   toFloat(r.Amount),
		Ceiling:  toFloat(r.Ceiling),
		Remanent: toFloat(r.Remanent),
	}
}

func toRejectionDTOs(rs []remanent.Rejection) []RejectionDTO {
	dtos := make([]RejectionDTO, len(rs))
	for i, r := range rs {
		dtos[i] = RejectionDTO{
			Date:    r.At.String(),
			Amount:  toFloat(r.Amount),
			Message: r.Message,
		}
	}
	return dtos
}

// echoRecord returns an accepted :validate record exactly as submitted,
// with the date normalized.
func echoRecord(r RecordRequest, at generic.TimePoint) RecordDTO {
	return RecordDTO{
		Date:     at.String(),
		Amount:   *r.Amount,
		Ceiling:  *r.Ceiling,
		Remanent: *r.Remanent,
	}
}

// ToReturnsResponse converts a report to its wire form.
func ToReturnsResponse(rep returns.Report) ReturnsResponse {
	savings := make([]SavingDTO, len(rep.Savings))
	for i, s := range rep.Savings {
		savings[i] = SavingDTO{
			Start:      s.Period.Start.String(),
			End:        s.Period.End.String(),
			Amount:     toFloat(s.Invested),
			Profit:     toFloat(s.Profit),
			TaxBenefit: toFloat(s.TaxBenefit),
		}
	}
	return ReturnsResponse{
		TotalTransactionAmount: toFloat(rep.TotalTransactionAmount),
		TotalCeilingAmount:     toFloat(rep.TotalCeilingAmount),
		SavingsByDates:         savings,
	}
}
