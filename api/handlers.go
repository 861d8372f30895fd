/*
handlers.go - HTTP API handlers for the round-up engine

PURPOSE:
  Exposes the remanent and projection engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS (under the configured prefix):
  Transactions:
    POST /transactions:parse     Ceiling and remanent per expense
    POST /transactions:validate  Split into valid / invalid
    POST /transactions:filter    Validate, apply Q and P, annotate K

  Returns:
    POST /returns:nps            NPS projection per K window
    POST /returns:index          Index fund projection per K window

  Misc:
    GET  /performance            Process memory and thread count
    GET  /scenarios              Demo request bodies

REQUEST FLOW:
  1. Decode JSON (400 on malformed body)
  2. Convert DTOs to domain types (422 on schema violation)
  3. Call domain logic (remanent, returns)
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON ErrorResponse with status:
  - 400: Malformed JSON
  - 413: Body larger than the configured limit
  - 422: Missing or unusable field, unknown mode, degenerate inflation
  - 500: Anything else
  Negative and duplicate transactions are not errors. They are listed
  under "invalid" in a 200 response.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warp/roundup-engine/generic"
	"github.com/warp/roundup-engine/logging"
	"github.com/warp/roundup-engine/remanent"
	"github.com/warp/roundup-engine/returns"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. It has no mutable state;
// every request is computed from its own body.
type Handler struct {
	Logger       *logrus.Logger
	MaxBodyBytes int64

	// sampler reads process metrics for /performance.
	sampler Sampler
}

// NewHandler creates a handler. maxBodyBytes <= 0 disables the body limit.
func NewHandler(logger *logrus.Logger, maxBodyBytes int64) *Handler {
	return &Handler{
		Logger:       logger,
		MaxBodyBytes: maxBodyBytes,
		sampler:      processSampler{},
	}
}

// =============================================================================
// ROOT
// =============================================================================

// Root answers the liveness probe at "/".
func (h *Handler) Root(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Hello, World!"})
	return nil
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ParseTransactions returns ceiling and remanent for each expense, in
// submission order.
func (h *Handler) ParseTransactions(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	var req []TransactionRequest
	if err := h.decode(w, r, &req); err != nil {
		return h.fail(w, err)
	}

	txs, err := parseRequestToDomain(req)
	if err != nil {
		return h.fail(w, err)
	}
	ld.AddData("transactions", len(txs))

	records := remanent.Parse(txs)
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}

	writeJSON(w, http.StatusOK, dtos)
	return nil
}

// ValidateTransactions splits records into valid and invalid. Valid records
// are echoed back as submitted.
func (h *Handler) ValidateTransactions(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	var req ValidateRequest
	if err := h.decode(w, r, &req); err != nil {
		return h.fail(w, err)
	}

	wage, txs, err := req.toDomain()
	if err != nil {
		return h.fail(w, err)
	}

	v := remanent.Validate(wage, txs)

	valid := make([]RecordDTO, len(v.Valid))
	for i, tx := range v.Valid {
		valid[i] = echoRecord(req.Transaction[v.ValidIndex[i]], tx.At)
	}

	ld.AddData("valid", len(valid))
	ld.AddData("invalid", len(v.Invalid))
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:   valid,
		Invalid: toRejectionDTOs(v.Invalid),
	})
	return nil
}

// FilterTransactions validates, sorts, applies Q and P, drops zero remanents
// and flags K membership.
func (h *Handler) FilterTransactions(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	var req FilterRequest
	if err := h.decode(w, r, &req); err != nil {
		return h.fail(w, err)
	}

	in, err := req.toDomain()
	if err != nil {
		return h.fail(w, err)
	}

	endTimer := ld.AddTiming("engine_ms")
	res := remanent.Filter(in.Wage, in.Transactions, in.Rules, in.K)
	endTimer()

	valid := make([]FilteredDTO, len(res.Valid))
	for i, f := range res.Valid {
		valid[i] = FilteredDTO{RecordDTO: toRecordDTO(f.Record), InKPeriod: f.InKPeriod}
	}

	ld.AddData("valid", len(valid))
	ld.AddData("invalid", len(res.Invalid))
	writeJSON(w, http.StatusOK, FilterResponse{
		Valid:   valid,
		Invalid: toRejectionDTOs(res.Invalid),
	})
	return nil
}

// =============================================================================
// RETURNS HANDLERS
// =============================================================================

func (h *Handler) ReturnsNPS(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	return h.computeReturns(w, r, ld, returns.ModeNPS)
}

func (h *Handler) ReturnsIndex(w http.ResponseWriter, r *http.Request, ld *logging.LogData) error {
	return h.computeReturns(w, r, ld, returns.ModeIndex)
}

func (h *Handler) computeReturns(w http.ResponseWriter, r *http.Request, ld *logging.LogData, mode returns.Mode) error {
	var req ReturnsRequest
	if err := h.decode(w, r, &req); err != nil {
		return h.fail(w, err)
	}

	input, err := req.ToInput()
	if err != nil {
		return h.fail(w, err)
	}
	ld.AddData("mode", string(mode))
	ld.AddData("transactions", len(input.Transactions))
	ld.AddData("k_periods", len(input.K))

	endTimer := ld.AddTiming("engine_ms")
	report, err := returns.Compute(input, mode)
	endTimer()
	if err != nil {
		return h.fail(w, err)
	}

	writeJSON(w, http.StatusOK, ToReturnsResponse(report))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// bodyError marks a request body that is not valid JSON.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

// decode reads a JSON body into dst. Type mismatches are reported as field
// errors; anything else unreadable is a bodyError.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if h.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &generic.FieldError{
				Field: typeErr.Field,
				Err:   fmt.Errorf("%w: expected %s, got %s", generic.ErrInvalidField, typeErr.Type, typeErr.Value),
			}
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &bodyError{err: err}
	}
	return nil
}

// fail writes the error response matching err and returns err for logging.
func (h *Handler) fail(w http.ResponseWriter, err error) error {
	var (
		body     *bodyError
		tooLarge *http.MaxBytesError
		field    *generic.FieldError
	)
	switch {
	case errors.As(err, &body):
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
	case errors.As(err, &field):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Validation failed",
			Code:    errorCode(err),
			Details: map[string]string{"field": field.Field, "message": field.Err.Error()},
		})
	case generic.IsClientError(err):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Validation failed",
			Code:    errorCode(err),
			Details: err.Error(),
		})
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
	return err
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, generic.ErrMissingField):
		return "missing_field"
	case errors.Is(err, generic.ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, generic.ErrInvalidMode):
		return "invalid_mode"
	case errors.Is(err, generic.ErrInvalidInflation):
		return "invalid_inflation"
	default:
		return "invalid_field"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
