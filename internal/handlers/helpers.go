package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odshop/storefront/httpx"
)

// pathID reads the {id} segment as uint; a zero return means the caller
// already got a 400.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id64, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id64 == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id64), true
}

// decodeJSON rejects malformed bodies and unknown fields with 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	return true
}

// zeroIfNil keeps optional decimal fields stable across handlers.
func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
