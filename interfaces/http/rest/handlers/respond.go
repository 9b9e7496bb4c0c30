package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"flowcanvas/application/commands/bus"
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
	"flowcanvas/pkg/utils"
)

// maxBodyBytes bounds regular request bodies. Imported documents go
// through their own, larger limit.
const maxBodyBytes = 1 << 20

// messageResponse is the body for mutations that return no resource
type messageResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// decodeBody decodes a JSON request body into dst and runs struct
// validation on it
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// writeError maps a bus or domain error onto the HTTP response.
// Validation failures raised inside the buses surface as 400 here;
// everything else already carries its own classification.
func writeError(errs *pkgerrors.ErrorHandler, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, bus.ErrValidationFailed) || strings.Contains(err.Error(), "query validation failed") {
		errs.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}
	errs.Handle(w, r, err)
}

// respondPage writes one page of a listing with pagination metadata
func respondPage(w http.ResponseWriter, r *http.Request, page interface{}, params common.PaginationParams, total int) {
	meta := &common.MetaInfo{
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.NewPaginationInfo(params, total),
	}
	if requestID, ok := common.GetRequestID(r.Context()); ok {
		meta.RequestID = requestID
	}
	common.RespondJSONWithMeta(w, http.StatusOK, page, meta)
}
