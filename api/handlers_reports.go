package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"paygap/core"
)

// searchReports godoc
//
//	@Summary		Search reports
//	@Description	Searches pay transparency reports with filters, sort, and pagination
//	@Produce		json
//	@Param			offset	query		int		false	"Result offset"
//	@Param			limit	query		int		false	"Page size"
//	@Param			filter	query		string	false	"Filter clauses as JSON"
//	@Param			sort	query		string	false	"Sort clauses as JSON"
//	@Success		200		{object}	service.ReportSearchResult
//	@Failure		400		{object}	map[string]string
//	@Router			/v1/reports [get]
func (a *API) searchReports(w http.ResponseWriter, r *http.Request, claims *Claims) {
	offset, limit, err := pageParams(r)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	result, err := a.reportSvc.SearchReports(r.Context(), offset, limit,
		r.URL.Query().Get("filter"), r.URL.Query().Get("sort"), claims.Role)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// getReport godoc
//
//	@Summary		Get a report
//	@Description	Returns one report and stamps the admin access timestamp
//	@Produce		json
//	@Param			id	path		string	true	"Report ID"
//	@Success		200	{object}	core.Report
//	@Failure		400	{object}	map[string]string
//	@Router			/v1/reports/{id} [get]
func (a *API) getReport(w http.ResponseWriter, r *http.Request, claims *Claims) {
	report, err := a.reportSvc.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// reportPatchRequest is the PATCH payload. Exactly one of the fields is
// expected per request.
type reportPatchRequest struct {
	IsUnlocked    *bool   `json:"is_unlocked"`
	ReportingYear *int    `json:"reporting_year"`
	ReportStatus  *string `json:"report_status"`
}

// patchReport godoc
//
//	@Summary		Mutate a report
//	@Description	Locks/unlocks a report, changes its reporting year, or withdraws it
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Report ID"
//	@Param			body	body		reportPatchRequest	true	"Mutation payload"
//	@Success		200		{object}	core.Report
//	@Failure		400		{object}	map[string]string
//	@Router			/v1/reports/{id} [patch]
func (a *API) patchReport(w http.ResponseWriter, r *http.Request, claims *Claims) {
	reportID := mux.Vars(r)["id"]

	var req reportPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondServiceError(w, core.NewValidationError("Invalid request body"))
		return
	}

	var report *core.Report
	var err error
	switch {
	case req.IsUnlocked != nil:
		report, err = a.reportSvc.ChangeReportLockStatus(r.Context(), reportID, claims.GUID, *req.IsUnlocked)
	case req.ReportingYear != nil:
		report, err = a.reportSvc.UpdateReportReportingYear(r.Context(), reportID, claims.GUID, *req.ReportingYear)
	case req.ReportStatus != nil && *req.ReportStatus == string(core.ReportStatusWithdrawn):
		report, err = a.reportSvc.WithdrawReport(r.Context(), reportID, claims.GUID)
	default:
		err = core.NewValidationError("Invalid request body")
	}
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// getReportActionHistory godoc
//
//	@Summary		Report admin action history
//	@Description	Returns the merged current and historical admin action timeline, most recent first
//	@Produce		json
//	@Param			id	path		string	true	"Report ID"
//	@Success		200	{array}		core.ActionHistoryEntry
//	@Failure		400	{object}	map[string]string
//	@Router			/v1/reports/{id}/admin-action-history [get]
func (a *API) getReportActionHistory(w http.ResponseWriter, r *http.Request, claims *Claims) {
	entries, err := a.reportSvc.ReportActionHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
