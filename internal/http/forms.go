package http

import (
	"net/http"

	submissioncmd "github.com/goliatone/go-site/internal/commands/submissions"
	"github.com/goliatone/go-site/internal/submissions"
)

func (api *SiteAPI) registerFormRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "leads"), api.handleLead)
	mux.HandleFunc("POST "+joinPath(base, "contact"), api.handleContact)
	mux.HandleFunc("POST "+joinPath(base, "careers"), api.handleCareer)
}

func (api *SiteAPI) handleLead(w http.ResponseWriter, r *http.Request) {
	if api.commands.SubmitLead == nil {
		unavailable(w)
		return
	}
	var lead submissions.Lead
	if err := decodeJSON(w, r, api.maxBodyBytes, &lead); err != nil {
		api.fail(w, r, err)
		return
	}
	lead.Envelope = submissions.Envelope{}
	var receipt submissions.Receipt
	if err := api.commands.SubmitLead.Execute(r.Context(), submissioncmd.SubmitLeadCommand{Lead: lead, Receipt: &receipt}); err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (api *SiteAPI) handleContact(w http.ResponseWriter, r *http.Request) {
	if api.commands.SubmitContact == nil {
		unavailable(w)
		return
	}
	var contact submissions.Contact
	if err := decodeJSON(w, r, api.maxBodyBytes, &contact); err != nil {
		api.fail(w, r, err)
		return
	}
	contact.Envelope = submissions.Envelope{}
	var receipt submissions.Receipt
	if err := api.commands.SubmitContact.Execute(r.Context(), submissioncmd.SubmitContactCommand{Contact: contact, Receipt: &receipt}); err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (api *SiteAPI) handleCareer(w http.ResponseWriter, r *http.Request) {
	if api.commands.SubmitCareer == nil {
		unavailable(w)
		return
	}
	var application submissions.CareerApplication
	if err := decodeJSON(w, r, api.maxBodyBytes, &application); err != nil {
		api.fail(w, r, err)
		return
	}
	application.Envelope = submissions.Envelope{}
	var receipt submissions.Receipt
	if err := api.commands.SubmitCareer.Execute(r.Context(), submissioncmd.SubmitCareerCommand{Application: application, Receipt: &receipt}); err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
