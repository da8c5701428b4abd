package http

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/iiSmitty/my-it-services/internal/quote/form"
	"github.com/iiSmitty/my-it-services/internal/quote/pricing"
	"github.com/iiSmitty/my-it-services/internal/quote/submission"
)

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCatalogResponse(s.catalog))
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Services []string `json:"services"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.composer.Price(req.Services)
	if errors.Is(err, pricing.ErrNoServices) {
		writeError(w, http.StatusBadRequest, "at least one service is required")
		return
	} else if err != nil {
		s.logger.Errorf("quote: resolve price failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to price selection")
		return
	}
	writeJSON(w, http.StatusOK, newPriceResponse(s.catalog, res))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var in quoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, res := s.form(in).Validate()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var in quoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, res := s.form(in).Validate()
	if !res.Valid {
		s.countInvalid(res)
		writeJSON(w, http.StatusUnprocessableEntity, validationError{Error: "validation failed", Validation: res})
		return
	}

	quote, err := s.composer.Build(f.Request())
	if err != nil {
		s.logger.Errorf("quote: compose message failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compose message")
		return
	}
	if s.metrics != nil {
		s.metrics.QuoteComposed(quote.Pricing.RequiresCustomQuote)
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message:             quote.Text,
		WhatsAppURL:         quote.URL,
		Total:               quote.Pricing.Total,
		RequiresCustomQuote: quote.Pricing.RequiresCustomQuote,
		Pricing:             newPriceResponse(s.catalog, quote.Pricing),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in quoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, res, err := s.submissions.Submit(r.Context(), s.form(in))
	switch {
	case errors.Is(err, submission.ErrInvalidForm):
		writeJSON(w, http.StatusUnprocessableEntity, validationError{Error: "validation failed", Validation: res})
		return
	case errors.Is(err, submission.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	case err != nil:
		s.logger.Errorf("quote: submit failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit quote")
		return
	}

	token, err := s.tokens.NewJWT(sub.ID, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Errorf("quote: sign ws token for %s failed: %v", sub.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{ID: sub.ID, Status: string(sub.Status), WSToken: token})
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	id := getParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	sub, err := s.submissions.Get(id)
	if errors.Is(err, submission.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) form(in quoteInput) form.Form {
	def, _ := s.catalog.DefaultUrgency()
	return form.FromRequest(in.request(), def)
}

func (s *Server) countInvalid(res form.Result) {
	if s.metrics == nil {
		return
	}
	for field, st := range res.Fields {
		if st.State == form.StateInvalid {
			s.metrics.ValidationFailed(string(field))
		}
	}
}
