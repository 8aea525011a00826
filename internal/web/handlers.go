package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vbonduro/fieldsales/internal/report"
	"github.com/vbonduro/fieldsales/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.service.User(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	respond(w, http.StatusOK, user)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, list(s.service.Purchases(r.Context())))
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var in service.PurchaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	created, err := s.service.CreatePurchase(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

func (s *Server) handleListPointsOfSale(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, list(s.service.PointsOfSale(r.Context())))
}

func (s *Server) handleCreatePointOfSale(w http.ResponseWriter, r *http.Request) {
	var in service.PointOfSaleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	created, err := s.service.CreatePointOfSale(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, list(s.service.VendorActivities(r.Context())))
}

// handleStock accepts ?status=all|low|medium|good and ?q= for name or SKU.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.service.Stock(r.Context(), q.Get("status"), q.Get("q"))
	respond(w, http.StatusOK, listResponse[report.StockLine]{Source: res.Source, Items: res.Lines})
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, list(s.service.Sales(r.Context())))
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var in service.SaleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sale, err := s.service.RecordSale(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, sale)
}

func (s *Server) handleSalesSummary(w http.ResponseWriter, r *http.Request) {
	res := s.service.SalesSummary(r.Context())
	respond(w, http.StatusOK, map[string]any{"source": res.Source, "summary": res.Value})
}

func (s *Server) handleVilles(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, list(s.service.Villes(r.Context())))
}

func (s *Server) handleQuartiers(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, list(s.service.Quartiers(r.Context())))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.service.Report(r.Context()))
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	refreshed, err := s.service.Focus(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"refreshed": refreshed})
}

func (s *Server) handleResetCache(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ResetLocalData(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWipeDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.WipeDevice(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
