package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/storage"
)

// setupDomainRoutes registers the read-only REST surface over the
// Datastore: ethscriptions, listings, bids, auctions, and users.
func (s *Server) setupDomainRoutes() {
	s.router.Get("/ethscriptions/{hashId}", s.handleGetEthscription)
	s.router.Get("/ethscriptions/{hashId}/events", s.handleGetEthscriptionEvents)
	s.router.Get("/listings/{hashId}", s.handleGetListing)
	s.router.Get("/bids/{hashId}", s.handleGetBid)
	s.router.Get("/auctions/{auctionId}", s.handleGetAuction)
	s.router.Get("/users/{address}", s.handleGetUser)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeStorageErr maps storage errors to HTTP status codes; anything other
// than ErrNotFound is a server-side failure.
func (s *Server) writeStorageErr(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error("datastore lookup failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) handleGetEthscription(w http.ResponseWriter, r *http.Request) {
	hashID, ok := parseHash(w, s, r, "hashId")
	if !ok {
		return
	}

	e, err := s.storage.GetEthscriptionByHashID(r.Context(), hashID)
	if err != nil {
		s.writeStorageErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleGetEthscriptionEvents(w http.ResponseWriter, r *http.Request) {
	hashID, ok := parseHash(w, s, r, "hashId")
	if !ok {
		return
	}

	events, err := s.storage.GetEventsByHashID(r.Context(), hashID)
	if err != nil {
		s.writeStorageErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	hashID, ok := parseHash(w, s, r, "hashId")
	if !ok {
		return
	}

	l, err := s.storage.GetListing(r.Context(), hashID)
	if err != nil {
		s.writeStorageErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleGetBid(w http.ResponseWriter, r *http.Request) {
	hashID, ok := parseHash(w, s, r, "hashId")
	if !ok {
		return
	}

	b, err := s.storage.GetBid(r.Context(), hashID)
	if err != nil {
		s.writeStorageErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := parseUint64(w, s, r, "auctionId")
	if !ok {
		return
	}

	a, err := s.storage.GetAuction(r.Context(), auctionID)
	if err != nil {
		s.writeStorageErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	addrStr := chi.URLParam(r, "address")
	if !common.IsHexAddress(addrStr) {
		s.writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	u, err := s.storage.GetOrCreateUser(r.Context(), common.HexToAddress(addrStr), 0)
	if err != nil {
		s.writeStorageErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func parseHash(w http.ResponseWriter, s *Server, r *http.Request, param string) (common.Hash, bool) {
	raw := chi.URLParam(r, param)
	if len(raw) != 66 {
		s.writeError(w, http.StatusBadRequest, "invalid hash")
		return common.Hash{}, false
	}
	return common.HexToHash(raw), true
}

func parseUint64(w http.ResponseWriter, s *Server, r *http.Request, param string) (uint64, bool) {
	raw := chi.URLParam(r, param)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return n, true
}
