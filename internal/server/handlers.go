package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitparty/internal/models"
	"github.com/mmynk/splitparty/internal/receipt"
	"github.com/mmynk/splitparty/internal/storage"
	"github.com/mmynk/splitparty/pkg/response"
)

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.ReceiptText) != "" {
		bill, err := s.svc.SeedFromReceipt(r.Context(), receipt.ParseText(req.ReceiptText))
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		response.JSON(w, http.StatusCreated, bill)
		return
	}

	bill := &models.Bill{
		Restaurant: req.Restaurant,
		Tax:        req.Tax,
		Tip:        req.Tip,
		ImageURL:   req.ImageURL,
	}
	items := make([]models.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.Item{
			Description: it.Description,
			Amount:      it.Amount,
			Quantity:    it.Quantity,
		}
	}
	if err := s.svc.CreateBill(r.Context(), bill, items); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	response.JSON(w, http.StatusCreated, bill)
}

func (s *Server) getBill(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")
	snap, err := s.svc.GetSnapshot(r.Context(), billID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "bill not found")
			return
		}
		response.InternalError(w, "failed to load bill")
		return
	}
	response.JSON(w, http.StatusOK, newBillResponse(snap))
}

func (s *Server) updateBill(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")
	var req updateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Status != nil && !validStatus(*req.Status) {
		response.BadRequest(w, "invalid status")
		return
	}

	bill, err := s.svc.UpdateBill(r.Context(), billID, storage.BillUpdate{
		Restaurant: req.Restaurant,
		Tax:        req.Tax,
		Tip:        req.Tip,
		Status:     req.Status,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "bill not found")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, bill)
}

func (s *Server) joinBill(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := s.svc.JoinBill(r.Context(), billID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "bill not found")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	item, err := s.svc.AddItem(r.Context(), billID, req.Description, req.Amount, req.Quantity)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "bill not found")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}
	response.JSON(w, http.StatusCreated, item)
}

func (s *Server) editItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	item, err := s.svc.EditItem(r.Context(), itemID, storage.ItemUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		Quantity:    req.Quantity,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "item not found")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, item)
}

// setClaim writes the claim's selected state. Unclaiming through this
// endpoint keeps the row with is_selected=false.
func (s *Server) setClaim(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClaim(w, r)
	if !ok {
		return
	}
	if err := s.svc.SetClaim(r.Context(), req.BillID, req.ParticipantID, req.ItemID, req.Selected); err != nil {
		response.InternalError(w, "failed to save claim")
		return
	}
	response.JSON(w, http.StatusOK, models.Claim{
		ParticipantID: req.ParticipantID,
		ItemID:        req.ItemID,
		Selected:      req.Selected,
	})
}

// removeClaim hard-deletes the claim row. Equivalent to setting
// is_selected=false as far as every subscriber is concerned.
func (s *Server) removeClaim(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClaim(w, r)
	if !ok {
		return
	}
	if err := s.svc.RemoveClaim(r.Context(), req.BillID, req.ParticipantID, req.ItemID); err != nil {
		response.InternalError(w, "failed to remove claim")
		return
	}
	response.JSON(w, http.StatusOK, nil)
}

func decodeClaim(w http.ResponseWriter, r *http.Request) (claimRequest, bool) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return req, false
	}
	if req.BillID == "" || req.ParticipantID == 0 || req.ItemID == 0 {
		response.BadRequest(w, "bill_id, participant_id, and item_id are required")
		return req, false
	}
	return req, true
}

func validStatus(status string) bool {
	switch status {
	case models.StatusActive, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}
