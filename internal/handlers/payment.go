package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/dukachat-backend/internal/utils"
)

// ProofReceiver is the part of services.Dispatcher the proof endpoint needs
type ProofReceiver interface {
	ProofReceived(ctx context.Context, customerID, mediaID string) bool
}

type PaymentHandler struct {
	proofs ProofReceiver
}

func NewPaymentHandler(proofs ProofReceiver) *PaymentHandler {
	return &PaymentHandler{proofs: proofs}
}

// ProofRequest is sent by the media pipeline when a receipt image was stored
type ProofRequest struct {
	CustomerID string `json:"customer_id"`
	MediaID    string `json:"media_id"`
}

// SubmitProof attaches an externally received receipt to the customer's
// pending order.
func (h *PaymentHandler) SubmitProof(c *fiber.Ctx) error {
	var req ProofRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid proof payload")
	}
	customerID := strings.TrimPrefix(utils.NormalizePhone(req.CustomerID), "+")
	mediaID := strings.TrimSpace(req.MediaID)
	if customerID == "" || mediaID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "customer_id and media_id are required")
	}

	if !h.proofs.ProofReceived(c.UserContext(), customerID, mediaID) {
		log.Printf("proof %s for %s: no payment pending", mediaID, customerID)
		return fiber.NewError(fiber.StatusConflict, "No payment pending for this customer")
	}

	log.Printf("💰 Proof %s accepted for %s", mediaID, customerID)
	return c.JSON(fiber.Map{
		"success":     true,
		"customer_id": customerID,
	})
}
