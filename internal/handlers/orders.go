package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/dukachat-backend/internal/storage"
)

// DefaultHistoryLimit caps a conversation history request without ?limit
const DefaultHistoryLimit = 50

// OrderHandler exposes orders and conversation history to the staff hub
type OrderHandler struct {
	store storage.Store
}

func NewOrderHandler(store storage.Store) *OrderHandler {
	return &OrderHandler{store: store}
}

// GetOrder returns one order by reference
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.store.GetOrder(c.UserContext(), c.Params("ref"))
	if errors.Is(err, storage.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	}
	if err != nil {
		log.Printf("get order %s: %v", c.Params("ref"), err)
		return err
	}
	return c.JSON(order)
}

// GetMessages returns the latest messages of a conversation, oldest first
func (h *OrderHandler) GetMessages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", DefaultHistoryLimit)
	if limit <= 0 || limit > 500 {
		limit = DefaultHistoryLimit
	}
	msgs, err := h.store.ListMessages(c.UserContext(), c.Params("customer"), limit)
	if err != nil {
		log.Printf("list messages for %s: %v", c.Params("customer"), err)
		return err
	}
	return c.JSON(fiber.Map{
		"conversation_id": c.Params("customer"),
		"messages":        msgs,
	})
}
