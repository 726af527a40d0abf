package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/database/orders"
	"github.com/Paul-Starodub/fast-library/internal/entities"
)

const entityOrder = "order"

// OrderStore defines the order operations the controller needs.
type OrderStore interface {
	List(ctx context.Context) ([]entities.Order, error)
	Get(ctx context.Context, id uint) (*entities.Order, error)
	Create(ctx context.Context, in orders.NewOrder) (*entities.Order, error)
	Delete(ctx context.Context, id uint) error
}

type OrdersController struct {
	store   OrderStore
	auditor AuditLogger
}

func NewOrdersController(store OrderStore, auditor AuditLogger) *OrdersController {
	return &OrdersController{store: store, auditor: orNoop(auditor)}
}

// List handles GET /orders/
func (oc *OrdersController) List(c *gin.Context) {
	list, err := oc.store.List(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, newOrderResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /orders/:id/
func (oc *OrdersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := oc.store.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Create handles POST /orders/
func (oc *OrdersController) Create(c *gin.Context) {
	var req OrderCreate
	if !bindJSON(c, &req) {
		return
	}

	in := orders.NewOrder{
		AuthorID: req.AuthorID,
		Lines:    make([]orders.Line, 0, len(req.Books)),
	}
	for _, line := range req.Books {
		in.Lines = append(in.Lines, orders.Line{BookID: line.BookID, Quantity: line.Quantity})
	}

	order, err := oc.store.Create(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	oc.auditor.LogCreate(actorFrom(c), entityOrder, order.ID, "")
	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Delete handles DELETE /orders/:id/
func (oc *OrdersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := oc.store.Delete(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	oc.auditor.LogDelete(actorFrom(c), entityOrder, id, "")
	c.Status(http.StatusNoContent)
}
