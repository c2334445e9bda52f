package api

import (
	"net/http"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/otel"
)

type supplierRequest struct {
	Name         string `json:"name" example:"Acme"`
	ContactEmail string `json:"contact_email" example:"sales@acme.test"`
	ContactPhone string `json:"contact_phone" example:"+1 555 0100"`
}

// createSupplierHandler creates a supplier.
// @Summary Create supplier
// @Accept json
// @Produce json
// @Param supplier body supplierRequest true "Supplier"
// @Success 200 {object} inventory.Supplier
// @Failure 422 {object} errorResponse
// @Router /suppliers [post]
func (h *handler) createSupplierHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createSupplierHandler")
	defer span.End()
	r = r.WithContext(ctx)

	var req supplierRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, "create supplier", err)
		return
	}
	s, err := h.store.InsertSupplier(ctx, inventory.Supplier{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		h.writeError(w, r, "create supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// listSuppliersHandler lists suppliers.
// @Summary List suppliers
// @Produce json
// @Success 200 {array} inventory.Supplier
// @Router /suppliers [get]
func (h *handler) listSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listSuppliersHandler")
	defer span.End()
	r = r.WithContext(ctx)

	suppliers, err := h.store.ListSuppliers(ctx)
	if err != nil {
		h.writeError(w, r, "list suppliers", err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

// getSupplierHandler retrieves a supplier by ID.
// @Summary Get supplier
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} inventory.Supplier
// @Failure 404 {object} errorResponse
// @Router /suppliers/{id} [get]
func (h *handler) getSupplierHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getSupplierHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	s, err := h.store.GetSupplier(ctx, id)
	if err != nil {
		h.writeError(w, r, "get supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// updateSupplierHandler changes any subset of a supplier's fields.
// @Summary Update supplier
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param patch body inventory.SupplierPatch true "Fields to change"
// @Success 200 {object} inventory.Supplier
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /suppliers/{id} [patch]
func (h *handler) updateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateSupplierHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	var patch inventory.SupplierPatch
	if err := decode(r, &patch); err != nil {
		h.writeError(w, r, "update supplier", err)
		return
	}
	if patch.Empty() {
		writeDetail(w, http.StatusUnprocessableEntity, "no fields to update")
		return
	}
	s, err := h.store.UpdateSupplier(ctx, id, patch)
	if err != nil {
		h.writeError(w, r, "update supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
