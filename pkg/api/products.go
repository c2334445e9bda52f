package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/otel"
)

type productRequest struct {
	Name     string          `json:"name" example:"Widget"`
	Category string          `json:"category" example:"tools"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"9.99"`
	Stock    int             `json:"stock" example:"10"`
}

type restockRequest struct {
	Quantity int `json:"quantity" example:"5"`
}

// createProductHandler creates a product.
// @Summary Create product
// @Accept json
// @Produce json
// @Param product body productRequest true "Product"
// @Success 200 {object} inventory.Product
// @Failure 422 {object} errorResponse
// @Router /products [post]
func (h *handler) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createProductHandler")
	defer span.End()
	r = r.WithContext(ctx)

	var req productRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, "create product", err)
		return
	}
	p, err := h.store.InsertProduct(ctx, inventory.Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
	})
	if err != nil {
		h.writeError(w, r, "create product", err)
		return
	}
	h.log.Info(ctx, "product created", "product_id", p.ID, "stock", p.Stock)
	writeJSON(w, http.StatusOK, p)
}

// listProductsHandler lists products.
// @Summary List products
// @Produce json
// @Success 200 {array} inventory.Product
// @Router /products [get]
func (h *handler) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()
	r = r.WithContext(ctx)

	products, err := h.store.ListProducts(ctx)
	if err != nil {
		h.writeError(w, r, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// getProductHandler retrieves a product by ID.
// @Summary Get product
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} inventory.Product
// @Failure 404 {object} errorResponse
// @Router /products/{id} [get]
func (h *handler) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getProductHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	p, err := h.store.GetProduct(ctx, id)
	if err != nil {
		h.writeError(w, r, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// updateProductHandler changes name, category or price of a product.
// Stock is not accepted here.
// @Summary Update product
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param patch body inventory.ProductPatch true "Fields to change"
// @Success 200 {object} inventory.Product
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /products/{id} [patch]
func (h *handler) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateProductHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	var patch inventory.ProductPatch
	if err := decode(r, &patch); err != nil {
		h.writeError(w, r, "update product", err)
		return
	}
	if patch.Empty() {
		writeDetail(w, http.StatusUnprocessableEntity, "no fields to update")
		return
	}
	p, err := h.stock.UpdateProduct(ctx, id, patch)
	if err != nil {
		h.writeError(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// deleteProductHandler removes a product no order references.
// @Summary Delete product
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /products/{id} [delete]
func (h *handler) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteProductHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err := h.stock.DeleteProduct(ctx, id); err != nil {
		h.writeError(w, r, "delete product", err)
		return
	}
	h.log.Info(ctx, "product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// restockProductHandler adds stock to a product.
// @Summary Restock product
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param restock body restockRequest true "Quantity to add"
// @Success 200 {object} inventory.Product
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /products/{id}/restock [post]
func (h *handler) restockProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "restockProductHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	var req restockRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, "restock product", err)
		return
	}
	p, err := h.stock.Release(ctx, id, req.Quantity)
	if err != nil {
		h.writeError(w, r, "restock product", err)
		return
	}
	h.log.Info(ctx, "product restocked", "product_id", id, "quantity", req.Quantity, "stock", p.Stock)
	writeJSON(w, http.StatusOK, p)
}
