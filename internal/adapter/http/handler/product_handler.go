package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// ProductService defines the behavior needed by ProductHandler.
type ProductService interface {
	CreateProduct(ctx context.Context, input usecase.CreateProductInput) (*domain.LoanProduct, error)
	GetProduct(ctx context.Context, id string) (*domain.LoanProduct, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.LoanProduct, error)
}

// ProductHandler handles loan product HTTP requests.
type ProductHandler struct {
	productUC ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productUC ProductService) *ProductHandler {
	return &ProductHandler{productUC: productUC}
}

// Create creates a new loan product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	product, err := h.productUC.CreateProduct(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create product", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ProductFromDomain(product))
}

// Get retrieves a product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing product ID", "")
		return
	}

	product, err := h.productUC.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get product", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductFromDomain(product))
}

// List lists products with pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	products, err := h.productUC.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductsFromDomain(products))
}
