// Package transport exposes the cart service over a JSON HTTP API.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/flashsale"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"github.com/nikolayk812/grocery-cart/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxRequestBody = 1 << 20

type CartService interface {
	AddToCart(ctx context.Context, ownerID string, req service.AddItemRequest) (domain.CartItem, error)
	UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, units decimal.Decimal) error
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) error
	Summary(ctx context.Context, ownerID string, adj domain.Adjustments) (service.Summary, error)
	Validate(ctx context.Context, ownerID string) ([]uuid.UUID, error)
	Checkout(ctx context.Context, ownerID string, adj domain.Adjustments) (service.Receipt, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	ListProducts(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error)
	ActiveFlashSales(ctx context.Context) ([]domain.FlashSale, error)
	FlashSaleMembership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error)
}

type Handler struct {
	svc    CartService
	logger logrus.FieldLogger
}

func Router(svc CartService, logger logrus.FieldLogger) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	h := &Handler{
		svc:    svc,
		logger: logger.WithField("component", "transport"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	s := r.PathPrefix("/api").Subrouter()

	s.HandleFunc("/carts/{ownerID}", h.getSummary).Methods(http.MethodGet)
	s.HandleFunc("/carts/{ownerID}/items", h.addItem).Methods(http.MethodPost)
	s.HandleFunc("/carts/{ownerID}/items/{productID}", h.updateItem).Methods(http.MethodPatch)
	s.HandleFunc("/carts/{ownerID}/items/{productID}", h.removeItem).Methods(http.MethodDelete)
	s.HandleFunc("/carts/{ownerID}/validate", h.validate).Methods(http.MethodPost)
	s.HandleFunc("/carts/{ownerID}/checkout", h.checkout).Methods(http.MethodPost)

	s.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/{productID}", h.getProduct).Methods(http.MethodGet)

	s.HandleFunc("/flash-sales/active", h.activeFlashSales).Methods(http.MethodGet)
	s.HandleFunc("/flash-sales/products/{productID}/check", h.checkFlashSale).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusNotFound, response{Message: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, response{Message: "method not allowed"})
	})

	return otelhttp.NewHandler(logMiddleware(h.logger, r), "cartd")
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeOK(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	adj, err := parseAdjustments(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.svc.Summary(r.Context(), mux.Vars(r)["ownerID"], adj)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusOK, summaryFromDomain(summary))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.svc.AddToCart(r.Context(), mux.Vars(r)["ownerID"], service.AddItemRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Weight:    req.Weight,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusCreated, cartItemFromDomain(item))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	const op = "transport.updateItem"

	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateItemRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var units decimal.Decimal
	switch {
	case req.Quantity != nil && req.Weight != nil:
		h.writeError(w, r, apperr.Validation(op, map[string]string{"weight": "must be empty when quantity is set"}))
		return
	case req.Quantity != nil:
		units = decimal.NewFromInt(int64(*req.Quantity))
	case req.Weight != nil:
		units = *req.Weight
	default:
		h.writeError(w, r, apperr.Validation(op, map[string]string{"quantity": "quantity or weight is required"}))
		return
	}

	if err := h.svc.UpdateItem(r.Context(), mux.Vars(r)["ownerID"], productID, units); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusOK, nil)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.RemoveItem(r.Context(), mux.Vars(r)["ownerID"], productID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusOK, nil)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	invalid, err := h.svc.Validate(r.Context(), mux.Vars(r)["ownerID"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if invalid == nil {
		invalid = []uuid.UUID{}
	}

	h.writeOK(w, http.StatusOK, validateResponse{Invalid: invalid})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	adj, err := parseAdjustments(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	receipt, err := h.svc.Checkout(r.Context(), mux.Vars(r)["ownerID"], adj)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusOK, receiptFromDomain(receipt))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productFromDomain(p))
	}

	h.writeOK(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusOK, productFromDomain(product))
}

func (h *Handler) activeFlashSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.ActiveFlashSales(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]flashsale.SaleDTO, 0, len(sales))
	for _, s := range sales {
		resp = append(resp, flashsale.SaleFromDomain(s))
	}

	h.writeOK(w, http.StatusOK, resp)
}

func (h *Handler) checkFlashSale(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	m, err := h.svc.FlashSaleMembership(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeOK(w, http.StatusOK, flashsale.MembershipFromDomain(m))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(out); err != nil {
		return apperr.Validation("transport.decode", map[string]string{"body": err.Error()})
	}

	return nil
}

func (h *Handler) writeOK(w http.ResponseWriter, status int, data any) {
	h.writeJSON(w, status, response{Success: true, Data: data})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(apperr.CategoryOf(err))

	logger := h.logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed")
		if apperr.CategoryOf(err) == apperr.CategoryUnknown {
			msg = http.StatusText(status)
		}
	} else {
		logger.Debug("request rejected")
	}

	h.writeJSON(w, status, response{
		Message: msg,
		Errors:  apperr.FieldsOf(err),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp response) {
	b, err := json.Marshal(resp)
	if err != nil {
		h.logger.WithError(err).Error("marshal response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		h.logger.WithError(err).Warn("write response")
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("transport.pathUUID", map[string]string{name: fmt.Sprintf("[%s] is not a valid uuid", raw)})
	}

	return id, nil
}

func parseAdjustments(r *http.Request) (domain.Adjustments, error) {
	q := r.URL.Query()
	fields := make(map[string]string)

	parse := func(name string) decimal.Decimal {
		raw := q.Get(name)
		if raw == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fields[name] = "is not a number"
			return decimal.Zero
		}
		if d.IsNegative() {
			fields[name] = "is negative"
		}
		return d
	}

	adj := domain.Adjustments{
		Tip:             parse("tip"),
		VoucherDiscount: parse("voucher"),
	}
	if len(fields) > 0 {
		return domain.Adjustments{}, apperr.Validation("transport.parseAdjustments", fields)
	}

	return adj, nil
}

func parseProductFilter(r *http.Request) (port.ProductFilter, error) {
	q := r.URL.Query()
	fields := make(map[string]string)

	filter := port.ProductFilter{
		Category:  q.Get("category"),
		NameQuery: q.Get("q"),
		Sort:      port.ProductSort(q.Get("sort")),
	}

	switch filter.Sort {
	case "", port.SortByCreated, port.SortByName, port.SortByPrice, port.SortByPriceDesc:
	default:
		fields["sort"] = fmt.Sprintf("[%s] is not valid", filter.Sort)
	}

	if raw := q.Get("onSale"); raw != "" {
		onSale, err := strconv.ParseBool(raw)
		if err != nil {
			fields["onSale"] = "is not a boolean"
		}
		filter.OnSaleOnly = onSale
	}

	intParam := func(name string) int {
		raw := q.Get(name)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields[name] = "must be a non-negative integer"
			return 0
		}
		return n
	}

	filter.Limit = intParam("limit")
	filter.Offset = intParam("offset")

	if len(fields) > 0 {
		return port.ProductFilter{}, apperr.Validation("transport.parseProductFilter", fields)
	}

	return filter, nil
}
