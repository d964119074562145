package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"jewellery-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler owns the domain services and the chi router.
type Handler struct {
	tags        *core.TagService
	products    *core.ProductService
	purchases   *core.PurchaseService
	rateCuts    *core.RateCutService
	sales       *core.SaleService
	saleReturns *core.SaleReturnService
	receipts    *core.ReceiptService
	rates       *core.RatesService
	repairs     *core.RepairService
	urd         *core.URDService
	accounts    *core.AccountService
	users       *core.UserService
	reports     *core.ReportService
	docNums     core.DocNumberGenerator

	validate  *validator.Validate
	jwtSecret string
	uploadDir string
}

// Services bundles everything the router needs.
type Services struct {
	Tags        *core.TagService
	Products    *core.ProductService
	Purchases   *core.PurchaseService
	RateCuts    *core.RateCutService
	Sales       *core.SaleService
	SaleReturns *core.SaleReturnService
	Receipts    *core.ReceiptService
	Rates       *core.RatesService
	Repairs     *core.RepairService
	URD         *core.URDService
	Accounts    *core.AccountService
	Users       *core.UserService
	Reports     *core.ReportService
	DocNums     core.DocNumberGenerator
}

// NewHandler wires the chi router. Route paths match the legacy frontend
// contract, so several of them read oddly ("/save-repair-details" saves a
// sale); the handler names say what they actually do.
func NewHandler(svcs Services, allowedOrigins, jwtSecret string) http.Handler {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	h := &Handler{
		tags:        svcs.Tags,
		products:    svcs.Products,
		purchases:   svcs.Purchases,
		rateCuts:    svcs.RateCuts,
		sales:       svcs.Sales,
		saleReturns: svcs.SaleReturns,
		receipts:    svcs.Receipts,
		rates:       svcs.Rates,
		repairs:     svcs.Repairs,
		urd:         svcs.URD,
		accounts:    svcs.Accounts,
		users:       svcs.Users,
		reports:     svcs.Reports,
		docNums:     svcs.DocNums,
		validate:    validator.New(),
		jwtSecret:   jwtSecret,
		uploadDir:   uploadDir,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(10 << 20))

	r.Get("/api/health", h.health)

	// Auth
	r.Post("/login", h.login)

	// Uploaded files (product images, invoice PDFs)
	r.Get("/uploads/*", h.serveUpload)
	r.Post("/upload-invoice", h.uploadInvoice)

	// Inventory tags
	r.Post("/post/opening-tags-entry", h.createTagBatch)
	r.Get("/get/opening-tags-entry", h.listTags)
	r.Put("/update/opening-tags-entry/{id}", h.updateTag)
	r.Delete("/delete/opening-tags-entry/{opentag_id}", h.deleteTag)
	r.Get("/getNextPCodeBarCode", h.nextBarcode)

	// Product master
	r.Post("/post/products", h.createProduct)
	r.Get("/get/products", h.listProducts)
	r.Get("/get/products/{id}", h.getProduct)
	r.Put("/put/products/{product_id}", h.updateProduct)
	r.Delete("/delete/products/{product_id}", h.deleteProduct)
	r.Post("/api/check-and-insert", h.checkAndInsertProduct)
	r.Get("/last-rbarcode", h.lastRbarcode)

	// Tag balances (updated_values_table)
	r.Post("/add-entry", h.upsertTagBalance)
	r.Get("/entry/{productId}/{tagId}", h.getTagBalance)
	r.Get("/get-balance/{product_id}/{tag_id}", h.getTagBalance)
	r.Get("/max-tag-id", h.maxTagID)

	// Purchases
	r.Post("/post/purchase", h.savePurchases)
	r.Get("/get/purchases", h.listPurchases)
	r.Get("/purchase/{id}", h.getPurchase)
	r.Put("/purchases/{id}", h.updatePurchaseDetails)
	r.Delete("/delete-purchases/{id}", h.deletePurchase)
	r.Delete("/deletepurchases/{invoice}", h.deletePurchaseInvoice)
	r.Get("/get-unique-purchase-details", h.listLatestPurchasePerInvoice)
	r.Get("/get-purchase-details/{invoice}", h.getPurchasesByInvoice)
	r.Get("/purchase-details/{invoice}", h.getPurchasesByInvoice)
	r.Post("/update-remark", h.updateClaimRemark)

	// Rate-cuts and purchase payments
	r.Get("/rateCuts", h.listRateCuts)
	r.Get("/rateCuts/{id}", h.getRateCut)
	r.Post("/rateCuts", h.createRateCut)
	r.Post("/purchasePayments", h.applyPurchasePayment)
	r.Get("/purchase-payments", h.listPurchasePayments)
	r.Get("/lastPaymentNumber", h.lastPaymentNumber)
	r.Get("/payment-account-names", h.paymentAccountNames)

	// Sales / invoices (legacy paths say "repair-details")
	r.Post("/save-repair-details", h.saveSale)
	r.Get("/get-unique-repair-details", h.listLatestSalePerInvoice)
	r.Get("/get-repair-details/{invoice_number}", h.getSaleByInvoice)
	r.Get("/getsales/{invoice_number}", h.getSaleByInvoice)
	r.Get("/get/repair-details", h.listSales)
	r.Delete("/repair-details/{invoiceNumber}", h.deleteSaleInvoice)
	r.Post("/convert-order", h.convertOrder)
	r.Get("/invoice/{order_number}", h.getSaleByOrder)
	r.Put("/update-repair-status/{id}", h.updateSaleStatus)
	r.Get("/lastInvoiceNumber", h.lastInvoiceNumber)
	r.Get("/lastOrderNumber", h.lastOrderNumber)

	// Sale returns
	r.Post("/updateRepairDetails", h.updateReturnLineStatuses)
	r.Post("/updateOpenTags", h.updateReturnedTagStatuses)
	r.Post("/addAvailableEntry", h.reissueReturnedTags)
	r.Post("/updateProduct", h.recordProductReturns)

	// Receipts
	r.Post("/post/receipts", h.recordReceipt)
	r.Get("/get/receipts", h.listReceipts)
	r.Get("/get/receipt/{id}", h.getReceipt)
	r.Put("/edit/receipt/{id}", h.updateReceipt)
	r.Delete("/delete/receipt/{id}", h.deleteReceipt)
	r.Post("/post/orderpayments", h.recordOrderReceipt)
	r.Put("/edit/orderreceipt/{id}", h.updateOrderReceipt)
	r.Delete("/delete/orderreceipt/{id}", h.deleteOrderReceipt)
	r.Get("/lastReceiptNumber", h.lastReceiptNumber)
	r.Get("/account-names", h.receiptAccountNames)

	// Metal rates
	r.Post("/post/rates", h.postRates)
	r.Get("/get/current-rates", h.currentRates)
	r.Get("/get/rates", h.ratesHistory)

	// Repairs
	r.Post("/add/repairs", h.createRepair)
	r.Get("/get/repairs", h.listRepairs)
	r.Get("/get/repairs/{id}", h.getRepair)
	r.Put("/update/repairs/{id}", h.updateRepair)
	r.Delete("/delete/repairs/{id}", h.deleteRepair)
	r.Get("/lastRPNNumber", h.lastRepairNumber)
	r.Post("/convert-repair", h.convertRepair)
	r.Get("/get-repair-invoice/{order_number}", h.getSaleByOrder)

	// Repair workshop
	r.Post("/assign/repairdetails", h.assignRepairToWorkshop)
	r.Get("/assigned-repairdetails", h.listAssignedRepairs)
	r.Get("/assigned-repairdetails/{id}", h.getAssignedByRepair)
	r.Put("/assigned-repairdetails/{id}", h.updateAssignedRepair)
	r.Delete("/assigned-repairdetails/{id}", h.deleteAssignedRepair)
	r.Post("/update-status", h.updateRepairStatus)

	// URD purchases
	r.Post("/save-purchase", h.saveURDPurchase)
	r.Get("/get-purchases", h.listURDPurchases)
	r.Get("/lastURDPurchaseNumber", h.lastURDNumber)
	r.Get("/api/urd-purchase/{urdPurchaseNumber}", h.getURDPurchase)
	r.Put("/api/urd-purchase/{urdPurchaseNumber}", h.updateURDPurchase)
	r.Delete("/delete/{urdpurchase_number}", h.deleteURDPurchase)

	// Accounts
	r.Post("/account-details", h.createAccount)
	r.Get("/get/account-details", h.listAccounts)
	r.Get("/get/account-details/{id}", h.getAccount)
	r.Put("/account-details/{id}", h.updateAccount)
	r.Delete("/account-details/{id}", h.deleteAccount)

	// Reports
	r.Get("/reports/stock-register", h.stockRegister)
	r.Get("/reports/stock-register.xlsx", h.stockRegisterXLSX)

	// User administration (JWT-guarded)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/users", h.createUser)
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
		r.Put("/users/{id}", h.updateUser)
		r.Delete("/users/{id}", h.deleteUser)
		r.Post("/save-user-roles", h.saveUserRoles)
		r.Get("/usertypes", h.listUserTypes)
		r.Get("/permissions/{user_type_id}", h.getPermissions)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v, writing 413 when the body limit
// tripped and 400 for anything else.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeValid decodes and then runs struct validation, writing 400 with the
// first failing field on error.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, r, "invalid field: "+verrs[0].Field(), "BAD_REQUEST", http.StatusBadRequest)
			return false
		}
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func urlParamInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, false
	}
	return n, true
}
