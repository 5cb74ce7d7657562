package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ipshield/backend/internal/interfaces/http/handler"
)

// Handlers bundles every HTTP handler of the API
type Handlers struct {
	Auth        *handler.AuthHandler
	Customer    *handler.CustomerHandler
	Contract    *handler.ContractHandler
	Certificate *handler.CertificateHandler
	System      *handler.SystemHandler
}

// Guards are the per-group middleware chains
type Guards struct {
	// Authenticated runs on every route that needs a logged-in user
	Authenticated []gin.HandlerFunc
	// Login runs before the login handler only
	Login []gin.HandlerFunc
}

// Mount wires the route table onto engine.
// Health endpoints live at the root and under the API prefix.
func Mount(engine *gin.Engine, h Handlers, guards Guards) {
	engine.GET("/health", h.System.Health)
	engine.GET("/health/ready", h.System.Ready)

	api := engine.Group(APIPrefix)
	for _, resource := range Resources(h, guards) {
		resource.mount(api)
	}
}

// Resources is the API route table below APIPrefix
func Resources(h Handlers, guards Guards) []Resource {
	login := append(append([]gin.HandlerFunc{}, guards.Login...), h.Auth.Login)
	authed := guards.Authenticated

	return []Resource{
		{Prefix: "/health", Routes: []Route{
			get("", h.System.Health),
			get("/ready", h.System.Ready),
		}},
		{Prefix: "/auth", Routes: []Route{
			post("/login", login...),
			post("/refresh", h.Auth.RefreshToken),
		}},
		{Prefix: "/auth", Middleware: authed, Routes: []Route{
			post("/logout", h.Auth.Logout),
			get("/me", h.Auth.GetCurrentUser),
			put("/password", h.Auth.ChangePassword),
		}},
		{Prefix: "/customers", Middleware: authed, Routes: []Route{
			get("", h.Customer.List),
			post("", h.Customer.Create),
			get("/lookup", h.Customer.Lookup),
			get("/:id", h.Customer.GetByID),
			put("/:id", h.Customer.Update),
			remove("/:id", h.Customer.Delete),
			patch("/:id/status", h.Customer.ChangeStatus),
		}},
		{Prefix: "/contracts", Middleware: authed, Routes: []Route{
			get("", h.Contract.List),
			post("", h.Contract.Create),
			get("/search", h.Contract.List),
			get("/:id", h.Contract.GetByID),
			put("/:id", h.Contract.Update),
			remove("/:id", h.Contract.Delete),
			get("/:id/summary", h.Contract.GetSummary),
			post("/:id/pause", h.Contract.Pause),
			post("/:id/resume", h.Contract.Resume),
			get("/:id/history", h.Contract.ListHistory),
			get("/:id/installments", h.Contract.ListInstallments),
			post("/:id/installments/generate", h.Contract.GenerateInstallments),
			get("/:id/payment-logs", h.Contract.ListPaymentLogs),
		}, Nested: []Resource{
			{Prefix: "/:id/certificates", Routes: []Route{
				post("/upload-url", h.Certificate.RequestUpload),
				post("/confirm", h.Certificate.ConfirmUpload),
				get("/download", h.Certificate.Download),
				remove("", h.Certificate.Delete),
			}},
		}},
		{Prefix: "/installments", Middleware: authed, Routes: []Route{
			patch("/:id", h.Contract.UpdateInstallment),
			post("/:id/payments", h.Contract.ApplyPayment),
			post("/:id/mark-paid", h.Contract.MarkInstallmentPaid),
		}},
		{Prefix: "/payment-logs", Middleware: authed, Routes: []Route{
			post("/:id/invoice-export", h.Contract.MarkInvoiceExported),
		}},
	}
}
