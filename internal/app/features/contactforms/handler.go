// internal/app/features/contactforms/handler.go
package contactforms

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/gatherhub/internal/app/features/errors"
	contactformstore "github.com/dalemusser/gatherhub/internal/app/store/contactforms"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// Handler serves the public contact form and its admin review screens.
type Handler struct {
	Forms *contactformstore.Store
	Log   *zap.Logger
}

func NewHandler(forms *contactformstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Forms: forms,
		Log:   logger,
	}
}

// HandleSubmit stores an anonymous contact form submission.
// POST /contactForm
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Nickname    string `json:"nickname"`
		Email       string `json:"email"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	f, err := h.Forms.Create(ctx, models.ContactForm{
		Nickname:    in.Nickname,
		Email:       in.Email,
		Title:       in.Title,
		Description: in.Description,
	})
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, "contactFormSubmitted", f)
}

// ServeList returns every submission, newest first. Admin only.
// GET /contactForm
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	forms, err := h.Forms.ListAll(ctx)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "contactForms", forms)
}

// ServeDetail returns one submission. Admin only.
// GET /contactForm/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	f, err := h.Forms.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "contactForm", f)
}

// HandleDelete removes a handled submission. Admin only.
// DELETE /contactForm/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Forms.Delete(ctx, id); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "contactFormDeleted", nil)
}

func (h *Handler) objectIDParam(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, name)
	if !inputval.IsValidObjectID(raw) {
		httpjson.Fail(w, http.StatusBadRequest, "idInvalid")
		return primitive.NilObjectID, false
	}
	id, _ := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	return id, true
}
