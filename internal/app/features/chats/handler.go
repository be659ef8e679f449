// internal/app/features/chats/handler.go
package chats

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/gatherhub/internal/app/features/errors"
	chatstore "github.com/dalemusser/gatherhub/internal/app/store/chats"
	"github.com/dalemusser/gatherhub/internal/app/system/authz"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/paging"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
)

// Handler serves per-group chat rooms. Every route is member-gated: the
// store rejects callers who are not on the group roster.
type Handler struct {
	Chats *chatstore.Store
	Log   *zap.Logger
}

func NewHandler(chats *chatstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Chats: chats,
		Log:   logger,
	}
}

// HandleCreate opens the chat room for a group.
// POST /chat/{groupID}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	chat, err := h.Chats.Create(ctx, u.ID, groupID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("chat room created",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", u.ID.Hex()))
	httpjson.Created(w, "chatCreated", chat)
}

// ServeMessages returns one page of chat history, newest first.
// GET /chat/{groupID}?page=1&limit=10
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	page, err := h.Chats.Page(ctx, u.ID, groupID, paging.FromRequest(r))
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "messages", page)
}

// HandlePostMessage appends a message to the group's chat.
// POST /chat/{groupID}/message
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	var in struct {
		Text string `json:"text"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	msg, err := h.Chats.AppendMessage(ctx, u.ID, groupID, in.Text)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, "messageSent", msg)
}

// HandleAdminDelete removes a group's chat room. Admin only; a fresh
// room can be opened by a member afterward.
// DELETE /chat/{groupID}
func (h *Handler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Chats.DeleteByGroup(ctx, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("chat room deleted by admin", zap.String("group_id", groupID.Hex()))
	httpjson.OK(w, "chatDeleted", nil)
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
