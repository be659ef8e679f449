// internal/app/features/groups/handler.go
package groups

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/gatherhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
	"github.com/dalemusser/gatherhub/internal/app/system/authz"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
)

// Handler serves the public group catalog, its message board, and the
// admin moderation endpoints.
type Handler struct {
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

func NewHandler(groups *groupstore.Store, memberships *membershipstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Groups:      groups,
		Memberships: memberships,
		Log:         logger,
	}
}

// ServeList returns every group, newest first.
// GET /group
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	groups, err := h.Groups.ListAll(ctx)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "groups", groups)
}

// ServeDetail returns one group with its roster and comments.
// GET /group/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "group", g)
}

// HandleAddComment leaves a message on the group's board.
// POST /group/{id}/comment
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	var in struct {
		Content string `json:"content"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		httpjson.Fail(w, http.StatusBadRequest, "contentRequired")
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	c, err := h.Groups.AddComment(ctx, id, u.ID, in.Content)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, "commentAdded", c)
}

// HandleRemoveComment deletes the caller's own comment.
// DELETE /group/{id}/comment/{commentID}
func (h *Handler) HandleRemoveComment(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := h.objectIDParam(w, r, "commentID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Groups.RemoveComment(ctx, id, commentID, u.ID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "commentRemoved", nil)
}

// HandleReply sets the organizer's reply on a comment. Replying again
// overwrites the previous reply.
// POST /group/{id}/comment/{commentID}/reply
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := h.objectIDParam(w, r, "commentID")
	if !ok {
		return
	}

	var in struct {
		Message string `json:"message"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		httpjson.Fail(w, http.StatusBadRequest, "messageRequired")
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	reply, err := h.Groups.ReplyComment(ctx, id, commentID, u.ID, u.Name, in.Message)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, "replyAdded", reply)
}

// HandleRemoveReply clears the organizer's reply from a comment.
// DELETE /group/{id}/comment/{commentID}/reply
func (h *Handler) HandleRemoveReply(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := h.objectIDParam(w, r, "commentID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Groups.RemoveReply(ctx, id, commentID, u.ID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "replyRemoved", nil)
}

// HandleAdminUpdate edits any group's info. Admin only.
// PATCH /group/{id}
func (h *Handler) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	var in struct {
		Name          string   `json:"name"`
		Image         string   `json:"image"`
		Description   string   `json:"description"`
		Content       string   `json:"content"`
		Type          string   `json:"type"`
		MemberLimit   int      `json:"member_limit"`
		ContactMethod string   `json:"contact_method"`
		ContactInfo   string   `json:"contact_info"`
		City          string   `json:"city"`
		Region        string   `json:"region"`
		Address       string   `json:"address"`
		Tags          []string `json:"tags"`
		Time          string   `json:"time"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	err := h.Groups.AdminUpdateInfo(ctx, id, groupstore.InfoUpdate{
		Name:          in.Name,
		Image:         in.Image,
		Description:   in.Description,
		Content:       in.Content,
		Type:          in.Type,
		MemberLimit:   in.MemberLimit,
		ContactMethod: in.ContactMethod,
		ContactInfo:   in.ContactInfo,
		City:          in.City,
		Region:        in.Region,
		Address:       in.Address,
		Tags:          in.Tags,
		Time:          in.Time,
	})
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "groupUpdated", nil)
}

// HandleAdminDelete deletes any group with its full cascade. Admin only.
// DELETE /group/{id}
func (h *Handler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Long(r.Context())
	defer cancel()

	if err := h.Memberships.AdminDeleteGroup(ctx, id); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("group deleted by admin", zap.String("group_id", id.Hex()))
	httpjson.OK(w, "groupDeleted", nil)
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
