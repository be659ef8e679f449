// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/gatherhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/gatherhub/internal/app/store/users"
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/authz"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// Handler serves account, session, and membership endpoints.
type Handler struct {
	Users       *userstore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Tokens      *auth.TokenManager
	Log         *zap.Logger
}

func NewHandler(users *userstore.Store, groups *groupstore.Store, memberships *membershipstore.Store, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Groups:      groups,
		Memberships: memberships,
		Tokens:      tokens,
		Log:         logger,
	}
}

// HandleRegister creates an account and signs the new user in.
// POST /user/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Account  string   `json:"account"`
		Email    string   `json:"email"`
		Password string   `json:"password"`
		Name     string   `json:"name"`
		Gender   string   `json:"gender"`
		Age      int      `json:"age"`
		Tags     []string `json:"tags"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Account: in.Account,
		Email:   in.Email,
		Name:    in.Name,
		Gender:  in.Gender,
		Age:     in.Age,
		Tags:    in.Tags,
	}, in.Password)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	token, err := h.issueToken(r, u.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	httpjson.Created(w, "registered", map[string]any{"user": u, "token": token})
}

// HandleLogin verifies credentials and issues a token.
// POST /user/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	token, err := h.issueToken(r, u.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	httpjson.OK(w, "loggedIn", map[string]any{"user": u, "token": token})
}

// HandleRefresh swaps the presented token for a fresh one.
// POST /user/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	oldToken := authz.TokenCtx(r.Context())

	newToken, err := h.Tokens.Issue(u.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Users.SwapToken(ctx, u.ID, oldToken, newToken); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "refreshed", map[string]any{"token": newToken})
}

// HandleLogout revokes the presented token.
// DELETE /user/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	token := authz.TokenCtx(r.Context())

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Users.PullToken(ctx, u.ID, token); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "loggedOut", nil)
}

// ServeProfile returns the signed-in user's own document.
// GET /user/profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	httpjson.OK(w, "profile", authz.UserCtx(r.Context()))
}

// HandleUpdateProfile updates the signed-in user's profile fields.
// PATCH /user/profile
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())

	var in struct {
		Name   string   `json:"name"`
		Gender string   `json:"gender"`
		Age    int      `json:"age"`
		Tags   []string `json:"tags"`
		Image  string   `json:"image"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	var v inputval.Result
	if strings.TrimSpace(in.Name) == "" {
		v.Fail("name", "nameRequired")
	}
	if in.Age < 0 {
		v.Fail("age", "ageInvalid")
	}
	if v.HasErrors() {
		httpjson.Fail(w, http.StatusBadRequest, v.First())
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, userstore.ProfileUpdate{
		Name:   in.Name,
		Gender: in.Gender,
		Age:    in.Age,
		Tags:   in.Tags,
		Image:  in.Image,
	}); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	updated, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "profileUpdated", updated)
}

// HandleDeleteAccount deletes the signed-in user and cascades through
// their organized groups, rosters, and chats.
// DELETE /user/profile
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())

	ctx, cancel := timeouts.Long(r.Context())
	defer cancel()

	if err := h.Memberships.DeleteUser(ctx, u.ID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("user deleted", zap.String("user_id", u.ID.Hex()))
	httpjson.OK(w, "accountDeleted", nil)
}

// ServeAllUsers lists every user. Admin only.
// GET /user/all
func (h *Handler) ServeAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "users", users)
}

// HandleAdminDeleteUser deletes any account with its full cascade. Admin only.
// DELETE /user/{id}
func (h *Handler) HandleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Long(r.Context())
	defer cancel()

	if err := h.Memberships.DeleteUser(ctx, id); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("user deleted by admin", zap.String("user_id", id.Hex()))
	httpjson.OK(w, "accountDeleted", nil)
}

// ServeUser returns another user's public profile.
// GET /user/{id}
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectIDParam(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "user", map[string]any{
		"_id":    u.ID,
		"name":   u.Name,
		"gender": u.Gender,
		"age":    u.Age,
		"tags":   u.Tags,
		"image":  u.Image,
	})
}

// ServeOrganizedGroups lists the groups the signed-in user organizes.
// GET /user/organizerGroup
func (h *Handler) ServeOrganizedGroups(w http.ResponseWriter, r *http.Request) {
	h.serveGroupList(w, r, h.Memberships.ListOrganized)
}

// HandleCreateGroup creates a group with the signed-in user as organizer.
// POST /user/organizerGroup
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())

	var in groupInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	g, err := h.Memberships.CreateGroup(ctx, u.ID, models.Group{
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

	h.Log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("organizer_id", u.ID.Hex()))
	httpjson.Created(w, "groupCreated", g)
}

// HandleUpdateGroup updates a group's info. Organizer only.
// PATCH /user/organizerGroup/{groupID}
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	var in groupInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	if err := h.Groups.UpdateInfo(ctx, groupID, u.ID, in.toUpdate()); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "groupUpdated", nil)
}

// HandleDeleteGroup deletes a group and cascades through user references
// and the chat room. Organizer only.
// DELETE /user/organizerGroup/{groupID}
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Long(r.Context())
	defer cancel()

	if err := h.Memberships.DeleteGroup(ctx, u.ID, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("group deleted",
		zap.String("group_id", groupID.Hex()),
		zap.String("organizer_id", u.ID.Hex()))
	httpjson.OK(w, "groupDeleted", nil)
}

// HandleKickMember removes a member from a group's roster. Organizer only.
// DELETE /user/organizerGroup/{groupID}/member/{userID}
func (h *Handler) HandleKickMember(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}
	memberID, ok := h.objectIDParam(w, r, "userID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	if err := h.Memberships.Kick(ctx, u.ID, memberID, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "memberRemoved", nil)
}

// ServeJoinedGroups lists the groups the signed-in user has joined.
// GET /user/joinGroup
func (h *Handler) ServeJoinedGroups(w http.ResponseWriter, r *http.Request) {
	h.serveGroupList(w, r, h.Memberships.ListJoined)
}

// HandleJoinGroup adds the signed-in user to a group's roster.
// POST /user/joinGroup/{groupID}
func (h *Handler) HandleJoinGroup(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	if err := h.Memberships.Join(ctx, u.ID, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "joined", nil)
}

// HandleLeaveGroup removes the signed-in user from a group's roster.
// DELETE /user/joinGroup/{groupID}
func (h *Handler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	if err := h.Memberships.Leave(ctx, u.ID, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "left", nil)
}

// ServeFavoriteGroups lists the signed-in user's favorite groups.
// GET /user/favoriteGroup
func (h *Handler) ServeFavoriteGroups(w http.ResponseWriter, r *http.Request) {
	h.serveGroupList(w, r, h.Memberships.ListFavorites)
}

// HandleAddFavorite marks a group as a favorite.
// POST /user/favoriteGroup/{groupID}
func (h *Handler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Memberships.AddFavorite(ctx, u.ID, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "favorited", nil)
}

// HandleRemoveFavorite drops a group from the favorites list.
// DELETE /user/favoriteGroup/{groupID}
func (h *Handler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	u := authz.UserCtx(r.Context())
	groupID, ok := h.objectIDParam(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()

	if err := h.Memberships.RemoveFavorite(ctx, u.ID, groupID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "unfavorited", nil)
}

// groupInput is the request body for creating or updating a group.
type groupInput struct {
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

func (in groupInput) toUpdate() groupstore.InfoUpdate {
	return groupstore.InfoUpdate{
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
	}
}

func (h *Handler) serveGroupList(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)) {
	u := authz.UserCtx(r.Context())

	ctx, cancel := timeouts.Medium(r.Context())
	defer cancel()

	groups, err := list(ctx, u.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, "groups", groups)
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

func (h *Handler) issueToken(r *http.Request, userID primitive.ObjectID) (string, error) {
	token, err := h.Tokens.Issue(userID)
	if err != nil {
		return "", err
	}
	ctx, cancel := timeouts.Short(r.Context())
	defer cancel()
	if err := h.Users.PushToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}
