package authz_test

import (
	"context"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/authz"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_Empty(t *testing.T) {
	if u := authz.UserCtx(context.Background()); u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
	if tok := authz.TokenCtx(context.Background()); tok != "" {
		t.Errorf("expected empty token, got %q", tok)
	}
}

func TestUserCtx_RoundTrip(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Account: "hiker42"}
	ctx := authz.WithUser(context.Background(), u, "bearer-token-value")

	got := authz.UserCtx(ctx)
	if got == nil || got.ID != u.ID {
		t.Errorf("UserCtx: got %+v", got)
	}
	if tok := authz.TokenCtx(ctx); tok != "bearer-token-value" {
		t.Errorf("TokenCtx: got %q", tok)
	}
}
