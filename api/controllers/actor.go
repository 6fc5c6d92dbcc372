package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Kai120789/marketplace/api/middleware"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
)

// requireActor returns the authenticated caller or an UNAUTHORIZED error.
func requireActor(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	userID, role, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	return userID, role, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
