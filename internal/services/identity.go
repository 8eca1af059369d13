package services

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
	"github.com/campushub/campushub-backend/internal/requestdata"
)

// identityFromContext pulls the verified (user, role) pair the auth middleware
// stashed. Services trust it as-is; credential checks happened upstream.
func identityFromContext(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil || rd.Role == "" {
		return nil, pkgerrors.ErrNotAuthorized
	}
	return rd, nil
}
