/*
actor.go - Request actor identity

PURPOSE:
  The API carries no authentication; the frontend (or gateway) asserts
  who is calling via two headers and the handlers enforce role rules on
  top of that identity:

    X-Actor-ID:   employee id of the caller
    X-Actor-Role: "employee" or "manager"

  Employees see and act on their own records; managers decide requests
  and may read anyone's records. Requests without an actor are rejected
  up front.
*/
package api

import (
	"context"
	"net/http"

	"github.com/rosterly/comp-ledger/ledger"
)

const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"

	RoleEmployee = "employee"
	RoleManager  = "manager"
)

type actorKey struct{}

// Actor is the asserted caller identity.
type Actor struct {
	ID   ledger.EmployeeID
	Role string
}

// IsManager reports whether the actor may decide requests and read
// other employees' records.
func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

// WithActor extracts the actor headers and rejects requests that carry
// none or an unknown role.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerActorID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "X-Actor-ID header is required", nil)
			return
		}
		role := r.Header.Get(headerActorRole)
		if role == "" {
			role = RoleEmployee
		}
		if role != RoleEmployee && role != RoleManager {
			writeError(w, http.StatusBadRequest, "X-Actor-Role must be employee or manager", nil)
			return
		}

		actor := Actor{ID: ledger.EmployeeID(id), Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// ActorFrom returns the actor set by WithActor.
func ActorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}
