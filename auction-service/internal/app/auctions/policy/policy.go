// Package policy decides whether a caller may perform an operation on a
// resource. It holds no state and performs no I/O: callers load the resource
// first and pass its owner in.
package policy

import (
	"github.com/google/uuid"
)

type Operation string

const (
	OpList   Operation = "list"
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type Kind string

const (
	KindCategory Kind = "category"
	KindAuction  Kind = "auction"
	KindBid      Kind = "bid"
	KindRating   Kind = "rating"
	KindComment  Kind = "comment"
	// KindUserScope covers views of the caller's own data
	// (user_auctions, user_bids, my_rating, my_comment).
	KindUserScope Kind = "user_scope"
)

// Caller is the identity behind a request. The zero value is anonymous.
type Caller struct {
	ID            uuid.UUID
	Username      string
	IsAdmin       bool
	Authenticated bool
}

func Anonymous() Caller {
	return Caller{}
}

func (c Caller) Owns(ownerID uuid.UUID) bool {
	return c.Authenticated && c.ID != uuid.Nil && c.ID == ownerID
}

type Resource struct {
	Kind    Kind
	OwnerID uuid.UUID
}

func On(kind Kind) Resource {
	return Resource{Kind: kind}
}

func Owned(kind Kind, ownerID uuid.UUID) Resource {
	return Resource{Kind: kind, OwnerID: ownerID}
}

type DenyKind int

const (
	DenyNone DenyKind = iota
	DenyUnauthenticated
	DenyForbidden
)

type Decision struct {
	Allowed bool
	Kind    DenyKind
	Reason  string
}

const (
	ReasonUnauthenticated = "Authentication credentials were not provided."
	ReasonForbidden       = "You do not have permission to perform this action."
	ReasonNotOwner        = "Only the auctioneer or an administrator can modify this auction."
	ReasonNotAuthor       = "Only the author or an administrator can modify this item."
)

func allow() Decision {
	return Decision{Allowed: true}
}

func unauthenticated() Decision {
	return Decision{Kind: DenyUnauthenticated, Reason: ReasonUnauthenticated}
}

func forbidden(reason string) Decision {
	return Decision{Kind: DenyForbidden, Reason: reason}
}

// Authorize evaluates one request.
//
//   - anyone may list and read categories, auctions, bid lists, ratings and comments;
//   - reading a single bid, the caller's own data, and every create need a login;
//   - categories may be changed by any authenticated caller;
//   - auctions may be changed only by their auctioneer or an admin;
//   - bids, ratings and comments only by their author or an admin.
func Authorize(op Operation, res Resource, caller Caller) Decision {
	switch op {
	case OpList, OpRead:
		if res.Kind == KindUserScope || (res.Kind == KindBid && op == OpRead) {
			return requireLogin(caller)
		}
		return allow()

	case OpCreate:
		return requireLogin(caller)

	case OpUpdate, OpDelete:
		if !caller.Authenticated {
			return unauthenticated()
		}
		switch res.Kind {
		case KindCategory:
			return allow()
		case KindAuction:
			return ownerOrAdmin(res, caller, ReasonNotOwner)
		case KindBid, KindRating, KindComment, KindUserScope:
			return ownerOrAdmin(res, caller, ReasonNotAuthor)
		}
	}

	return forbidden(ReasonForbidden)
}

func requireLogin(caller Caller) Decision {
	if !caller.Authenticated {
		return unauthenticated()
	}
	return allow()
}

func ownerOrAdmin(res Resource, caller Caller, reason string) Decision {
	if caller.IsAdmin || caller.Owns(res.OwnerID) {
		return allow()
	}
	return forbidden(reason)
}
