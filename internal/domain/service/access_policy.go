// Package service holds the pure domain logic of boards: the access policy
// and the invite link token generator.
package service

import (
	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err returns a Forbidden error carrying the reason, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domainerrors.Forbidden(d.Reason)
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

const (
	reasonNotMember      = "You are not a member of this board"
	reasonNeedsElevated  = "Only the owner or an admin can do this"
	reasonNeedsOwner     = "Only the owner can do this"
	reasonNeedsEdit      = "You do not have edit permission on this board"
	reasonOwnerRemoval   = "Owner cannot be removed from the board"
	reasonOwnerLeave     = "Owner cannot leave the board, transfer ownership first"
	reasonNeedsCreator   = "Only the creator of the board can delete it"
	reasonAlreadyOwner   = "Member is already the owner"
	reasonOwnerRole      = "Owner role only changes through an ownership transfer"
)

// CanView allows any member of the board.
func CanView(actor *model.Membership) Decision {
	if actor == nil {
		return deny(reasonNotMember)
	}
	return allow
}

// CanInvite allows any member regardless of role.
func CanInvite(actor *model.Membership) Decision {
	return CanView(actor)
}

// CanGenerateLink allows owners and admins.
func CanGenerateLink(actor *model.Membership) Decision {
	if actor == nil {
		return deny(reasonNotMember)
	}
	if actor.Role == model.RoleMember {
		return deny(reasonNeedsElevated)
	}
	return allow
}

// CanChangeRole allows only the owner.
func CanChangeRole(actor *model.Membership) Decision {
	return requireOwner(actor)
}

// CanTransferOwnership allows only the current owner.
func CanTransferOwnership(actor *model.Membership) Decision {
	return requireOwner(actor)
}

func requireOwner(actor *model.Membership) Decision {
	if actor == nil {
		return deny(reasonNotMember)
	}
	if actor.Role != model.RoleOwner {
		return deny(reasonNeedsOwner)
	}
	return allow
}

// CanChangeRoleOf guards the target side of a role change: the owner row is
// only ever modified by an ownership transfer.
func CanChangeRoleOf(target *model.Membership) Decision {
	if target.IsOwner() {
		return deny(reasonOwnerRole)
	}
	return allow
}

// CanTransferTo rejects a transfer to the current owner.
func CanTransferTo(target *model.Membership) Decision {
	if target.IsOwner() {
		return deny(reasonAlreadyOwner)
	}
	return allow
}

// CanRemoveMember allows any member to remove anyone except the current owner.
func CanRemoveMember(actor, target, owner *model.Membership) Decision {
	if actor == nil {
		return deny(reasonNotMember)
	}
	if target.IsOwner() && owner != nil && target.UserID == owner.UserID {
		return deny(reasonOwnerRemoval)
	}
	return allow
}

// CanLeave denies the current owner.
func CanLeave(membership, owner *model.Membership) Decision {
	if membership.IsOwner() && owner != nil && membership.UserID == owner.UserID {
		return deny(reasonOwnerLeave)
	}
	return allow
}

// CanEditBoard requires EDIT permission.
func CanEditBoard(actor *model.Membership) Decision {
	if actor == nil {
		return deny(reasonNotMember)
	}
	if actor.Permission != model.PermissionEdit {
		return deny(reasonNeedsEdit)
	}
	return allow
}

// CanEditCard follows the board edit rule.
func CanEditCard(actor *model.Membership) Decision {
	return CanEditBoard(actor)
}

// CanDeleteBoard allows only the member who created the board.
func CanDeleteBoard(actor *model.Membership, board *model.Board) Decision {
	if actor == nil {
		return deny(reasonNotMember)
	}
	if board.CreatedBy != actor.UserID {
		return deny(reasonNeedsCreator)
	}
	return allow
}

// DerivePermission couples a role with its permission level.
func DerivePermission(role model.Role) model.Permission {
	if role == model.RoleOwner || role == model.RoleAdmin {
		return model.PermissionEdit
	}
	return model.PermissionView
}

// JoinRole is the role granted to a user joining through a link.
func JoinRole(permission model.Permission) model.Role {
	if permission == model.PermissionEdit {
		return model.RoleAdmin
	}
	return model.RoleMember
}
