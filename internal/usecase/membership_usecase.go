package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/dto"
	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	"github.com/wekeepgrowing/board-server/internal/domain/service"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
	"github.com/wekeepgrowing/board-server/pkg/uniqueid"
)

// maxLinkAttempts bounds the retries on a per-board invite code collision.
const maxLinkAttempts = 5

// MembershipRepositories groups the stores the membership flows touch.
type MembershipRepositories struct {
	Boards     repository.BoardRepository
	Members    repository.MembershipRepository
	Links      repository.InviteLinkRepository
	Users      repository.UserRepository
	Cards      repository.CardRepository
	Activities repository.ActivityRepository
	Transactor repository.Transactor
	Limiter    repository.JoinLimiter
	Publisher  repository.EventPublisher
}

// MembershipUsecase runs the membership lifecycle of a board: invites,
// join-by-link, role changes, ownership transfer, leaving and removal.
type MembershipUsecase struct {
	access    boardAccess
	members   repository.MembershipRepository
	links     repository.InviteLinkRepository
	users     repository.UserRepository
	cards     repository.CardRepository
	tx        repository.Transactor
	limiter   repository.JoinLimiter
	issuer    linkIssuer
	activity  activityLog
	clientURL string
	logger    *zap.Logger
}

// NewMembershipUsecase creates a new membership usecase
func NewMembershipUsecase(
	repos MembershipRepositories,
	tokens *service.LinkTokenGenerator,
	clientURL string,
	logger *zap.Logger,
) *MembershipUsecase {
	return &MembershipUsecase{
		access:  boardAccess{boards: repos.Boards, members: repos.Members},
		members: repos.Members,
		links:   repos.Links,
		users:   repos.Users,
		cards:   repos.Cards,
		tx:      repos.Transactor,
		limiter: repos.Limiter,
		issuer:  linkIssuer{links: repos.Links, tokens: tokens},
		activity: activityLog{
			repo:      repos.Activities,
			publisher: repos.Publisher,
			logger:    logger,
		},
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
	}
}

// JoinURL builds the client-facing URL that accepts an invite.
func (u *MembershipUsecase) JoinURL(boardID, hashed string) string {
	return fmt.Sprintf("%s/board/%s/join/%s", u.clientURL, boardID, hashed)
}

// InviteByUsername adds the named user as a MEMBER with VIEW permission.
func (u *MembershipUsecase) InviteByUsername(ctx context.Context, actorID, boardID, username string) (*dto.Member, error) {
	var (
		created *model.Membership
		entry   *model.BoardActivity
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, actorID)
		if err != nil {
			return err
		}
		if err := service.CanInvite(actor).Err(); err != nil {
			return err
		}

		user, err := u.users.GetByUsername(ctx, username)
		if err != nil {
			return notFoundOr(err, domainerrors.MsgUserNotFound, "failed to load user")
		}

		if _, err := u.members.GetByBoardAndUser(ctx, boardID, user.ID); err == nil {
			return domainerrors.Conflict(domainerrors.MsgAlreadyMember)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Wrap(err, "failed to check membership")
		}

		created, err = u.addMember(ctx, boardID, user.ID, model.RoleMember, model.PermissionView)
		if err != nil {
			return err
		}
		created.User = user

		entry, err = u.activity.record(ctx, boardID, actorID, model.ActionMemberInvited, map[string]interface{}{
			"team_id":  created.ID,
			"user_id":  user.ID,
			"username": user.Username,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	u.activity.publish(ctx, entry)
	u.logger.Info("Member invited",
		zap.String("board_id", boardID),
		zap.String("team_id", created.ID),
		zap.String("invited_by", actorID))

	member := dto.NewMember(created)
	return &member, nil
}

// GenerateLink replaces the board's invite link with a fresh one and returns
// its join URL. An empty permission defaults to VIEW.
func (u *MembershipUsecase) GenerateLink(ctx context.Context, actorID, boardID string, permission model.Permission) (string, error) {
	if permission == "" {
		permission = model.PermissionView
	}
	if !permission.Valid() {
		return "", domainerrors.Validation("Invalid permission", map[string]string{
			"permission": "must be one of VIEW, EDIT",
		})
	}

	var (
		link  *model.InviteLink
		entry *model.BoardActivity
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return domainerrors.NotFound(domainerrors.MsgNotBoardMember)
		}
		if err := service.CanGenerateLink(actor).Err(); err != nil {
			return err
		}

		link, err = u.issuer.issue(ctx, boardID, permission)
		if err != nil {
			return err
		}

		pruned, err := u.links.DeleteOthers(ctx, boardID, link.Code)
		if err != nil {
			return apperrors.Wrap(err, "failed to prune invite links")
		}

		entry, err = u.activity.record(ctx, boardID, actorID, model.ActionLinkGenerated, map[string]interface{}{
			"permission": string(permission),
			"pruned":     pruned,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	u.activity.publish(ctx, entry)
	return u.JoinURL(boardID, link.Hashed), nil
}

// GetLink returns the join URL of the board's current invite link.
func (u *MembershipUsecase) GetLink(ctx context.Context, actorID, boardID string) (string, error) {
	_, actor, err := u.access.load(ctx, boardID, actorID)
	if err != nil {
		return "", err
	}
	if err := service.CanView(actor).Err(); err != nil {
		return "", err
	}

	link, err := u.links.GetLatest(ctx, boardID)
	if err != nil {
		return "", notFoundOr(err, "Invite link not found", "failed to load invite link")
	}
	return u.JoinURL(boardID, link.Hashed), nil
}

// JoinByLink adds userID to the board if hashed matches the current link.
// A stale or forged hash is reported as NotFound.
func (u *MembershipUsecase) JoinByLink(ctx context.Context, userID, boardID, hashed string) (*dto.Member, error) {
	if u.limiter != nil {
		allowed, err := u.limiter.Allow(ctx, "join:"+boardID+":"+userID)
		switch {
		case err != nil:
			u.logger.Warn("Join limiter unavailable, allowing attempt", zap.String("board_id", boardID), zap.Error(err))
		case !allowed:
			return nil, domainerrors.TooManyRequests("Too many join attempts, try again later")
		}
	}

	var (
		created *model.Membership
		entry   *model.BoardActivity
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, existing, err := u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}

		link, err := u.links.GetLatest(ctx, boardID)
		if err != nil {
			return notFoundOr(err, domainerrors.MsgInvalidLink, "failed to load invite link")
		}
		if !u.issuer.tokens.Validate(boardID, link.Code, link.Permission, hashed) {
			return domainerrors.NotFound(domainerrors.MsgInvalidLink)
		}

		if existing != nil {
			return domainerrors.Conflict(domainerrors.MsgAlreadyMember)
		}

		created, err = u.addMember(ctx, boardID, userID, service.JoinRole(link.Permission), link.Permission)
		if err != nil {
			return err
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionMemberJoined, map[string]interface{}{
			"team_id":    created.ID,
			"role":       string(created.Role),
			"permission": string(created.Permission),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	u.activity.publish(ctx, entry)
	u.logger.Info("Member joined by link",
		zap.String("board_id", boardID),
		zap.String("user_id", userID),
		zap.String("role", string(created.Role)))

	member := dto.NewMember(created)
	return &member, nil
}

// Leave removes the caller's own membership. The current owner must transfer
// ownership first.
func (u *MembershipUsecase) Leave(ctx context.Context, userID, boardID string) error {
	var entry *model.BoardActivity

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, membership, err := u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}
		if membership == nil {
			return domainerrors.NotFound(domainerrors.MsgNotBoardMember)
		}

		owner, err := u.access.owner(ctx, boardID)
		if err != nil {
			return err
		}
		if err := service.CanLeave(membership, owner).Err(); err != nil {
			return err
		}

		if err := u.dropMember(ctx, membership.ID); err != nil {
			return err
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionMemberLeft, map[string]interface{}{
			"team_id": membership.ID,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.activity.publish(ctx, entry)
	return nil
}

// RemoveMember deletes another membership of the board. Any member may remove
// any non-owner membership.
func (u *MembershipUsecase) RemoveMember(ctx context.Context, actorID, boardID, teamID string) error {
	var entry *model.BoardActivity

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, actorID)
		if err != nil {
			return err
		}

		target, err := u.target(ctx, boardID, teamID)
		if err != nil {
			return err
		}

		owner, err := u.access.owner(ctx, boardID)
		if err != nil {
			return err
		}
		if err := service.CanRemoveMember(actor, target, owner).Err(); err != nil {
			return err
		}

		if err := u.dropMember(ctx, target.ID); err != nil {
			return err
		}

		entry, err = u.activity.record(ctx, boardID, actorID, model.ActionMemberRemoved, map[string]interface{}{
			"team_id": target.ID,
			"user_id": target.UserID,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.activity.publish(ctx, entry)
	return nil
}

// ChangeRole sets the role of a membership and derives its permission from
// it. OWNER is only reachable through TransferOwnership.
func (u *MembershipUsecase) ChangeRole(ctx context.Context, actorID, boardID, teamID string, role model.Role) (*dto.Member, error) {
	if role != model.RoleAdmin && role != model.RoleMember {
		return nil, domainerrors.Validation("Invalid role", map[string]string{
			"role": "must be one of ADMIN, MEMBER",
		})
	}

	var (
		target *model.Membership
		entry  *model.BoardActivity
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, actorID)
		if err != nil {
			return err
		}
		if err := service.CanChangeRole(actor).Err(); err != nil {
			return err
		}

		target, err = u.target(ctx, boardID, teamID)
		if err != nil {
			return err
		}
		if err := service.CanChangeRoleOf(target).Err(); err != nil {
			return err
		}

		previous := target.Role
		permission := service.DerivePermission(role)
		if err := u.members.UpdateRole(ctx, target.ID, role, permission); err != nil {
			return notFoundOr(err, domainerrors.MsgMemberNotFound, "failed to update role")
		}
		target.Role, target.Permission = role, permission

		entry, err = u.activity.record(ctx, boardID, actorID, model.ActionMemberRoleChanged, map[string]interface{}{
			"team_id": target.ID,
			"from":    string(previous),
			"to":      string(role),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	u.activity.publish(ctx, entry)
	member := dto.NewMember(target)
	return &member, nil
}

// TransferOwnership promotes teamID to OWNER and demotes the acting owner to
// ADMIN in one transaction.
func (u *MembershipUsecase) TransferOwnership(ctx context.Context, actorID, boardID, teamID string) error {
	var entry *model.BoardActivity

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, actorID)
		if err != nil {
			return err
		}
		if err := service.CanTransferOwnership(actor).Err(); err != nil {
			return err
		}

		target, err := u.target(ctx, boardID, teamID)
		if err != nil {
			return err
		}
		if err := service.CanTransferTo(target).Err(); err != nil {
			return err
		}

		// demote first: the single-owner index rejects two owners at any point
		if err := u.members.UpdateRole(ctx, actor.ID, model.RoleAdmin, service.DerivePermission(model.RoleAdmin)); err != nil {
			return apperrors.Wrap(err, "failed to demote previous owner")
		}
		if err := u.members.UpdateRole(ctx, target.ID, model.RoleOwner, service.DerivePermission(model.RoleOwner)); err != nil {
			return apperrors.Wrap(err, "failed to promote new owner")
		}

		owners, err := u.members.CountByRole(ctx, boardID, model.RoleOwner)
		if err != nil {
			return apperrors.Wrap(err, "failed to verify ownership")
		}
		if owners != 1 {
			return apperrors.NewAppError(apperrors.ErrInternal, "ownership transfer left the board without a single owner",
				fmt.Errorf("board %s has %d owners", boardID, owners))
		}

		entry, err = u.activity.record(ctx, boardID, actorID, model.ActionOwnershipTransferred, map[string]interface{}{
			"from_team_id": actor.ID,
			"to_team_id":   target.ID,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.activity.publish(ctx, entry)
	u.logger.Info("Board ownership transferred",
		zap.String("board_id", boardID),
		zap.String("from_user_id", actorID),
		zap.String("to_team_id", teamID))
	return nil
}

// ListTeam pages through the roster, filtered by username prefix.
func (u *MembershipUsecase) ListTeam(ctx context.Context, actorID, boardID string, query entity.TeamQuery) ([]dto.Member, entity.Paging, error) {
	_, actor, err := u.access.load(ctx, boardID, actorID)
	if err != nil {
		return nil, entity.Paging{}, err
	}
	if err := service.CanView(actor).Err(); err != nil {
		return nil, entity.Paging{}, err
	}

	query.Normalize()
	memberships, total, err := u.members.ListByBoard(ctx, boardID, query)
	if err != nil {
		return nil, entity.Paging{}, apperrors.Wrap(err, "failed to list team")
	}

	members := make([]dto.Member, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, dto.NewMember(m))
	}
	return members, entity.NewPaging(query.Page, query.Limit, total), nil
}

// ListActivity pages through the audit trail, newest first.
func (u *MembershipUsecase) ListActivity(ctx context.Context, actorID, boardID string, page entity.PaginationParams) ([]dto.Activity, entity.Paging, error) {
	_, actor, err := u.access.load(ctx, boardID, actorID)
	if err != nil {
		return nil, entity.Paging{}, err
	}
	if err := service.CanView(actor).Err(); err != nil {
		return nil, entity.Paging{}, err
	}

	page.Normalize()
	entries, total, err := u.activity.repo.ListByBoard(ctx, boardID, page)
	if err != nil {
		return nil, entity.Paging{}, apperrors.Wrap(err, "failed to list activity")
	}

	activities := make([]dto.Activity, 0, len(entries))
	for _, e := range entries {
		activities = append(activities, dto.NewActivity(e))
	}
	return activities, entity.NewPaging(page.Page, page.Limit, total), nil
}

// target loads a membership of boardID by team id.
func (u *MembershipUsecase) target(ctx context.Context, boardID, teamID string) (*model.Membership, error) {
	target, err := u.members.GetByID(ctx, teamID)
	if err != nil {
		return nil, notFoundOr(err, domainerrors.MsgMemberNotFound, "failed to load member")
	}
	if target.BoardID != boardID {
		return nil, domainerrors.NotFound(domainerrors.MsgMemberNotFound)
	}
	return target, nil
}

func (u *MembershipUsecase) addMember(ctx context.Context, boardID, userID string, role model.Role, permission model.Permission) (*model.Membership, error) {
	id, err := uniqueid.Generate("M")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate team id")
	}

	membership := &model.Membership{
		ID:         id,
		BoardID:    boardID,
		UserID:     userID,
		Role:       role,
		Permission: permission,
	}
	if err := u.members.Create(ctx, membership); err != nil {
		return nil, conflictOr(err, domainerrors.MsgAlreadyMember, "failed to create membership")
	}
	return membership, nil
}

// dropMember unassigns the membership from every card, then deletes it.
func (u *MembershipUsecase) dropMember(ctx context.Context, teamID string) error {
	if err := u.cards.DeleteMembersByTeam(ctx, teamID); err != nil {
		return apperrors.Wrap(err, "failed to unassign member from cards")
	}
	if err := u.members.Delete(ctx, teamID); err != nil {
		return notFoundOr(err, domainerrors.MsgMemberNotFound, "failed to delete membership")
	}
	return nil
}

// linkIssuer creates invite links with a per-board unique code.
type linkIssuer struct {
	links  repository.InviteLinkRepository
	tokens *service.LinkTokenGenerator
}

func (l linkIssuer) issue(ctx context.Context, boardID string, permission model.Permission) (*model.InviteLink, error) {
	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		token, err := l.tokens.Generate(boardID, permission)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to generate invite code")
		}

		taken, err := l.links.ExistsCode(ctx, boardID, token.Code)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to check invite code")
		}
		if taken {
			continue
		}

		id, err := uniqueid.Generate("L")
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to generate link id")
		}

		link := &model.InviteLink{
			ID:         id,
			BoardID:    boardID,
			Code:       token.Code,
			Hashed:     token.Hashed,
			Permission: permission,
		}
		if err := l.links.Create(ctx, link); err != nil {
			return nil, apperrors.Wrap(err, "failed to create invite link")
		}
		return link, nil
	}

	return nil, apperrors.NewAppError(apperrors.ErrInternal, "failed to generate a unique invite code",
		fmt.Errorf("%d collisions on board %s", maxLinkAttempts, boardID))
}
