package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamboard/teamboard/database"
)

// InvitationService drives the invite workflow: pending is the only state
// that can transition, and it can only go to accepted or rejected.
type InvitationService struct {
	invRepo   *database.InvitationRepository
	groupRepo *database.GroupRepository
	userRepo  *database.UserRepository
	auditor   *Auditor
}

func NewInvitationService(invRepo *database.InvitationRepository, groupRepo *database.GroupRepository, userRepo *database.UserRepository, auditor *Auditor) *InvitationService {
	return &InvitationService{invRepo: invRepo, groupRepo: groupRepo, userRepo: userRepo, auditor: auditor}
}

// Send creates a pending invitation from the group owner to a non-member.
// Blocking is evaluated here and only here: a receiver who has blocked the
// sender never gets a new invitation, but existing memberships are untouched.
func (s *InvitationService) Send(ctx context.Context, groupID, receiverID, senderID uint) (*database.Invitation, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("group %d not found", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	if !IsOwner(group, senderID) {
		return nil, errForbidden("only the group owner may send invitations")
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errNotFound("user %d not found", receiverID)
		}
		return nil, fmt.Errorf("find receiver: %w", err)
	}

	if IsMember(group, receiverID) {
		return nil, errConflict("user %d is already a member of the group", receiverID)
	}

	blocked, err := s.userRepo.HasBlocked(ctx, receiverID, senderID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errConflict("user %d does not accept invitations from you", receiverID)
	}

	if _, err := s.invRepo.FindPending(ctx, groupID, receiverID); err == nil {
		return nil, errConflict("an invitation for user %d is already pending", receiverID)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("find pending invitation: %w", err)
	}

	inv := database.Invitation{
		GroupID:    groupID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     database.InvitationPending,
	}
	if err := s.invRepo.Create(ctx, &inv); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditCreate, "invitation", inv.ID, senderID,
		fmt.Sprintf("invited user %d to group %d", receiverID, groupID))
	return &inv, nil
}

// ListForUser returns the invitations addressed to the actor.
func (s *InvitationService) ListForUser(ctx context.Context, userID uint) ([]database.Invitation, error) {
	return s.invRepo.ListForReceiver(ctx, userID)
}

// Accept joins the receiver to the group and closes the invitation.
func (s *InvitationService) Accept(ctx context.Context, invitationID, actorID uint) (*database.Invitation, error) {
	inv, err := s.loadPendingFor(ctx, invitationID, actorID)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(ctx, inv.GroupID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("the invitation's group no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}

	receiver, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("find receiver: %w", err)
	}

	if err := s.invRepo.Accept(ctx, inv, group, receiver, time.Now()); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "invitation", inv.ID, actorID,
		fmt.Sprintf("accepted invitation to group %d", inv.GroupID))
	return inv, nil
}

// Reject closes the invitation without touching membership.
func (s *InvitationService) Reject(ctx context.Context, invitationID, actorID uint) (*database.Invitation, error) {
	inv, err := s.loadPendingFor(ctx, invitationID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.invRepo.Reject(ctx, inv, time.Now()); err != nil {
		return nil, err
	}

	s.auditor.Record(database.AuditUpdate, "invitation", inv.ID, actorID,
		fmt.Sprintf("rejected invitation to group %d", inv.GroupID))
	return inv, nil
}

func (s *InvitationService) loadPendingFor(ctx context.Context, invitationID, actorID uint) (*database.Invitation, error) {
	inv, err := s.invRepo.FindByID(ctx, invitationID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNotFound("invitation %d not found", invitationID)
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if inv.ReceiverID != actorID {
		return nil, errForbidden("only the invited user may respond to this invitation")
	}
	if inv.Status != database.InvitationPending {
		return nil, errConflict("invitation is already %s", inv.Status)
	}
	return inv, nil
}
