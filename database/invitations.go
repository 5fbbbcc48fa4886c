package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// InvitationRepository handles the invitation workflow records.
type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *Invitation) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) FindByID(ctx context.Context, id uint) (*Invitation, error) {
	var inv Invitation
	err := r.db.WithContext(ctx).
		Preload("Sender").
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindPending returns the pending invitation for a (group, receiver) pair,
// of which there is at most one.
func (r *InvitationRepository) FindPending(ctx context.Context, groupID, receiverID uint) (*Invitation, error) {
	var inv Invitation
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND receiver_id = ? AND status = ?", groupID, receiverID, InvitationPending).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListForReceiver returns the invitations addressed to a user, newest first.
func (r *InvitationRepository) ListForReceiver(ctx context.Context, receiverID uint) ([]Invitation, error) {
	var invs []Invitation
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", receiverID).
		Order("id DESC").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// Accept marks the invitation accepted and adds the receiver to the group's
// members, as one transaction. The membership append is add-if-absent.
func (r *InvitationRepository) Accept(ctx context.Context, inv *Invitation, group *Group, receiver *User, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Association("Members").Append(receiver); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		inv.Status = InvitationAccepted
		inv.RespondedAt = &now
		if err := tx.Save(inv).Error; err != nil {
			return fmt.Errorf("save invitation: %w", err)
		}
		return nil
	})
}

// Reject marks the invitation rejected. Membership is untouched.
func (r *InvitationRepository) Reject(ctx context.Context, inv *Invitation, now time.Time) error {
	inv.Status = InvitationRejected
	inv.RespondedAt = &now
	if err := r.db.WithContext(ctx).Save(inv).Error; err != nil {
		return fmt.Errorf("save invitation: %w", err)
	}
	return nil
}
