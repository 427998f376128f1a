package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrListNotFound      = errors.New("list not found")
	ErrListNameRequired  = errors.New("list name is required")
	ErrInvalidRole       = errors.New("role must be OWNER or CONTRIBUTOR")
	ErrNotListMember     = errors.New("user is not a member of the list")
	ErrMemberNotFound    = errors.New("list member not found")
	ErrAlreadyListMember = errors.New("user is already a member of the list")
	ErrLastOwner         = errors.New("a list must have at least one owner")
	ErrInviteeNotFound   = errors.New("invited user does not exist")
	ErrInviteeInactive   = errors.New("invited user is not active")
)

// ListService provides business logic for lists and their memberships.
type ListService struct {
	listRepo repository.ListRepository
	userRepo repository.UserRepository
}

// NewListService creates a new ListService.
func NewListService(listRepo repository.ListRepository, userRepo repository.UserRepository) *ListService {
	return &ListService{
		listRepo: listRepo,
		userRepo: userRepo,
	}
}

// CreateListInput represents parameters to create a new list. Members are
// optional collaborators invited at creation time; the creator always
// becomes an OWNER regardless of what Members contains.
type CreateListInput struct {
	Name        string
	Description string
	Color       string
	CreatorID   uint64
	Members     []MemberSpec
}

// CreateList creates a list with the creator as its first owner, plus any
// invited members, in one transaction.
func (s *ListService) CreateList(input CreateListInput) (*models.List, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrListNameRequired
	}

	now := time.Now()
	memberships := []models.ListMembership{{
		UserID:   input.CreatorID,
		Role:     models.RoleOwner,
		JoinedAt: now,
	}}

	seen := map[uint64]bool{input.CreatorID: true}
	for _, m := range input.Members {
		if !m.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if seen[m.UserID] {
			continue
		}
		if err := s.checkInvitee(m.UserID); err != nil {
			return nil, err
		}
		seen[m.UserID] = true
		memberships = append(memberships, models.ListMembership{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: now,
		})
	}

	list := &models.List{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
	}

	if err := s.listRepo.Create(list, memberships); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return list, nil
}

// ListsForUser returns the lists the user belongs to, each with the user's
// role and the list's task count.
func (s *ListService) ListsForUser(userID uint64) ([]repository.ListWithMeta, error) {
	lists, err := s.listRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return lists, nil
}

// GetListWithMembers returns a list and all of its members.
func (s *ListService) GetListWithMembers(listID uint64) (*models.List, []models.ListMembership, error) {
	list, err := s.listRepo.FindByID(listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrListNotFound
		}
		return nil, nil, fmt.Errorf("failed to find list: %w", err)
	}

	members, err := s.listRepo.ListMembers(listID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members: %w", err)
	}

	return list, members, nil
}

// UpdateListInput carries the optional list attribute changes and an
// optional full desired membership set. A nil Members leaves membership
// alone; a non-nil Members is reconciled against current membership.
type UpdateListInput struct {
	Name        *string
	Description *string
	Color       *string
	Members     []MemberSpec
	HasMembers  bool
}

// UpdateList renames/recolors a list and/or reconciles its membership. The
// actor must already be verified as an OWNER by the caller. The desired
// member set is validated before anything is persisted, so a rejected
// membership change leaves the list's attributes untouched.
func (s *ListService) UpdateList(listID, actorID uint64, input UpdateListInput) (*models.List, error) {
	list, err := s.listRepo.FindByID(listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to find list: %w", err)
	}

	var changeSet *repository.MembershipChangeSet
	if input.HasMembers {
		changeSet, err = s.planMembershipChanges(listID, actorID, input.Members)
		if err != nil {
			return nil, err
		}
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrListNameRequired
		}
		list.Name = *input.Name
	}
	if input.Description != nil {
		list.Description = *input.Description
	}
	if input.Color != nil {
		list.Color = *input.Color
	}

	if err := s.listRepo.Update(list); err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	if changeSet != nil {
		if err := s.listRepo.ApplyMembershipChanges(listID, *changeSet); err != nil {
			return nil, fmt.Errorf("failed to apply membership changes: %w", err)
		}
	}

	return list, nil
}

// ReconcileMembers applies a full desired membership set to a list:
// members absent from the desired set are removed (except the actor),
// new ones are added, and differing roles are updated (except the actor's).
// When at least one member was added, every unassigned task in the list is
// given to the actor in the same transaction.
func (s *ListService) ReconcileMembers(listID, actorID uint64, desired []MemberSpec) error {
	changeSet, err := s.planMembershipChanges(listID, actorID, desired)
	if err != nil {
		return err
	}
	if changeSet == nil {
		return nil
	}

	if err := s.listRepo.ApplyMembershipChanges(listID, *changeSet); err != nil {
		return fmt.Errorf("failed to apply membership changes: %w", err)
	}

	return nil
}

// planMembershipChanges validates the desired member set against current
// membership and builds the change set to apply. Nothing is mutated here;
// a nil change set with a nil error means the reconciliation is a no-op.
func (s *ListService) planMembershipChanges(listID, actorID uint64, desired []MemberSpec) (*repository.MembershipChangeSet, error) {
	for _, d := range desired {
		if !d.Role.Valid() {
			return nil, ErrInvalidRole
		}
	}

	current, err := s.listRepo.ListMembers(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	changes := DiffMembers(current, desired, actorID)
	if changes.Empty() {
		return nil, nil
	}

	if ownersAfter(current, changes) < 1 {
		return nil, ErrLastOwner
	}

	for _, a := range changes.Additions {
		if err := s.checkInvitee(a.UserID); err != nil {
			return nil, err
		}
	}

	changeSet := &repository.MembershipChangeSet{
		RemoveUserIDs: changes.Removals,
	}
	now := time.Now()
	for _, a := range changes.Additions {
		changeSet.Additions = append(changeSet.Additions, models.ListMembership{
			UserID:   a.UserID,
			Role:     a.Role,
			JoinedAt: now,
		})
	}
	for _, u := range changes.RoleUpdates {
		changeSet.RoleUpdates = append(changeSet.RoleUpdates, models.ListMembership{
			UserID: u.UserID,
			Role:   u.Role,
		})
	}
	if changes.HasAdditions() {
		changeSet.BackfillUserID = &actorID
	}

	return changeSet, nil
}

// DeleteList removes a list. Memberships go with it; the list's tasks are
// detached, never deleted as a side effect.
func (s *ListService) DeleteList(listID uint64) error {
	if _, err := s.listRepo.FindByID(listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to find list: %w", err)
	}

	if err := s.listRepo.Delete(listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	return nil
}

// Members returns the memberships of a list with user info.
func (s *ListService) Members(listID uint64) ([]models.ListMembership, error) {
	members, err := s.listRepo.ListMembers(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMember invites a single user to the list. Adding a member assigns all
// currently unassigned tasks in the list to the acting user, atomically
// with the insert.
func (s *ListService) AddMember(listID, actorID uint64, spec MemberSpec) (*models.ListMembership, error) {
	if !spec.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.checkInvitee(spec.UserID); err != nil {
		return nil, err
	}

	if _, err := s.listRepo.FindMembership(listID, spec.UserID); err == nil {
		return nil, ErrAlreadyListMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ListMembership{
		ListID:   listID,
		UserID:   spec.UserID,
		Role:     spec.Role,
		JoinedAt: time.Now(),
	}

	if err := s.listRepo.AddMember(member, &actorID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember removes a member from the list. An owner removing themselves
// must leave at least one other owner behind; otherwise the removal fails
// and nothing is mutated.
func (s *ListService) RemoveMember(listID, targetUserID, actorID uint64) error {
	target, err := s.listRepo.FindMembership(listID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if targetUserID == actorID && target.Role == models.RoleOwner {
		otherOwners, err := s.listRepo.CountOwners(listID, actorID)
		if err != nil {
			return fmt.Errorf("failed to count owners: %w", err)
		}
		if otherOwners == 0 {
			return ErrLastOwner
		}
	}

	if err := s.listRepo.RemoveMember(listID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *ListService) checkInvitee(userID uint64) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteeNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return ErrInviteeInactive
	}
	return nil
}
