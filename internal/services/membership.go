package services

import "github.com/vidolch/ai-todo/internal/models"

// MemberSpec is a desired (user, role) pair in a membership update.
type MemberSpec struct {
	UserID uint64
	Role   models.ListRole
}

// MembershipChanges holds the three disjoint mutation sets produced by
// reconciling a desired membership set against current membership.
type MembershipChanges struct {
	Additions   []MemberSpec
	Removals    []uint64
	RoleUpdates []MemberSpec
}

// HasAdditions reports whether the change set grows the membership. The
// task backfill is only triggered by growth, never by removals or role
// changes.
func (c MembershipChanges) HasAdditions() bool {
	return len(c.Additions) > 0
}

// Empty reports whether applying the change set would be a no-op.
func (c MembershipChanges) Empty() bool {
	return len(c.Additions) == 0 && len(c.Removals) == 0 && len(c.RoleUpdates) == 0
}

// DiffMembers reconciles a desired membership set against the current
// membership of a list. Sets are keyed by user ID; the order of the desired
// slice is irrelevant, and a duplicated user ID in it resolves to its last
// occurrence. The acting user is never removed and never has their role
// changed through reconciliation.
func DiffMembers(current []models.ListMembership, desired []MemberSpec, actorID uint64) MembershipChanges {
	currentByID := make(map[uint64]models.ListRole, len(current))
	for _, m := range current {
		currentByID[m.UserID] = m.Role
	}

	desiredByID := make(map[uint64]models.ListRole, len(desired))
	for _, d := range desired {
		desiredByID[d.UserID] = d.Role
	}

	var changes MembershipChanges

	for _, d := range desired {
		role, inDesired := desiredByID[d.UserID]
		if !inDesired || role != d.Role {
			// superseded duplicate entry
			continue
		}

		currentRole, exists := currentByID[d.UserID]
		switch {
		case !exists:
			changes.Additions = append(changes.Additions, MemberSpec{UserID: d.UserID, Role: role})
		case currentRole != role && d.UserID != actorID:
			changes.RoleUpdates = append(changes.RoleUpdates, MemberSpec{UserID: d.UserID, Role: role})
		}

		// Consume the entry so later duplicates of the same user ID are
		// skipped by the inDesired check above.
		delete(desiredByID, d.UserID)
	}

	for _, m := range current {
		if m.UserID == actorID {
			continue
		}
		if _, wanted := hasDesired(desired, m.UserID); !wanted {
			changes.Removals = append(changes.Removals, m.UserID)
		}
	}

	return changes
}

// hasDesired returns the last role requested for the user and whether the
// user appears in the desired set at all.
func hasDesired(desired []MemberSpec, userID uint64) (models.ListRole, bool) {
	var role models.ListRole
	found := false
	for _, d := range desired {
		if d.UserID == userID {
			role = d.Role
			found = true
		}
	}
	return role, found
}

// ownersAfter computes how many OWNER memberships the list would have once
// the change set is applied.
func ownersAfter(current []models.ListMembership, changes MembershipChanges) int {
	removed := make(map[uint64]bool, len(changes.Removals))
	for _, id := range changes.Removals {
		removed[id] = true
	}
	updatedRole := make(map[uint64]models.ListRole, len(changes.RoleUpdates))
	for _, u := range changes.RoleUpdates {
		updatedRole[u.UserID] = u.Role
	}

	owners := 0
	for _, m := range current {
		if removed[m.UserID] {
			continue
		}
		role := m.Role
		if newRole, ok := updatedRole[m.UserID]; ok {
			role = newRole
		}
		if role == models.RoleOwner {
			owners++
		}
	}
	for _, a := range changes.Additions {
		if a.Role == models.RoleOwner {
			owners++
		}
	}
	return owners
}
