package repository

import (
	"github.com/vidolch/ai-todo/internal/models"
	"gorm.io/gorm"
)

// GormListRepository is a GORM implementation of ListRepository
type GormListRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new ListRepository
func NewListRepository(db *gorm.DB) ListRepository {
	return &GormListRepository{db: db}
}

// Create creates a list along with its initial memberships in a transaction
func (r *GormListRepository) Create(list *models.List, memberships []models.ListMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(list).Error; err != nil {
			return err
		}

		for i := range memberships {
			memberships[i].ListID = list.ID
		}

		return tx.Create(&memberships).Error
	})
}

// FindByID finds a list by ID
func (r *GormListRepository) FindByID(id uint64) (*models.List, error) {
	var list models.List
	if err := r.db.First(&list, id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// Update updates a list
func (r *GormListRepository) Update(list *models.List) error {
	return r.db.Save(list).Error
}

// Delete removes a list and its memberships. Tasks are detached, never
// deleted as a side effect of list deletion.
func (r *GormListRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("list_id = ?", id).
			Update("list_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("list_id = ?", id).Delete(&models.ListMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.List{}, id).Error
	})
}

// ListForUser returns the lists a user belongs to, newest first, with the
// user's role and the task count per list
func (r *GormListRepository) ListForUser(userID uint64) ([]ListWithMeta, error) {
	var memberships []models.ListMembership
	if err := r.db.Preload("List").
		Joins("JOIN lists ON lists.id = list_memberships.list_id AND lists.deleted_at IS NULL").
		Where("list_memberships.user_id = ?", userID).
		Order("lists.created_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	if len(memberships) == 0 {
		return []ListWithMeta{}, nil
	}

	listIDs := make([]uint64, len(memberships))
	for i, m := range memberships {
		listIDs[i] = m.ListID
	}

	type taskCount struct {
		ListID uint64
		Count  int64
	}
	var counts []taskCount
	if err := r.db.Model(&models.Task{}).
		Select("list_id, COUNT(*) AS count").
		Where("list_id IN ?", listIDs).
		Group("list_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	countByList := make(map[uint64]int64, len(counts))
	for _, c := range counts {
		countByList[c.ListID] = c.Count
	}

	result := make([]ListWithMeta, len(memberships))
	for i, m := range memberships {
		result[i] = ListWithMeta{
			List:      m.List,
			Role:      m.Role,
			TaskCount: countByList[m.ListID],
		}
	}

	return result, nil
}

// FindMembership finds a specific list membership
func (r *GormListRepository) FindMembership(listID, userID uint64) (*models.ListMembership, error) {
	var member models.ListMembership
	if err := r.db.Where("list_id = ? AND user_id = ?", listID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a list
func (r *GormListRepository) ListMembers(listID uint64) ([]models.ListMembership, error) {
	var members []models.ListMembership
	if err := r.db.Preload("User").
		Where("list_id = ?", listID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember adds a member to a list. The backfill, when requested, runs in
// the same transaction so a failed insert never reassigns tasks.
func (r *GormListRepository) AddMember(member *models.ListMembership, backfillUserID *uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		if backfillUserID != nil {
			return assignUnownedTasks(tx, member.ListID, *backfillUserID)
		}
		return nil
	})
}

// RemoveMember removes a member from a list
func (r *GormListRepository) RemoveMember(listID, userID uint64) error {
	return r.db.Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&models.ListMembership{}).Error
}

// ApplyMembershipChanges applies a reconciled membership change set in one
// transaction: removals, role updates, additions, then the backfill.
func (r *GormListRepository) ApplyMembershipChanges(listID uint64, changes MembershipChangeSet) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(changes.RemoveUserIDs) > 0 {
			if err := tx.Where("list_id = ? AND user_id IN ?", listID, changes.RemoveUserIDs).
				Delete(&models.ListMembership{}).Error; err != nil {
				return err
			}
		}

		for _, update := range changes.RoleUpdates {
			if err := tx.Model(&models.ListMembership{}).
				Where("list_id = ? AND user_id = ?", listID, update.UserID).
				Update("role", update.Role).Error; err != nil {
				return err
			}
		}

		for i := range changes.Additions {
			changes.Additions[i].ListID = listID
		}
		if len(changes.Additions) > 0 {
			if err := tx.Create(&changes.Additions).Error; err != nil {
				return err
			}
		}

		if changes.BackfillUserID != nil {
			return assignUnownedTasks(tx, listID, *changes.BackfillUserID)
		}
		return nil
	})
}

// CountOwners counts OWNER memberships of a list, excluding excludeUserID
// when non-zero
func (r *GormListRepository) CountOwners(listID, excludeUserID uint64) (int64, error) {
	var count int64
	query := r.db.Model(&models.ListMembership{}).
		Where("list_id = ? AND role = ?", listID, models.RoleOwner)
	if excludeUserID != 0 {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// assignUnownedTasks gives every unassigned task in the list to the user.
// Tasks that already belong to someone are never touched.
func assignUnownedTasks(tx *gorm.DB, listID, userID uint64) error {
	return tx.Model(&models.Task{}).
		Where("list_id = ? AND user_id IS NULL", listID).
		Update("user_id", userID).Error
}
