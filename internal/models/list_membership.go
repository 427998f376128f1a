package models

import "time"

type ListRole string

const (
	RoleOwner       ListRole = "OWNER"
	RoleContributor ListRole = "CONTRIBUTOR"
)

// Valid reports whether the role is one of the known values. Roles arrive
// as strings on the wire and must be rejected at the boundary otherwise.
func (r ListRole) Valid() bool {
	return r == RoleOwner || r == RoleContributor
}

type ListMembership struct {
	ListID   uint64   `gorm:"primarykey" json:"list_id"`
	UserID   uint64   `gorm:"primarykey" json:"user_id"`
	Role     ListRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	List List `gorm:"foreignKey:ListID" json:"list,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
