package database

import (
	"gorm.io/gorm"

	"github.com/vidolch/ai-todo/internal/utils"
)

// Paginate applies the page window parsed from the request's page/limit
// query parameters to a GORM query.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
