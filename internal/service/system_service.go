package service

import (
	"database/sql"
	"fmt"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/database"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application and database schema versions.
func (s *SystemService) CheckVersion() model.VersionInfo {
	info := model.VersionInfo{AppVersion: version.Version}
	if dbVersion, err := database.MigrationVersion(s.db); err == nil {
		info.DbVersion = fmt.Sprintf("%d", dbVersion)
	}
	return info
}
