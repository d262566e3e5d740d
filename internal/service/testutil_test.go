package service

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"assembly-backend/internal/model"
)

// newTestDB base SQLite en mémoire avec le schéma complet
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.Member{},
		&model.Meeting{},
		&model.AttendanceRecord{},
		&model.QuorumPolicy{},
		&model.VotePolicy{},
		&model.Motion{},
		&model.Ballot{},
		&model.Proxy{},
		&model.VoteToken{},
	))
	return db
}

// seedTenant tenant avec n membres actifs de rôle viewer
func seedTenant(t *testing.T, db *gorm.DB, memberCount int) (*model.Tenant, []model.Member) {
	t.Helper()
	tenant := &model.Tenant{Name: "Résidence des Lilas"}
	require.NoError(t, db.Create(tenant).Error)

	members := make([]model.Member, memberCount)
	for i := range members {
		members[i] = model.Member{
			TenantID: tenant.ID,
			Email:    fmt.Sprintf("membre%d@lilas.example", i+1),
			FullName: fmt.Sprintf("Membre %d", i+1),
			Role:     "viewer",
			Active:   true,
		}
	}
	if memberCount > 0 {
		require.NoError(t, db.Create(&members).Error)
	}
	return tenant, members
}

// seedMeeting assemblée dans un statut donné
func seedMeeting(t *testing.T, db *gorm.DB, tenantID int64, status model.MeetingStatus) *model.Meeting {
	t.Helper()
	meeting := &model.Meeting{
		TenantID:      tenantID,
		Title:         "Assemblée générale ordinaire",
		Code:          fmt.Sprintf("ag-%d-%s", tenantID, status),
		Status:        status,
		ConvocationNo: 1,
	}
	require.NoError(t, db.Create(meeting).Error)
	return meeting
}
