package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/labsphere/lab-management-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockRepository(t *testing.T) (RoleRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewRoleRepository(db), mock
}

func TestRoleRepository_FindActiveSuperAdminForUpdate_LocksRow(t *testing.T) {
	repo, mock := setupMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "lab_id", "password_hash", "is_main", "epoch_time"}).
		AddRow(3, 11, 7, "hashed", true, time.Now().Unix())

	// The holder lookup must take a row lock so concurrent swaps serialize
	mock.ExpectQuery("SELECT \\* FROM `super_admins` WHERE lab_id = \\? AND is_main = \\? ORDER BY `super_admins`\\.`id` LIMIT \\? FOR UPDATE").
		WithArgs(uint64(7), true, 1).
		WillReturnRows(rows)

	admin, err := repo.FindActiveSuperAdminForUpdate(7)
	require.NoError(t, err)
	require.EqualValues(t, 3, admin.ID)
	require.True(t, admin.IsMain)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_UpdateMember_WritesZeroValues(t *testing.T) {
	repo, mock := setupMockRepository(t)

	member := &models.Member{
		ID:           5,
		UserID:       11,
		LabID:        7,
		Role:         models.MemberRoleAdmin,
		PasswordHash: "hashed",
		CreatedBy:    1,
		EpochTime:    time.Now().Unix(),
	}

	// A revert clears deleted_by back to zero; the update must still carry
	// the column instead of skipping it as a zero value
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `members` SET .*`deleted_by`=.* WHERE `id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateMember(member))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_UpdateSuperAdmin_WritesDemotedFlag(t *testing.T) {
	repo, mock := setupMockRepository(t)

	admin := &models.SuperAdmin{
		ID:           3,
		UserID:       11,
		LabID:        7,
		PasswordHash: "hashed",
		IsMain:       false,
		EpochTime:    time.Now().Unix(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `super_admins` SET .*`is_main`=.* WHERE `id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateSuperAdmin(admin))
	require.NoError(t, mock.ExpectationsWereMet())
}
