package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/labsphere/lab-management-api/internal/database"
	"github.com/labsphere/lab-management-api/internal/models"
	"github.com/labsphere/lab-management-api/internal/notify"
	"github.com/labsphere/lab-management-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db        *gorm.DB
	labRepo   repository.LabRepository
	roleRepo  repository.RoleRepository
	otpRepo   repository.OtpRepository
	userRepo  repository.UserRepository
	tenancy   *TenancyService
	otpSvc    *OtpService
	roleSvc   *RoleService
	promotion *PromotionService
	authSvc   *AuthService
	labSvc    *LabService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Lab{},
		&models.SuperAdmin{},
		&models.Member{},
		&models.OtpEntry{},
		&models.OtpProof{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	labRepo := repository.NewLabRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	userRepo := repository.NewUserRepository(db)

	notifier := notify.NewLogNotifier()
	tenancy := NewTenancyService(labRepo)
	otpSvc := NewOtpService(otpRepo)
	roleSvc := NewRoleService(roleRepo, userRepo, tenancy, notifier)
	promotion := NewPromotionService(roleRepo, userRepo, tenancy, notifier)
	authSvc := NewAuthService(userRepo, roleRepo, roleSvc, tenancy)
	labSvc := NewLabService(labRepo, otpSvc, tenancy, notifier)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:        db,
		labRepo:   labRepo,
		roleRepo:  roleRepo,
		otpRepo:   otpRepo,
		userRepo:  userRepo,
		tenancy:   tenancy,
		otpSvc:    otpSvc,
		roleSvc:   roleSvc,
		promotion: promotion,
		authSvc:   authSvc,
		labSvc:    labSvc,
	}
}

func createTestLab(t *testing.T, db *gorm.DB, name string, labReference uint64) *models.Lab {
	t.Helper()

	lab := &models.Lab{
		Name:         name,
		Email:        name + "@example.com",
		Phone:        "9999999999",
		Pincode:      "560001",
		PasswordHash: "hashed",
		HFID:         "LAB-" + name,
		LabReference: labReference,
		EpochTime:    time.Now().Unix(),
	}
	require.NoError(t, db.Create(lab).Error)
	return lab
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		HFID:  "HF-" + name,
		Name:  name,
		Email: name + "@people.example.com",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSuperAdmin(t *testing.T, db *gorm.DB, userID, labID uint64) *models.SuperAdmin {
	t.Helper()

	admin := &models.SuperAdmin{
		UserID:       userID,
		LabID:        labID,
		PasswordHash: "hashed",
		IsMain:       true,
		EpochTime:    time.Now().Unix(),
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func createTestMember(t *testing.T, db *gorm.DB, userID, labID uint64, role models.MemberRole) *models.Member {
	t.Helper()

	member := &models.Member{
		UserID:       userID,
		LabID:        labID,
		Role:         role,
		PasswordHash: "hashed",
		CreatedBy:    1,
		EpochTime:    time.Now().Unix(),
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func superAdminPrincipal(admin *models.SuperAdmin, labID uint64) models.Principal {
	return models.Principal{
		LabID:      labID,
		AdminRowID: admin.ID,
		Role:       "super_admin",
	}
}
