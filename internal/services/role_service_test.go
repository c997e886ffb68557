package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/labsphere/lab-management-api/internal/models"
)

func TestRoleService_CreateSuperAdmin(t *testing.T) {
	env := setupServiceTestEnv(t)

	lab := createTestLab(t, env.db, "central", 0)
	user := createTestUser(t, env.db, "sunita")

	admin, err := env.roleSvc.CreateSuperAdmin(lab.ID, user.ID, "supersecret")
	require.NoError(t, err)
	require.True(t, admin.IsMain)
	require.Equal(t, lab.ID, admin.LabID)

	// Bootstrap is one-time only
	other := createTestUser(t, env.db, "rahul")
	_, err = env.roleSvc.CreateSuperAdmin(lab.ID, other.ID, "supersecret")
	require.ErrorIs(t, err, ErrSuperAdminExists)
}

func TestRoleService_CreateSuperAdmin_FromBranchResolvesMain(t *testing.T) {
	env := setupServiceTestEnv(t)

	main := createTestLab(t, env.db, "central", 0)
	branch := createTestLab(t, env.db, "north", main.ID)
	user := createTestUser(t, env.db, "sunita")

	admin, err := env.roleSvc.CreateSuperAdmin(branch.ID, user.ID, "supersecret")
	require.NoError(t, err)
	require.Equal(t, main.ID, admin.LabID)
}

func TestRoleService_AddMember(t *testing.T) {
	env := setupServiceTestEnv(t)

	lab := createTestLab(t, env.db, "central", 0)
	owner := createTestUser(t, env.db, "sunita")
	admin := createTestSuperAdmin(t, env.db, owner.ID, lab.ID)
	principal := superAdminPrincipal(admin, lab.ID)

	person := createTestUser(t, env.db, "rahul")
	member, err := env.roleSvc.AddMember(principal, AddMemberInput{
		LabID:    lab.ID,
		HFID:     person.HFID,
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, models.MemberRoleMember, member.Role)
	require.Equal(t, admin.ID, member.CreatedBy)
}

func TestRoleService_AddMember_DuplicateRoleAcrossBranchSet(t *testing.T) {
	env := setupServiceTestEnv(t)

	main := createTestLab(t, env.db, "central", 0)
	branch := createTestLab(t, env.db, "north", main.ID)
	owner := createTestUser(t, env.db, "sunita")
	admin := createTestSuperAdmin(t, env.db, owner.ID, main.ID)
	principal := superAdminPrincipal(admin, main.ID)

	person := createTestUser(t, env.db, "rahul")
	createTestMember(t, env.db, person.ID, branch.ID, models.MemberRoleMember)

	// Active in a branch means no second role anywhere in the family
	_, err := env.roleSvc.AddMember(principal, AddMemberInput{
		LabID:    main.ID,
		HFID:     person.HFID,
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrDuplicateRole)

	// The super admin cannot also be a member
	_, err = env.roleSvc.AddMember(principal, AddMemberInput{
		LabID:    main.ID,
		HFID:     owner.HFID,
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrDuplicateRole)
}

func TestRoleService_AddMember_OutOfScope(t *testing.T) {
	env := setupServiceTestEnv(t)

	main := createTestLab(t, env.db, "central", 0)
	foreign := createTestLab(t, env.db, "rival", 0)
	owner := createTestUser(t, env.db, "sunita")
	admin := createTestSuperAdmin(t, env.db, owner.ID, main.ID)
	principal := superAdminPrincipal(admin, main.ID)

	person := createTestUser(t, env.db, "rahul")
	_, err := env.roleSvc.AddMember(principal, AddMemberInput{
		LabID:    foreign.ID,
		HFID:     person.HFID,
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrScopeViolation)
}

func TestRoleService_SoftDeleteAndRevert(t *testing.T) {
	env := setupServiceTestEnv(t)

	lab := createTestLab(t, env.db, "central", 0)
	owner := createTestUser(t, env.db, "sunita")
	admin := createTestSuperAdmin(t, env.db, owner.ID, lab.ID)
	principal := superAdminPrincipal(admin, lab.ID)

	person := createTestUser(t, env.db, "rahul")
	member := createTestMember(t, env.db, person.ID, lab.ID, models.MemberRoleMember)

	require.NoError(t, env.roleSvc.SoftDeleteMember(principal, member.ID))

	var stored models.Member
	require.NoError(t, env.db.First(&stored, member.ID).Error)
	require.False(t, stored.Active())
	require.Equal(t, admin.ID, stored.DeletedBy)

	// Deleting an already deleted member conflicts
	err := env.roleSvc.SoftDeleteMember(principal, member.ID)
	require.ErrorIs(t, err, ErrMemberAlreadyDeleted)

	// Revert restores the row with the supplied role
	reverted, err := env.roleSvc.RevertMember(principal, member.ID, models.MemberRoleAdmin)
	require.NoError(t, err)
	require.True(t, reverted.Active())
	require.Equal(t, models.MemberRoleAdmin, reverted.Role)
	require.Equal(t, admin.ID, reverted.PromotedBy)

	require.NoError(t, env.db.First(&stored, member.ID).Error)
	require.Equal(t, uint64(0), stored.DeletedBy)
}

func TestRoleService_RevertMember_AsMemberDoesNotSetPromotedBy(t *testing.T) {
	env := setupServiceTestEnv(t)

	lab := createTestLab(t, env.db, "central", 0)
	owner := createTestUser(t, env.db, "sunita")
	admin := createTestSuperAdmin(t, env.db, owner.ID, lab.ID)
	principal := superAdminPrincipal(admin, lab.ID)

	person := createTestUser(t, env.db, "rahul")
	member := createTestMember(t, env.db, person.ID, lab.ID, models.MemberRoleMember)

	require.NoError(t, env.roleSvc.SoftDeleteMember(principal, member.ID))

	reverted, err := env.roleSvc.RevertMember(principal, member.ID, models.MemberRoleMember)
	require.NoError(t, err)
	require.Equal(t, models.MemberRoleMember, reverted.Role)
	require.Equal(t, uint64(0), reverted.PromotedBy)
}

func TestRoleService_PermanentlyDeleteMember(t *testing.T) {
	env := setupServiceTestEnv(t)

	lab := createTestLab(t, env.db, "central", 0)
	owner := createTestUser(t, env.db, "sunita")
	admin := createTestSuperAdmin(t, env.db, owner.ID, lab.ID)
	principal := superAdminPrincipal(admin, lab.ID)

	person := createTestUser(t, env.db, "rahul")
	member := createTestMember(t, env.db, person.ID, lab.ID, models.MemberRoleMember)

	// Active rows cannot be permanently removed
	err := env.roleSvc.PermanentlyDeleteMember(principal, member.ID)
	require.ErrorIs(t, err, ErrMemberNotDeleted)

	require.NoError(t, env.roleSvc.SoftDeleteMember(principal, member.ID))
	require.NoError(t, env.roleSvc.PermanentlyDeleteMember(principal, member.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.Member{}).Where("id = ?", member.ID).Count(&count).Error)
	require.Zero(t, count)
}
