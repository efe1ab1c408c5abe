package authn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	testCases := []struct {
		name       string
		expectRole Role
		expectOK   bool
	}{
		{name: "User", expectRole: RoleUser, expectOK: true},
		{name: "Admin", expectRole: RoleAdmin, expectOK: true},
		{name: "admin", expectRole: RoleAdmin, expectOK: true},
		{name: "Owner", expectOK: false},
		{name: "", expectOK: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			role, ok := ParseRole(testCase.name)
			require.Equal(t, testCase.expectOK, ok)
			require.Equal(t, testCase.expectRole, role)
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	require.True(t, User{Role: RoleAdmin}.IsAdmin())
	require.False(t, User{Role: RoleUser}.IsAdmin())
	require.False(t, User{}.IsAdmin())
}
