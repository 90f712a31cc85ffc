package models_test

import (
	"complaint-portal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_CanHandleComplaints(t *testing.T) {
	assert.False(t, models.RoleUser.CanHandleComplaints())
	assert.True(t, models.RoleHR.CanHandleComplaints())
	assert.True(t, models.RoleAdmin.CanHandleComplaints())
	assert.False(t, models.Role("guest").CanHandleComplaints())
}

func TestParseRole(t *testing.T) {
	r, ok := models.ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, models.RoleUser, r, "empty role defaults to user")

	r, ok = models.ParseRole("hr")
	assert.True(t, ok)
	assert.Equal(t, models.RoleHR, r)

	_, ok = models.ParseRole("superuser")
	assert.False(t, ok)
}
