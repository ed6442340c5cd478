package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupRequest {
	return SignupRequest{
		Email:           "student@campus.edu",
		Password:        "passw0rd",
		ConfirmPassword: "passw0rd",
		Name:            "Student",
		Role:            "student",
	}
}

func TestSignupRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := validSignup()
		require.NoError(t, req.Validate())
	})

	t.Run("password needs a digit", func(t *testing.T) {
		req := validSignup()
		req.Password = "password"
		req.ConfirmPassword = "password"
		assert.ErrorIs(t, req.Validate(), errInvalidPassword)
	})

	t.Run("password needs a letter", func(t *testing.T) {
		req := validSignup()
		req.Password = "12345678"
		req.ConfirmPassword = "12345678"
		assert.ErrorIs(t, req.Validate(), errInvalidPassword)
	})

	t.Run("password needs 8 characters", func(t *testing.T) {
		req := validSignup()
		req.Password = "pass1"
		req.ConfirmPassword = "pass1"
		assert.ErrorIs(t, req.Validate(), errInvalidPassword)
	})

	t.Run("confirm password must match", func(t *testing.T) {
		req := validSignup()
		req.ConfirmPassword = "differ3nt"
		assert.ErrorIs(t, req.Validate(), errConfirmPasswordMismatch)
	})

	t.Run("role must be student or organizer", func(t *testing.T) {
		req := validSignup()
		req.Role = "admin"
		assert.Error(t, req.Validate())
	})
}
