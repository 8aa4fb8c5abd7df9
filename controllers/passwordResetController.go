package controllers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/CampusLease/services"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	resetCodeTTL         = 15 * time.Minute
	maxResetCodeAttempts = 3
	forgotPasswordReply  = "If this email exists in our system, a verification code has been sent."
)

// ForgotPassword initiates the password reset flow by sending a 6-digit code to the user's email
func ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email address is required", "details": []string{"email is invalid"}})
		return
	}

	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("email").Eq(strings.ToLower(strings.TrimSpace(req.Email)))).
		ScanStruct(&user)
	if err != nil || !found {
		// same answer whether or not the account exists
		c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
		return
	}

	code, err := generate6DigitCode()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate verification code")
		internalError(c, "Failed to generate verification code")
		return
	}

	_, err = initializers.DB.Insert("password_reset_tokens").Rows(goqu.Record{
		"user_id":    user.ID,
		"code":       code,
		"expires_at": initializers.FormatTimestamp(time.Now().Add(resetCodeTTL)),
		"used":       0,
		"attempts":   0,
		"created_at": initializers.NowTimestamp(),
	}).Executor().Exec()
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to store password reset token")
		internalError(c, "Failed to process password reset request")
		return
	}

	emailService := services.GetEmailService()
	if emailService == nil {
		log.Error().Msg("email service not initialized")
		internalError(c, "Email service unavailable")
		return
	}

	if err := emailService.SendPasswordResetEmail(user.Email, code, user.Name); err != nil {
		internalError(c, "Failed to send verification email")
		return
	}

	log.Info().Int("userId", user.ID).Msg("password reset code sent")
	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
}

// checkResetCode finds the newest live code for the account and compares it.
// A wrong code uses up one attempt. It writes the error response itself.
func checkResetCode(c *gin.Context, email, code string) (*models.User, *models.PasswordResetToken, bool) {
	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("email").Eq(strings.ToLower(strings.TrimSpace(email)))).
		ScanStruct(&user)
	if err != nil || !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or verification code"})
		return nil, nil, false
	}

	var resetToken models.PasswordResetToken
	found, err = initializers.DB.From("password_reset_tokens").
		Where(
			goqu.C("user_id").Eq(user.ID),
			goqu.C("used").Eq(0),
			goqu.C("expires_at").Gt(initializers.NowTimestamp()),
		).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ScanStruct(&resetToken)
	if err != nil || !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired verification code"})
		return nil, nil, false
	}

	if resetToken.Attempts >= maxResetCodeAttempts {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Maximum verification attempts exceeded. Please request a new code."})
		return nil, nil, false
	}

	if resetToken.Code != code {
		_, err := initializers.DB.Update("password_reset_tokens").
			Set(goqu.Record{"attempts": resetToken.Attempts + 1}).
			Where(goqu.C("id").Eq(resetToken.ID)).
			Executor().Exec()
		if err != nil {
			log.Error().Err(err).Msg("failed to update attempt count")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired verification code"})
		return nil, nil, false
	}

	return &user, &resetToken, true
}

// VerifyResetCode lets the client confirm a code before asking for the new password.
func VerifyResetCode(c *gin.Context) {
	var req models.VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and 6-digit code are required"})
		return
	}

	if _, _, ok := checkResetCode(c, req.Email, req.Code); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code is valid"})
}

// ResetPassword sets a new password when the emailed code matches, then retires every outstanding code.
func ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, 6-digit code and a new password of at least 8 characters are required"})
		return
	}

	user, _, ok := checkResetCode(c, req.Email, req.Code)
	if !ok {
		return
	}

	passwordHash, err := hashPassword(req.NewPassword)
	if err != nil {
		internalError(c, "Failed to reset password")
		return
	}

	err = initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		if _, err := tx.Update("users").
			Set(goqu.Record{"password_hash": passwordHash}).
			Where(goqu.C("id").Eq(user.ID)).
			Executor().Exec(); err != nil {
			return err
		}
		_, err := tx.Update("password_reset_tokens").
			Set(goqu.Record{"used": 1}).
			Where(goqu.C("user_id").Eq(user.ID)).
			Executor().Exec()
		return err
	})
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to reset password")
		internalError(c, "Failed to reset password")
		return
	}

	log.Info().Int("userId", user.ID).Msg("password reset")
	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully. You can now login with your new password.",
	})
}

// Helper function to generate a cryptographically secure 6-digit code
func generate6DigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
