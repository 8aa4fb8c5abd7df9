package models

type PasswordResetToken struct {
	ID         int    `json:"id" goqu:"skipinsert"`
	User_ID    int    `json:"userId"`
	Code       string `json:"code"`
	Expires_At string `json:"expiresAt"`
	Used       int    `json:"used"`
	Attempts   int    `json:"attempts"`
	Created_At string `json:"createdAt"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}
