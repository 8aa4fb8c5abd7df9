package controllers

import (
	"net/http"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RegisterPushToken stores a device token for the caller. A token already
// registered, possibly by another account, moves to the caller.
func RegisterPushToken(c *gin.Context) {
	user := currentUser(c)

	var req models.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid push token request", "details": err.Error()})
		return
	}
	token := strings.TrimSpace(req.PushToken)
	now := initializers.NowTimestamp()

	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		result, err := tx.Update("user_push_tokens").
			Set(goqu.Record{"user_id": user.ID, "platform": req.Platform, "updated_at": now}).
			Where(goqu.C("push_token").Eq(token)).
			Executor().Exec()
		if err != nil {
			return err
		}
		if updated, _ := result.RowsAffected(); updated > 0 {
			return nil
		}

		_, err = tx.Insert("user_push_tokens").Rows(models.PushToken{
			User_ID:    user.ID,
			Push_Token: token,
			Platform:   req.Platform,
			Created_At: now,
			Updated_At: now,
		}).Executor().Exec()
		return err
	})
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to store push token")
		internalError(c, "Failed to store push token")
		return
	}

	log.Info().Int("userId", user.ID).Str("platform", req.Platform).Msg("push token registered")
	c.JSON(http.StatusOK, gin.H{"message": "Push token stored successfully"})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
