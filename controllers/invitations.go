package controllers

import (
	models "Pixelhop/models/postgres"
	"Pixelhop/services/invitations"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Pending game invitations
// @Description Lists the caller's pending invitations: the durable log rows plus the live consumable copies still sitting in the realtime inbox
// @Tags invitations
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{invitations=[]object}
// @Failure 401 {object} object{error=string}
// @Router /auth/invitations [get]
// @Security ApiKeyAuth
func GetPendingInvitations(db *gorm.DB, invites *invitations.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
			return
		}

		var rows []models.GameInvitation
		err := db.Where("invited_username = ? AND status = ?", user.ProfileUsername, "pending").
			Order("created_at DESC").Find(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching invitations"})
			return
		}

		// Live copies still consumable over the socket
		live, err := invites.Pending(c.Request.Context(), user.ProfileUsername)
		if err != nil {
			log.Printf("[INVITATIONS] error leyendo inbox de %s: %v", user.ProfileUsername, err)
			live = nil
		}
		liveByRoom := make(map[string]bool, len(live))
		for _, inv := range live {
			liveByRoom[inv.RoomID] = true
		}

		out := make([]gin.H, 0, len(rows))
		for _, r := range rows {
			out = append(out, gin.H{
				"room_id":    r.RoomID,
				"sender":     r.SenderUsername,
				"created_at": r.CreatedAt,
				"consumable": liveByRoom[r.RoomID],
			})
		}
		c.JSON(http.StatusOK, gin.H{"invitations": out})
	}
}
