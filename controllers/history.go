package controllers

import (
	models "Pixelhop/models/postgres"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Match history of the authenticated user
// @Description Lists the archived matches the caller took part in, newest first
// @Tags history
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{matches=[]object}
// @Failure 401 {object} object{error=string}
// @Router /auth/matches [get]
// @Security ApiKeyAuth
func GetMatchHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
			return
		}

		var records []models.MatchRecord
		err := db.Where("player1_username = ? OR player2_username = ?",
			user.ProfileUsername, user.ProfileUsername).
			Order("match_date DESC").Limit(50).Find(&records).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching match history"})
			return
		}

		matches := make([]gin.H, 0, len(records))
		for _, r := range records {
			matches = append(matches, gin.H{
				"room_id":       r.RoomID,
				"player1":       r.Player1Username,
				"player2":       r.Player2Username,
				"winner":        r.WinnerUsername,
				"player1_score": r.Player1Score,
				"player2_score": r.Player2Score,
				"ratings":       r.Ratings,
				"date":          r.MatchDate,
			})
		}
		c.JSON(http.StatusOK, gin.H{"matches": matches})
	}
}
