package controllers

import (
	models "Pixelhop/models/postgres"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Public profile of a player
// @Description Returns the aggregate stats of a player, keyed by username. Read-only surface for ranking
// @Tags profile
// @Produce json
// @Param username path string true "Player username"
// @Success 200 {object} object{username=string}
// @Failure 404 {object} object{error=string}
// @Router /users/{username} [get]
func GetPublicProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		var profile models.PlayerProfile
		if err := db.Where("username = ?", username).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":     profile.Username,
			"icon":         profile.UserIcon,
			"is_in_a_game": profile.IsInAGame,
			"stats":        profile.UserStats,
		})
	}
}

// @Summary Ranking of players
// @Description Top players ordered by best archived score
// @Tags profile
// @Produce json
// @Success 200 {object} object{players=[]object}
// @Failure 500 {object} object{error=string}
// @Router /ranking [get]
func GetRanking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profiles []models.PlayerProfile
		err := db.Order("(user_stats->>'bestScore')::numeric DESC NULLS LAST").
			Limit(20).Find(&profiles).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching ranking"})
			return
		}

		players := make([]gin.H, 0, len(profiles))
		for _, p := range profiles {
			players = append(players, gin.H{
				"username": p.Username,
				"icon":     p.UserIcon,
				"stats":    p.UserStats,
			})
		}
		c.JSON(http.StatusOK, gin.H{"players": players})
	}
}
