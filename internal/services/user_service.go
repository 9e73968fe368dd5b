package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

const userCacheDuration = time.Hour

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// FindUserByID looks a user up, cache first.
func FindUserByID(userID uint) (models.User, error) {
	cacheKey := userCacheKey(userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, apperr.NotFound()
		}
		return user, apperr.Internal(err)
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, userCacheDuration)
		}
	}

	return user, nil
}

// FindOrCreateUserBySubject resolves a verified token subject to a user,
// creating the row on first sign-in. A concurrent first sign-in loses the
// insert race and re-reads the winner's row.
func FindOrCreateUserBySubject(subject, email, displayName string) (models.User, error) {
	var user models.User
	err := database.DB.Where("subject = ?", subject).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, apperr.Internal(err)
	}

	user = models.User{Subject: subject, Email: email, DisplayName: displayName}
	if err := database.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			if err := database.DB.Where("subject = ?", subject).First(&user).Error; err != nil {
				return user, apperr.Internal(err)
			}
			return user, nil
		}
		return user, apperr.Internal(err)
	}
	return user, nil
}
