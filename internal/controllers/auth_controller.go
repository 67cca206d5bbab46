package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rar_kit/internal/middleware"
	"rar_kit/internal/models"
)

// WeightSetter receives the rider's weight for calorie estimates.
type WeightSetter interface {
	SetRiderWeight(kg float64)
}

// AuthController manages the single rider profile of this bike.
type AuthController struct {
	DB       *gorm.DB
	Calories WeightSetter
}

type signupInput struct {
	Name     string  `json:"name" binding:"required"`
	Passcode string  `json:"passcode" binding:"required,min=4"`
	Weight   float64 `json:"weight" binding:"omitempty,gt=0,lt=400"`
}

type loginInput struct {
	Name     string `json:"name" binding:"required"`
	Passcode string `json:"passcode" binding:"required"`
}

// Signup creates the rider. Only one rider may exist.
func (a *AuthController) Signup(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPasscode, err := hashPassword(input.Passcode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash passcode"})
		return
	}

	rider := models.Rider{
		Name:         strings.TrimSpace(input.Name),
		Passcode:     hashedPasscode,
		Weight:       input.Weight,
		SpeedUnit:    models.SpeedUnitKmh,
		DistanceUnit: models.DistanceUnitKm,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Rider{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errRiderExists
		}
		return tx.Create(&rider).Error
	})
	if errors.Is(err, errRiderExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Signup: could not create rider")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create rider"})
		return
	}

	if rider.Weight > 0 && a.Calories != nil {
		a.Calories.SetRiderWeight(rider.Weight)
	}

	token, err := middleware.GenerateToken(rider.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	logrus.WithField("rider_id", rider.ID).Info("Rider signed up.")
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"rider": rider,
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var body loginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rider models.Rider
	if err := a.DB.Where("name = ?", strings.TrimSpace(body.Name)).First(&rider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "rider not found or invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rider.Passcode), []byte(body.Passcode)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect passcode"})
		return
	}

	token, err := middleware.GenerateToken(rider.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"rider": rider,
	})
}

var errRiderExists = errors.New("a rider is already registered on this bike")

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
