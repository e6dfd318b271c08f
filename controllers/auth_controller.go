package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"store-service/models"
	"store-service/services"
)

type AuthController struct {
	Users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

func (ctl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := ctl.Users.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    user,
		"token":   token,
	})
}

func (ctl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := ctl.Users.Login(req)
	if err != nil {
		// 登录失败统一返回401，不提示具体原因
		if errors.Is(err, services.ErrForbidden) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    user,
		"token":   token,
	})
}

func (ctl *AuthController) Profile(c *gin.Context) {
	user, err := ctl.Users.GetProfile(c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
