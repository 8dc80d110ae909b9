package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abijith-abs/Library-Management/internal/constants"
	"github.com/Abijith-abs/Library-Management/internal/models"
	"github.com/Abijith-abs/Library-Management/internal/utils"
)

type AuthHandler struct {
	UserCol     *mongo.Collection
	AuditLogger utils.Logger
}

func NewAuthHandler(userCol *mongo.Collection, logger utils.Logger) *AuthHandler {
	return &AuthHandler{UserCol: userCol, AuditLogger: logger}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// POST /api/auth/register
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.JSONError(w, "username, email and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := a.UserCol.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"username": req.Username},
		{"email": req.Email},
	}})
	if err != nil {
		utils.JSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		utils.JSONError(w, "Username or email already taken", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := a.UserCol.InsertOne(ctx, user)
	if err != nil {
		utils.JSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	a.AuditLogger.Log(ctx, models.UserEntity, constants.Register, req.Username, bson.M{"id": res.InsertedID})

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
}

// POST /api/auth/login
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, "")
}

// POST /api/auth/admin
func (a *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	a.login(w, r, models.RoleAdmin)
}

func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request, requiredRole models.UserRole) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := a.UserCol.FindOne(ctx, bson.M{"username": req.Username}).Decode(&user); err != nil {
		utils.JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if requiredRole != "" && user.Role != requiredRole {
		utils.JSONError(w, "Forbidden: Admins only", http.StatusForbidden)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Username, string(user.Role))
	if err != nil {
		utils.JSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	action := constants.Login
	if requiredRole == models.RoleAdmin {
		action = constants.AdminLogin
	}
	a.AuditLogger.Log(ctx, models.UserEntity, action, user.Username, nil)

	json.NewEncoder(w).Encode(LoginResponse{
		Message: "Authentication successful",
		Token:   token,
		User:    user,
	})
}
