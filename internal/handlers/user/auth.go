package user

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/database"
	"libro_back_end/internal/models"
	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Address  string `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// La réservation LWT de l'email est l'unique point d'unicité :
	// deux inscriptions simultanées ne peuvent pas passer toutes les deux.
	userID := gocql.TimeUUID().String()
	applied, err := session.Query(
		`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		input.Email, userID).WithContext(ctx).
		MapScanCAS(make(map[string]interface{}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	now := time.Now().UTC()
	if err := session.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, address, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, input.Email, hashed, input.Name, "customer", "local", "",
		input.Address, true, now, now).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	log.Printf("✅ Nouvel utilisateur inscrit: %s (%s)", input.Email, userID)

	tokens, err := GenerateAuthTokens(userID, input.Email, "customer")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	c.JSON(http.StatusCreated, tokens)
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}
	if user.Provider != "local" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ce compte utilise une connexion sociale"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Compte désactivé"})
		return
	}
	if cache.IsUserBanned(user.ID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Compte banni"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	tokens, err := GenerateAuthTokens(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Connexion réussie: %s", user.Email)
	c.JSON(http.StatusOK, tokens)
}

func findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).WithContext(ctx).Scan(&userID); err != nil {
		return nil, err
	}
	return findUserByID(ctx, userID)
}

func findUserByID(ctx context.Context, userID string) (*models.User, error) {
	user := models.User{ID: userID}
	err := database.GetPreparedGetUserByID().Bind(userID).WithContext(ctx).
		Scan(&user.Email, &user.Password, &user.Name, &user.Role,
			&user.Provider, &user.ProviderID, &user.Address, &user.IsActive)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ================== PROFIL ==================

func GetMe(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := database.GetPreparedUpdateUser().
		Bind(input.Name, input.Address, time.Now().UTC(), userID).
		WithContext(ctx).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour"})
}

// ChangePassword vérifie l'ancien mot de passe avant d'accepter le nouveau,
// puis révoque le refresh token : les autres sessions doivent se reconnecter.
func ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	ok, err := utils.VerifyPassword(input.CurrentPassword, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe actuel incorrect"})
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement mot de passe"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := session.Query(`UPDATE users SET password = ?, updated_at = ? WHERE user_id = ?`,
		hashed, time.Now().UTC(), userID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement mot de passe"})
		return
	}

	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Refresh token non révoqué après changement de mot de passe: %v", err)
	}

	log.Printf("🔐 Mot de passe changé pour %s", user.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe mis à jour"})
}

// DeleteAccount désactive le compte (soft delete) et révoque les tokens.
// L'email reste réservé dans users_by_email : pas de réutilisation.
func DeleteAccount(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := session.Query(`UPDATE users SET is_active = ?, updated_at = ? WHERE user_id = ?`,
		false, time.Now().UTC(), userID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression compte"})
		return
	}

	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Refresh token non révoqué à la suppression du compte: %v", err)
	}
	if tokenID := c.GetString("token_id"); tokenID != "" {
		_ = cache.BlacklistToken(tokenID, 15*time.Minute)
	}

	log.Printf("🗑️ Compte désactivé: %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Compte supprimé"})
}
