package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
)

// ================== AUTH SOCIALE ==================

var oauthConfigs = map[string]*oauth2.Config{}

// InitSocialProviders enregistre les providers web (goth) et les configs
// d'échange de code (oauth2). Appelé une fois au démarrage.
func InitSocialProviders() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	goth.UseProviders(
		google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			baseURL+"/api/auth/google/callback",
			"email", "profile",
		),
		facebook.New(
			os.Getenv("FACEBOOK_CLIENT_ID"),
			os.Getenv("FACEBOOK_CLIENT_SECRET"),
			baseURL+"/api/auth/facebook/callback",
			"email",
		),
	)

	oauthConfigs["google"] = &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  baseURL + "/api/auth/google/callback",
		Scopes:       []string{"email", "profile"},
		Endpoint:     oauthgoogle.Endpoint,
	}
	oauthConfigs["facebook"] = &oauth2.Config{
		ClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		ClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
		RedirectURL:  baseURL + "/api/auth/facebook/callback",
		Scopes:       []string{"email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.facebook.com/v15.0/dialog/oauth",
			TokenURL: "https://graph.facebook.com/v15.0/oauth/access_token",
		},
	}
}

func BeginSocialAuth(c *gin.Context) {
	provider := c.Param("provider")
	if _, ok := oauthConfigs[provider]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	state := generateRandomState()
	ctx := context.Background()
	if redirectURL := c.Query("redirect_url"); redirectURL != "" {
		_ = database.Redis.Set(ctx, "oauth_redirect:"+state, redirectURL, 10*time.Minute).Err()
	}
	_ = database.Redis.Set(ctx, "oauth_state:"+state, provider, 10*time.Minute).Err()

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func SocialCallback(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")

	cfg, ok := oauthConfigs[provider]
	if !ok || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Le state doit avoir été posé par BeginSocialAuth.
	if stored, err := database.Redis.Get(ctx, "oauth_state:"+state).Result(); err != nil || stored != provider {
		c.JSON(http.StatusBadRequest, gin.H{"error": "State OAuth invalide"})
		return
	}
	database.Redis.Del(ctx, "oauth_state:"+state)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Printf("❌ Échange de code OAuth échoué (%s): %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Échange OAuth échoué"})
		return
	}

	providerID, email, name, err := fetchSocialProfile(ctx, provider, cfg, token)
	if err != nil || email == "" {
		log.Printf("❌ Profil OAuth illisible (%s): %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profil OAuth illisible"})
		return
	}

	user, err := findOrCreateSocialUser(ctx, provider, providerID, email, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	tokens, err := GenerateAuthTokens(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	// Retour vers le front si un redirect_url avait été fourni au départ.
	if redirectURL, err := database.Redis.Get(ctx, "oauth_redirect:"+state).Result(); err == nil && redirectURL != "" {
		database.Redis.Del(ctx, "oauth_redirect:"+state)
		c.Redirect(http.StatusFound, redirectURL+"#access_token="+url.QueryEscape(tokens.AccessToken)+
			"&refresh_token="+url.QueryEscape(tokens.RefreshToken))
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func fetchSocialProfile(ctx context.Context, provider string, cfg *oauth2.Config, token *oauth2.Token) (id, email, name string, err error) {
	client := cfg.Client(ctx, token)

	endpoint := "https://www.googleapis.com/oauth2/v2/userinfo"
	if provider == "facebook" {
		endpoint = "https://graph.facebook.com/me?fields=id,name,email"
	}

	resp, err := client.Get(endpoint)
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()

	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", "", "", err
	}
	return profile.ID, profile.Email, profile.Name, nil
}

// findOrCreateSocialUser rattache le compte social à un compte existant par
// email, ou en crée un nouveau. L'unicité passe par la même réservation LWT
// que l'inscription locale.
func findOrCreateSocialUser(ctx context.Context, provider, providerID, email, name string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	if user, err := findUserByEmail(ctx, email); err == nil {
		if user.Provider != provider || user.ProviderID != providerID {
			_ = session.Query(`UPDATE users SET provider = ?, provider_id = ?, updated_at = ? WHERE user_id = ?`,
				provider, providerID, time.Now().UTC(), user.ID).WithContext(ctx).Exec()
			log.Printf("🔄 Compte existant rattaché au provider %s : %s", provider, email)
		}
		return user, nil
	}

	userID := gocql.TimeUUID().String()
	applied, err := session.Query(
		`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		email, userID).WithContext(ctx).
		MapScanCAS(make(map[string]interface{}))
	if err != nil {
		return nil, err
	}
	if !applied {
		// Perdu la course contre une autre création : relecture.
		return findUserByEmail(ctx, email)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:       userID,
		Email:    email,
		Name:     name,
		Role:     "customer",
		Provider: provider,
		IsActive: true,
	}
	if err := session.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, address, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, email, "", name, user.Role, provider, providerID, "", true, now, now).
		WithContext(ctx).Exec(); err != nil {
		return nil, err
	}

	log.Printf("🆕 Utilisateur social créé (%s): %s", provider, email)
	return user, nil
}
