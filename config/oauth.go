package config

import (
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleOAuthConfig is nil when the client credentials are not configured;
// the federated login endpoints answer 503 in that case.
var GoogleOAuthConfig *oauth2.Config

func InitGoogleOAuth() {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Println("GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET not set, Google login disabled")
		return
	}

	redirectURL := GetEnv("GOOGLE_REDIRECT_URL", "http://localhost:4000/api/v1/auth/google/callback")

	GoogleOAuthConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	log.Println("Google OAuth initialized")
}

// FrontendURL is where the Google callback redirects with the issued token.
func FrontendURL() string {
	return GetEnv("FRONTEND_URL", "http://localhost:3000")
}
