package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"github.com/golang-jwt/jwt"
	"google.golang.org/api/option"

	"ngomaBack/internal/models"
)

// TokenVerifier maps a bearer credential to the buyer account behind it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.Buyer, error)
}

type FirebaseConfig struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
}

// NewFirebaseApp builds the admin app from the three credential env
// values, the same way the frontend's deployment provides them.
func NewFirebaseApp(ctx context.Context, cfg FirebaseConfig) (*firebase.App, error) {
	privateKey := sanitizePrivateKey(cfg.PrivateKey)
	if cfg.ProjectID == "" || cfg.ClientEmail == "" || privateKey == "" {
		return nil, errors.New("missing Firebase env vars: FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL, FIREBASE_PRIVATE_KEY")
	}

	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  privateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: cfg.ProjectID},
		option.WithCredentialsJSON(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

// FirebaseVerifier validates Firebase ID tokens issued to buyers.
type FirebaseVerifier struct {
	Auth *auth.Client
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (models.Buyer, error) {
	decoded, err := v.Auth.VerifyIDToken(ctx, token)
	if err != nil {
		return models.Buyer{}, models.ErrInvalidCredentials
	}
	buyer := models.Buyer{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		buyer.Email = email
	}
	return buyer, nil
}

// JWTVerifier accepts locally issued HS256 tokens instead of Firebase
// ID tokens. Meant for development and tests, never production.
type JWTVerifier struct {
	signingKey string
}

func NewJWTVerifier(signingKey string) (*JWTVerifier, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	return &JWTVerifier{signingKey: signingKey}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (models.Buyer, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.signingKey), nil
	})
	if err != nil || !parsed.Valid {
		return models.Buyer{}, models.ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Buyer{}, models.ErrInvalidCredentials
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return models.Buyer{}, models.ErrInvalidCredentials
	}
	buyer := models.Buyer{UID: uid}
	if email, ok := claims["email"].(string); ok {
		buyer.Email = email
	}
	return buyer, nil
}

// Keys pasted into env files arrive with literal \n sequences and
// sometimes surrounding quotes.
func sanitizePrivateKey(privateKey string) string {
	privateKey = strings.ReplaceAll(privateKey, `\n`, "\n")
	privateKey = strings.TrimPrefix(privateKey, `"`)
	privateKey = strings.TrimSuffix(privateKey, `"`)
	return privateKey
}
