package config

import (
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
	Firebase struct {
		ProjectID   string `yaml:"project_id"`
		ClientEmail string `yaml:"client_email"`
		PrivateKey  string `yaml:"private_key"`
	} `yaml:"firebase"`
	B2 struct {
		KeyID    string `yaml:"key_id"`
		AppKey   string `yaml:"app_key"`
		Endpoint string `yaml:"endpoint"`
		Bucket   string `yaml:"bucket"`
	} `yaml:"b2"`
	MoneyUnify struct {
		AuthID  string `yaml:"auth_id"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"moneyunify"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Auth struct {
		// When set, bearer tokens are verified as local HS256 JWTs
		// instead of Firebase ID tokens. Development only.
		JWTSigningKey string `yaml:"jwt_signing_key"`
	} `yaml:"auth"`
}

// LoadConfig reads the optional yaml config file and then applies
// environment overrides, so deployments can run on env vars alone.
func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Failed to unmarshal config data: %v", err)
		}
	}

	override(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	override(&cfg.Firebase.ClientEmail, "FIREBASE_CLIENT_EMAIL")
	override(&cfg.Firebase.PrivateKey, "FIREBASE_PRIVATE_KEY")
	override(&cfg.B2.KeyID, "B2_APPLICATION_KEY_ID")
	override(&cfg.B2.AppKey, "B2_APPLICATION_KEY")
	override(&cfg.B2.Endpoint, "B2_ENDPOINT")
	override(&cfg.B2.Bucket, "B2_BUCKET_NAME")
	override(&cfg.MoneyUnify.AuthID, "MONEYUNIFY_AUTH_ID")
	override(&cfg.MoneyUnify.BaseURL, "MONEYUNIFY_BASE_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Auth.JWTSigningKey, "JWT_SIGNING_KEY")

	if origins := os.Getenv("CORS_ORIGIN"); origins != "" {
		cfg.CORS.Origins = cfg.CORS.Origins[:0]
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.Origins = append(cfg.CORS.Origins, o)
			}
		}
	}

	return cfg
}

func override(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
