package config

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	JWT     JWTConfig     `yaml:"jwt"`
	Bcrypt  BcryptConfig  `yaml:"bcrypt"`
	Webhook WebhookConfig `yaml:"webhook"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// JWTConfig описывает раздельные секреты и время жизни
// для access и refresh токенов
type JWTConfig struct {
	Issuer           string `yaml:"issuer"`
	AccessSecretKey  string `yaml:"access_secret_key"`
	AccessTokenTTL   string `yaml:"access_token_ttl"`
	RefreshSecretKey string `yaml:"refresh_secret_key"`
	RefreshTokenTTL  string `yaml:"refresh_token_ttl"`
}

type BcryptConfig struct {
	Cost int `yaml:"cost"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}
