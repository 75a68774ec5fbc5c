package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort  string `env:"PORT" envDefault:"8080"`
	SecretKey string `env:"SECRET_KEY" envDefault:"dev-secret-change-me"`

	// DATABASE_URL 优先生效，指向 PostgreSQL；未设置时回退到本地 SQLite 文件。
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"glucolog"`
	DBPath     string `env:"DBPath" envDefault:"datas/glucolog.db"`
	DBPort     string `env:"DBPort" envDefault:"5432"`

	SessionIssuer            string `env:"SESSION_ISSUER" envDefault:"glucolog"`
	SessionExpirationMinutes int    `env:"SESSION_EXPIRATION_MINUTES" envDefault:"1440"`

	// 启动时确保存在的引导管理员账户
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@glucolog.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"Admin@2025!"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	Conf.DatabaseURL = NormalizeDatabaseURL(Conf.DatabaseURL)
	logrus.Debugf("%#v\n", Conf)
	return Conf, nil
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme to
// postgresql:// before the DSN is handed to the driver. Hosting platforms
// still emit the short form.
func NormalizeDatabaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(trimmed, "postgres://")
	}
	return trimmed
}
