package config

const (
	// EnvPrefix is passed to envconfig; per-field tags carry the full names.
	EnvPrefix = "catalog"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CATALOG_DB_DSN"
	EnvDBHost = "CATALOG_DB_HOST"
	EnvDBUser = "CATALOG_DB_USER"
	EnvDBName = "CATALOG_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
