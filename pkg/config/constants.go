package config

const (
	// EnvPrefix is the envconfig prefix; explicit envconfig tags carry the
	// full names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KITROOM_DB_DSN"
	EnvDBHost = "KITROOM_DB_HOST"
	EnvDBUser = "KITROOM_DB_USER"
	EnvDBName = "KITROOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
