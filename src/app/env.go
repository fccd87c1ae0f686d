package app

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type environment string

const (
	EnvDev  environment = "dev"
	EnvProd environment = "prod"
)

type envVars struct {
	Environment environment `envconfig:"ENVIRONMENT" default:"dev"`
	ServerHost  string      `envconfig:"SERVER_HOST"  default:"localhost"`
	ServerPort  int         `envconfig:"SERVER_PORT"  default:"8080"`

	// DataPath is the directory holding DR1/ and
	// STRUCTURAL_PARA_v1.1_CATONLY/.
	DataPath string `envconfig:"DATA_PATH" required:"true"`

	// StandardCriteria holds recurring reduction criteria, semicolon
	// separated, e.g. "zphot > 0.1; K_flag < 3".
	StandardCriteria string `envconfig:"STANDARD_CRITERIA" default:""`
}

func mustLoadEnv() envVars {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	var env envVars
	if err := envconfig.Process("", &env); err != nil {
		panic(err)
	}

	return env
}
