package defs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment keys written by shuppet.
const (
	EnvMongoUsername  = "MONGO_USERNAME"
	EnvMongoPassword  = "MONGO_PASSWORD"
	EnvDexcomAccount  = "DEXCOM_ACCOUNT"
	EnvDexcomPassword = "DEXCOM_PASSWORD"
)

var envKeys = []string{EnvMongoUsername, EnvMongoPassword, EnvDexcomAccount, EnvDexcomPassword}

// LoadEnv reads credentials from a dotenv file. A missing file is not an
// error. Variables set in the process environment win over the file.
func LoadEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		env = make(map[string]string)
	} else if err != nil {
		return nil, fmt.Errorf("unable to read env file: %w", err)
	}

	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides credentials with the non-empty values of env.
func (c *Config) ApplyEnv(env map[string]string) {
	set := func(dst *string, key string) {
		if v := env[key]; v != "" {
			*dst = v
		}
	}
	set(&c.Mongo.Username, EnvMongoUsername)
	set(&c.Mongo.Password, EnvMongoPassword)
	set(&c.Dexcom.Account, EnvDexcomAccount)
	set(&c.Dexcom.Password, EnvDexcomPassword)
}

// Env returns the credentials of c keyed like LoadEnv.
func (c Config) Env() map[string]string {
	return map[string]string{
		EnvMongoUsername:  c.Mongo.Username,
		EnvMongoPassword:  c.Mongo.Password,
		EnvDexcomAccount:  c.Dexcom.Account,
		EnvDexcomPassword: c.Dexcom.Password,
	}
}
