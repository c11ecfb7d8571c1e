package main

import (
	"flag"
	"log"
	"os"

	"mstat/metastat/defs"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func main() {
	input := flag.String("input", "export.csv", "exported health log")
	output := flag.String("output", "reports", "report directory")
	epoch := flag.String("epoch", defs.DefaultEpoch, "bucket alignment epoch, RFC3339")
	revision := flag.Int("filter-revision", defs.LatestFilterRevision, "glucose filter revision")
	mmol := flag.Bool("mmol", false, "glucose is in mmol/L")
	xlsx := flag.Bool("xlsx", false, "also write xlsx workbooks")
	timezone := flag.String("timezone", "America/Toronto", "timezone of report dates")

	dexcomAccount := flag.String("dexcom-account", "", "dexcom account")
	dexcomPassword := flag.String("dexcom-password", "", "dexcom password")

	mongoUsername := flag.String("mongo-username", "admin", "mongo username")
	mongoPassword := flag.String("mongo-password", "password", "mongo password")

	configFile := flag.String("config", "docker-config.yaml", "config file to write")
	envFile := flag.String("env", "metastat.env", "env file to write")

	flag.Parse()

	cfg := defs.DefaultConfig()
	cfg.Input = *input
	cfg.Output = *output
	cfg.Epoch = *epoch
	cfg.Mmol = *mmol
	cfg.Timezone = *timezone
	cfg.Filter = defs.FilterConfig{Revision: *revision}
	cfg.Widths = []float64{defs.WeekDays, defs.MonthDays, defs.QuarterDays}
	if *xlsx {
		cfg.Formats = append(cfg.Formats, defs.FormatXLSX)
	}
	cfg.Mongo = defs.MongoConfig{URI: "mongodb://mongo:27017"}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err = os.WriteFile(*configFile, data, 0o644); err != nil {
		log.Fatal(err)
	}

	// Credentials only go to the env file.
	creds := defs.Config{
		Mongo:  defs.MongoConfig{Username: *mongoUsername, Password: *mongoPassword},
		Dexcom: defs.DexcomConfig{Account: *dexcomAccount, Password: *dexcomPassword},
	}
	if err = godotenv.Write(creds.Env(), *envFile); err != nil {
		log.Fatal(err)
	}
}
