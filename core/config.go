package core

import (
	"log"
	"net/mail"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	AppName  string
	Address  string

	// SnapshotPath is where the local JSON snapshot is written; best effort only.
	SnapshotPath string

	// fee policy
	DefaultFeeTotal   decimal.Decimal
	FeeDueInDays      int
	LateFeeRate       decimal.Decimal // fraction of the due amount, per late period
	LateFeePeriodDays int
	ReceiptCap        int

	DefaultFromEmail mail.Address
	AdminEmail       mail.Address
	SendgridAPIKey   string
	RollbarToken     string
}

var Conf Config

func init() {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "ShuleDesk")
	conf.SetDefault("address", ":8000")
	conf.SetDefault("snapshotPath", "shuledesk.json")
	conf.SetDefault("defaultFeeTotal", 1500.0)
	conf.SetDefault("feeDueInDays", 30)
	conf.SetDefault("lateFeeRate", 0.02)
	conf.SetDefault("lateFeePeriodDays", 30)
	conf.SetDefault("receiptCap", 800)
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("adminEmail", "admin@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := ".env." + strings.ToLower(env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	Conf = Config{
		Env:               env,
		Debug:             conf.GetBool("debug"),
		TestMode:          conf.GetBool("testMode"),
		AppName:           conf.GetString("appName"),
		Address:           conf.GetString("address"),
		SnapshotPath:      conf.GetString("snapshotPath"),
		DefaultFeeTotal:   decimal.NewFromFloat(conf.GetFloat64("defaultFeeTotal")),
		FeeDueInDays:      conf.GetInt("feeDueInDays"),
		LateFeeRate:       decimal.NewFromFloat(conf.GetFloat64("lateFeeRate")),
		LateFeePeriodDays: conf.GetInt("lateFeePeriodDays"),
		ReceiptCap:        conf.GetInt("receiptCap"),
		DefaultFromEmail:  mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		AdminEmail:        mail.Address{Address: conf.GetString("adminEmail")},
		SendgridAPIKey:    conf.GetString("sendgridApiKey"),
		RollbarToken:      conf.GetString("rollbarToken"),
	}
}
