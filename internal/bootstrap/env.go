package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv loads .env before the fx graph reads configuration. Runs before
// the zap logger exists, hence the stdlib log line.
func Loadenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
