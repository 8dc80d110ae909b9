package configs

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	BorrowLimit    int
	LoanPeriodDays int
}

const (
	// Cap on simultaneous unreturned loans per user, counting the new
	// batch. UI copy historically quoted 3, but the enforced comparison
	// uses 4, so the value stays configurable and defaults to 4.
	DefaultBorrowLimit = 4

	// 2-week return policy.
	DefaultLoanPeriodDays = 14
)

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	borrowLimit := DefaultBorrowLimit
	if val := os.Getenv("BORROW_LIMIT"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &borrowLimit); err != nil {
			log.Fatalf("Invalid BORROW_LIMIT: %v", err)
		}
	}

	loanPeriodDays := DefaultLoanPeriodDays
	if val := os.Getenv("LOAN_PERIOD_DAYS"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &loanPeriodDays); err != nil {
			log.Fatalf("Invalid LOAN_PERIOD_DAYS: %v", err)
		}
	}

	return Config{
		Port:           os.Getenv("PORT"),
		MongoURI:       os.Getenv("MONGO_URI"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		BorrowLimit:    borrowLimit,
		LoanPeriodDays: loanPeriodDays,
	}
}
