package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/celestialHunt/frontdesk/internal/config"
	"github.com/celestialHunt/frontdesk/internal/records"
)

// Usage example on the command line:
// > PORT=8080 DB_USER=frontdesk DB_PASSWORD=secret DB_HOST=localhost DB_PORT=3306 DB_NAME=frontdesk GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	cfg, err := config.DatabaseFromEnv()
	if err != nil {
		fmt.Println("could not load database configuration", err)
		panic(err)
	}
	sqlDB := records.CreateDatabase(cfg)
	records.SetupDatabaseWrapper(sqlDB)
	router := records.SetupHttpRouter()
	port := os.Getenv("PORT")
	if _, err = strconv.Atoi(port); err != nil {
		fmt.Println("could not parse PORT env variable", err)
		panic(err)
	}
	router.Run(":" + port)
}
