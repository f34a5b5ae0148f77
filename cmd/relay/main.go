package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/celestialHunt/frontdesk/internal/config"
	"github.com/celestialHunt/frontdesk/internal/relay"
)

// Usage example on the command line:
// > PORT=8081 CAL_API_KEY=cal_xxx CAL_USERNAME=jane-doe CAL_EVENT_TYPE_ID=4711 GIN_MODE=release go run main.go
func main() {
	cfg, err := config.CalComFromEnv()
	if err != nil {
		fmt.Println("could not load scheduling API configuration", err)
		panic(err)
	}
	service := relay.NewService(cfg)
	router := service.SetupHttpRouter()
	port := os.Getenv("PORT")
	if _, err = strconv.Atoi(port); err != nil {
		fmt.Println("could not parse PORT env variable", err)
		panic(err)
	}
	router.Run(":" + port)
}
