// Command wait-until-available polls the record-management API until it
// answers, for use in scripts that must not proceed before the service and
// its database connection are up.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"
)

// pollInterval is the pause between two readiness probes.
const pollInterval = 5 * time.Second

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/contact
func main() {
	urlPtr := flag.String("url", "http://localhost:8080/contact", "the endpoint to poll")
	flag.Parse()

	totalWaitTime := 0
	for {
		res, err := http.Get(*urlPtr)
		if err == nil {
			if res.StatusCode == http.StatusOK {
				fmt.Println(res)
				break
			}
			fmt.Println(res)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += int(pollInterval.Seconds())
		fmt.Printf("Waiting %d seconds\n", totalWaitTime)
		time.Sleep(pollInterval)
	}
}
