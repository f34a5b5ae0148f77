package main

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/celestialHunt/frontdesk/internal/config"
	"github.com/celestialHunt/frontdesk/internal/records"
)

// Usage example on the command line:
// > DB_USER=frontdesk DB_PASSWORD=secret DB_HOST=localhost DB_NAME=frontdesk go run main.go -file=../../scripts/database.sql
func main() {
	cfg, err := config.DatabaseFromEnv()
	if err != nil {
		panic(err)
	}
	sqlDB := records.CreateDatabase(cfg)
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		panic(err)
	}
	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			sql := builder.String()
			db.MustExec(sql)
			builder = strings.Builder{}
		}
	}
}
