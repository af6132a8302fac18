package main

import (
	"log"
	"os"

	"quiz-leaderboard-service/internal/cli"
)

func main() {
	log.SetPrefix("quiz-leaderboard ")
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
