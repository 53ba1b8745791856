package main

import (
	"log"

	"tunesmith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("Error: %s", err)
	}
}
