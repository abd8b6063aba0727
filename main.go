package main

import (
	"flag"
	"log"

	"RMDB/bootstrap"
)

func main() {
	flag.Parse()
	if _, err := bootstrap.Run(); err != nil {
		log.Fatal(err)
	}
}
