package main

import (
	"flag"
	"fmt"
	"log"

	"appointment-booking/internal/auth"
)

var pass = flag.String("pass", "", "Password to hash")

func main() {
	flag.Parse()
	if *pass == "" {
		log.Fatal("no password was given")
	}

	passHash, err := auth.HashPassword(*pass)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(passHash)
}
